package service

import (
	"fmt"
	"io"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary  = "Summary"
	sheetActivity = "Monthly Activity"
	sheetOutcomes = "Inspection Outcomes"
)

// ExportDashboard lays the dashboard out as a workbook with one sheet per
// panel
func ExportDashboard(d *model.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{sheetActivity, sheetOutcomes} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	m := d.Metrics
	summary := [][]any{
		{"Metric", "Value"},
		{"Total Inspections", m.Inspections},
		{"Total Audits", m.Audits},
		{"Total Reworks", m.Reworks},
		{"Customer Satisfaction", m.CustomerSatisfaction},
		{"Quality Score (%)", m.QualityScore},
		{"Rework Cost", m.ReworkCost},
		{"Project Compliance (%)", m.ProjectCompliance},
	}
	if err := writeRows(f, sheetSummary, summary, boldStyle); err != nil {
		f.Close()
		return nil, err
	}

	activity := [][]any{{"Month", "Inspections", "Audits", "Reworks"}}
	for _, a := range d.Activity {
		activity = append(activity, []any{a.Month, a.Inspections, a.Audits, a.Reworks})
	}
	if err := writeRows(f, sheetActivity, activity, boldStyle); err != nil {
		f.Close()
		return nil, err
	}

	outcomes := [][]any{{"Outcome", "Share"}}
	for _, o := range d.Outcomes {
		outcomes = append(outcomes, []any{o.Name, o.Value})
	}
	if err := writeRows(f, sheetOutcomes, outcomes, boldStyle); err != nil {
		f.Close()
		return nil, err
	}

	f.SetColWidth(sheetSummary, "A", "A", 26)
	f.SetColWidth(sheetActivity, "A", "D", 14)
	f.SetColWidth(sheetOutcomes, "A", "A", 22)
	return f, nil
}

// WriteDashboardXLSX streams the exported workbook to w
func WriteDashboardXLSX(w io.Writer, d *model.Dashboard) error {
	f, err := ExportDashboard(d)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeRows fills rows starting at A1; the first row is the header
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if r == 0 {
				f.SetCellStyle(sheet, cell, cell, headerStyle)
			}
		}
	}
	return nil
}
