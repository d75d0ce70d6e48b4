package model

import (
	"fmt"
	"regexp"
	"strconv"
)

type WorkmanshipQuality string

const (
	WorkmanshipExcellent WorkmanshipQuality = "excellent"
	WorkmanshipGood      WorkmanshipQuality = "good"
	WorkmanshipFair      WorkmanshipQuality = "fair"
	WorkmanshipPoor      WorkmanshipQuality = "poor"
)

var WorkmanshipQualities = []Option{
	{string(WorkmanshipExcellent), "Excellent"},
	{string(WorkmanshipGood), "Good"},
	{string(WorkmanshipFair), "Fair"},
	{string(WorkmanshipPoor), "Poor"},
}

type InspectionOutcome string

const (
	OutcomePass             InspectionOutcome = "pass"
	OutcomeFail             InspectionOutcome = "fail"
	OutcomeNeedsImprovement InspectionOutcome = "needsImprovement"
)

var InspectionOutcomes = []Option{
	{string(OutcomePass), "Pass"},
	{string(OutcomeFail), "Fail"},
	{string(OutcomeNeedsImprovement), "Needs Improvement"},
}

type AuditType string

const (
	AuditQuality       AuditType = "quality"
	AuditSafety        AuditType = "safety"
	AuditEnvironmental AuditType = "environmental"
)

var AuditTypes = []Option{
	{string(AuditQuality), "Quality"},
	{string(AuditSafety), "Safety"},
	{string(AuditEnvironmental), "Environmental"},
}

type ComplianceStatus string

const (
	Compliant          ComplianceStatus = "compliant"
	NonCompliant       ComplianceStatus = "nonCompliant"
	PartiallyCompliant ComplianceStatus = "partiallyCompliant"
)

var ComplianceStatuses = []Option{
	{string(Compliant), "Compliant"},
	{string(NonCompliant), "Non-Compliant"},
	{string(PartiallyCompliant), "Partially Compliant"},
}

type ReworkType string

const (
	ReworkMaterialFailure   ReworkType = "materialFailure"
	ReworkWorkmanshipIssues ReworkType = "workmanshipIssues"
	ReworkDesignChanges     ReworkType = "designChanges"
)

var ReworkTypes = []Option{
	{string(ReworkMaterialFailure), "Material Failure"},
	{string(ReworkWorkmanshipIssues), "Workmanship Issues"},
	{string(ReworkDesignChanges), "Design Changes"},
}

// Rating is a 1-5 score kept as its string form
type Rating string

var Ratings = []Option{
	{"1", "Poor"},
	{"2", "Fair"},
	{"3", "Average"},
	{"4", "Good"},
	{"5", "Excellent"},
}

// Option is one variant of a closed enum together with its display label
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DecimalPattern is the accepted shape of numeric text fields
var DecimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

func parseDecimal(s string) (float64, error) {
	if !DecimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%q is not a decimal number", s)
	}
	return strconv.ParseFloat(s, 64)
}
