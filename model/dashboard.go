package model

// Dashboard is the aggregate view rendered on the quality dashboard
type Dashboard struct {
	Metrics  Metrics           `json:"metrics"`
	Activity []MonthlyActivity `json:"activity"`
	Outcomes []OutcomeShare    `json:"outcomes"`
}

type Metrics struct {
	Inspections          int     `json:"inspections"`
	Audits               int     `json:"audits"`
	Reworks              int     `json:"reworks"`
	CustomerSatisfaction float64 `json:"customerSatisfaction"`
	QualityScore         int     `json:"qualityScore"` // percent
	ReworkCost           float64 `json:"reworkCost"`
	ProjectCompliance    int     `json:"projectCompliance"` // percent
}

// MonthlyActivity is one point of the per-month activity series
type MonthlyActivity struct {
	Month       string `json:"name"`
	Inspections int    `json:"inspections"`
	Audits      int    `json:"audits"`
	Reworks     int    `json:"reworks"`
}

// OutcomeShare is one slice of the inspection outcome breakdown
type OutcomeShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
