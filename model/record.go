package model

import "strings"

// Kind identifies which quality form a record came from
type Kind string

const (
	KindInspection   Kind = "inspection"
	KindAudit        Kind = "audit"
	KindRework       Kind = "rework"
	KindSatisfaction Kind = "satisfaction"
)

// Kinds lists every record kind in navigation order
var Kinds = []Kind{KindInspection, KindAudit, KindRework, KindSatisfaction}

// slugs maps page paths segments to kinds so /inspections and
// /customer-satisfaction resolve the same way the record names do
var slugs = map[string]Kind{
	"inspections":           KindInspection,
	"audits":                KindAudit,
	"reworks":               KindRework,
	"customer-satisfaction": KindSatisfaction,
}

// ParseKind resolves a kind name or page slug, case-insensitively
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	k, ok := slugs[s]
	return k, ok
}

// Record is a fully validated submission
type Record interface {
	Kind() Kind
}

// InspectionRecord is a material and workmanship inspection
type InspectionRecord struct {
	ProjectName        string             `json:"projectName" validate:"min=2"`
	MaterialUsed       string             `json:"materialUsed" validate:"min=2"`
	WorkmanshipQuality WorkmanshipQuality `json:"workmanshipQuality" validate:"oneof=excellent good fair poor"`
	InspectionOutcome  InspectionOutcome  `json:"inspectionOutcome" validate:"oneof=pass fail needsImprovement"`
	Comments           string             `json:"comments,omitempty"`
	Image              *Attachment        `json:"image,omitempty"`
}

func (*InspectionRecord) Kind() Kind { return KindInspection }

// AuditRecord is a project audit
type AuditRecord struct {
	ProjectName      string           `json:"projectName" validate:"min=2"`
	AuditType        AuditType        `json:"auditType" validate:"oneof=quality safety environmental"`
	ComplianceStatus ComplianceStatus `json:"complianceStatus" validate:"oneof=compliant nonCompliant partiallyCompliant"`
	Findings         string           `json:"findings" validate:"min=10"`
	Recommendations  string           `json:"recommendations,omitempty"`
	SignOff          bool             `json:"signOff"`
	Image            *Attachment      `json:"image,omitempty"`
}

func (*AuditRecord) Kind() Kind { return KindAudit }

// ReworkRecord tracks a piece of rework. ManHours and CostImpact stay
// strings until validation has accepted them.
type ReworkRecord struct {
	ProjectName   string      `json:"projectName" validate:"min=2"`
	ReworkType    ReworkType  `json:"reworkType" validate:"oneof=materialFailure workmanshipIssues designChanges"`
	ReworkReason  string      `json:"reworkReason" validate:"min=10"`
	MaterialUsage string      `json:"materialUsage" validate:"min=2"`
	ManHours      string      `json:"manHours" validate:"decimal"`
	CostImpact    string      `json:"costImpact" validate:"decimal"`
	ProjectPhase  string      `json:"projectPhase" validate:"min=2"`
	Comments      string      `json:"comments,omitempty"`
	Image         *Attachment `json:"image,omitempty"`
}

func (*ReworkRecord) Kind() Kind { return KindRework }

// ManHoursValue converts the validated man-hours string
func (r *ReworkRecord) ManHoursValue() (float64, error) {
	return parseDecimal(r.ManHours)
}

// CostImpactValue converts the validated cost-impact string
func (r *ReworkRecord) CostImpactValue() (float64, error) {
	return parseDecimal(r.CostImpact)
}

// SatisfactionRecord is a customer satisfaction survey response
type SatisfactionRecord struct {
	ProjectName         string `json:"projectName" validate:"min=2"`
	CustomerName        string `json:"customerName" validate:"min=2"`
	OverallSatisfaction Rating `json:"overallSatisfaction" validate:"oneof=1 2 3 4 5"`
	QualityRating       Rating `json:"qualityRating" validate:"oneof=1 2 3 4 5"`
	TimelinessRating    Rating `json:"timelinessRating" validate:"oneof=1 2 3 4 5"`
	CommunicationRating Rating `json:"communicationRating" validate:"oneof=1 2 3 4 5"`
	Feedback            string `json:"feedback" validate:"min=10"`
}

func (*SatisfactionRecord) Kind() Kind { return KindSatisfaction }
