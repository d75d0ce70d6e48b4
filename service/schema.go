package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AnTengye/qualitytrack/model"
)

// FieldType describes how a form field is entered and coerced
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextArea FieldType = "textarea"
	FieldEnum     FieldType = "enum"
	FieldDecimal  FieldType = "decimal"
	FieldBool     FieldType = "bool"
	FieldImage    FieldType = "image"
)

// ImageField is the name every image-capable form uses for its attachment
const ImageField = "image"

// FieldSpec declares one field of a form
type FieldSpec struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Type     FieldType      `json:"type"`
	Options  []model.Option `json:"options,omitempty"`
	Default  any            `json:"default"`
	Optional bool           `json:"optional,omitempty"`
}

// Schema declares the fields of one record kind and how raw values become
// its typed record
type Schema struct {
	Kind               model.Kind  `json:"kind"`
	Title              string      `json:"title"`
	Fields             []FieldSpec `json:"fields"`
	SuccessTitle       string      `json:"-"`
	SuccessDescription string      `json:"-"`

	build func(v Values) model.Record
}

// Field looks up a field by name
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// HasImage reports whether the form accepts an image attachment
func (s *Schema) HasImage() bool {
	_, ok := s.Field(ImageField)
	return ok
}

// Defaults returns a fresh value set holding every field's default
func (s *Schema) Defaults() Values {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		if f.Type == FieldImage {
			continue
		}
		v[f.Name] = f.Default
	}
	return v
}

// Coerce converts a raw input value to the representation stored for the
// field: strings for text-like fields and bool for checkboxes.
func (s *Schema) Coerce(name string, raw any) (any, error) {
	f, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	switch f.Type {
	case FieldImage:
		return nil, fmt.Errorf("%w: %s is set by attaching a file", ErrFieldType, name)
	case FieldBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			if v == "on" {
				return true, nil
			}
			if v == "" {
				return false, nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s expects a boolean", ErrFieldType, name)
			}
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s expects a boolean", ErrFieldType, name)
	default:
		switch v := raw.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
		return nil, fmt.Errorf("%w: %s expects text", ErrFieldType, name)
	}
}

// messageSubject turns a field label into the sentence-case subject used in
// validation messages: "Project Name" becomes "Project name".
func messageSubject(label string) string {
	words := strings.Fields(label)
	for i := 1; i < len(words); i++ {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, " ")
}

// Values holds the raw state of a form keyed by field name
type Values map[string]any

func (v Values) Text(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Image() *model.Attachment {
	a, _ := v[ImageField].(*model.Attachment)
	return a
}

// Clone copies the map; attachments are shared since they are never mutated
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

var schemas = map[model.Kind]*Schema{
	model.KindInspection: {
		Kind:  model.KindInspection,
		Title: "Material & Workmanship Inspection",
		Fields: []FieldSpec{
			{Name: "projectName", Label: "Project Name", Type: FieldText, Default: ""},
			{Name: "materialUsed", Label: "Material Used", Type: FieldText, Default: ""},
			{Name: "workmanshipQuality", Label: "Workmanship Quality", Type: FieldEnum, Options: model.WorkmanshipQualities, Default: string(model.WorkmanshipGood)},
			{Name: "inspectionOutcome", Label: "Inspection Outcome", Type: FieldEnum, Options: model.InspectionOutcomes, Default: string(model.OutcomePass)},
			{Name: "comments", Label: "Comments", Type: FieldTextArea, Default: "", Optional: true},
			{Name: ImageField, Label: "Inspection Image", Type: FieldImage, Optional: true},
		},
		SuccessTitle:       "Inspection submitted",
		SuccessDescription: "The inspection has been successfully recorded.",
		build: func(v Values) model.Record {
			return &model.InspectionRecord{
				ProjectName:        v.Text("projectName"),
				MaterialUsed:       v.Text("materialUsed"),
				WorkmanshipQuality: model.WorkmanshipQuality(v.Text("workmanshipQuality")),
				InspectionOutcome:  model.InspectionOutcome(v.Text("inspectionOutcome")),
				Comments:           v.Text("comments"),
				Image:              v.Image(),
			}
		},
	},
	model.KindAudit: {
		Kind:  model.KindAudit,
		Title: "Project Audit",
		Fields: []FieldSpec{
			{Name: "projectName", Label: "Project Name", Type: FieldText, Default: ""},
			{Name: "auditType", Label: "Audit Type", Type: FieldEnum, Options: model.AuditTypes, Default: string(model.AuditQuality)},
			{Name: "complianceStatus", Label: "Compliance Status", Type: FieldEnum, Options: model.ComplianceStatuses, Default: string(model.Compliant)},
			{Name: "findings", Label: "Findings", Type: FieldTextArea, Default: ""},
			{Name: "recommendations", Label: "Recommendations", Type: FieldTextArea, Default: "", Optional: true},
			{Name: "signOff", Label: "Sign Off", Type: FieldBool, Default: false},
			{Name: ImageField, Label: "Audit Image", Type: FieldImage, Optional: true},
		},
		SuccessTitle:       "Audit submitted",
		SuccessDescription: "The audit has been successfully recorded.",
		build: func(v Values) model.Record {
			return &model.AuditRecord{
				ProjectName:      v.Text("projectName"),
				AuditType:        model.AuditType(v.Text("auditType")),
				ComplianceStatus: model.ComplianceStatus(v.Text("complianceStatus")),
				Findings:         v.Text("findings"),
				Recommendations:  v.Text("recommendations"),
				SignOff:          v.Bool("signOff"),
				Image:            v.Image(),
			}
		},
	},
	model.KindRework: {
		Kind:  model.KindRework,
		Title: "Rework Tracking",
		Fields: []FieldSpec{
			{Name: "projectName", Label: "Project Name", Type: FieldText, Default: ""},
			{Name: "reworkType", Label: "Rework Type", Type: FieldEnum, Options: model.ReworkTypes, Default: string(model.ReworkMaterialFailure)},
			{Name: "reworkReason", Label: "Rework Reason", Type: FieldTextArea, Default: ""},
			{Name: "materialUsage", Label: "Material Usage", Type: FieldText, Default: ""},
			{Name: "manHours", Label: "Man Hours", Type: FieldDecimal, Default: ""},
			{Name: "costImpact", Label: "Cost Impact", Type: FieldDecimal, Default: ""},
			{Name: "projectPhase", Label: "Project Phase", Type: FieldText, Default: ""},
			{Name: "comments", Label: "Additional Comments", Type: FieldTextArea, Default: "", Optional: true},
			{Name: ImageField, Label: "Rework Image", Type: FieldImage, Optional: true},
		},
		SuccessTitle:       "Rework submitted",
		SuccessDescription: "The rework has been successfully recorded.",
		build: func(v Values) model.Record {
			return &model.ReworkRecord{
				ProjectName:   v.Text("projectName"),
				ReworkType:    model.ReworkType(v.Text("reworkType")),
				ReworkReason:  v.Text("reworkReason"),
				MaterialUsage: v.Text("materialUsage"),
				ManHours:      v.Text("manHours"),
				CostImpact:    v.Text("costImpact"),
				ProjectPhase:  v.Text("projectPhase"),
				Comments:      v.Text("comments"),
				Image:         v.Image(),
			}
		},
	},
	model.KindSatisfaction: {
		Kind:  model.KindSatisfaction,
		Title: "Customer Satisfaction Survey",
		Fields: []FieldSpec{
			{Name: "projectName", Label: "Project Name", Type: FieldText, Default: ""},
			{Name: "customerName", Label: "Customer Name", Type: FieldText, Default: ""},
			{Name: "overallSatisfaction", Label: "Overall Satisfaction", Type: FieldEnum, Options: model.Ratings, Default: "3"},
			{Name: "qualityRating", Label: "Quality Rating", Type: FieldEnum, Options: model.Ratings, Default: "3"},
			{Name: "timelinessRating", Label: "Timeliness Rating", Type: FieldEnum, Options: model.Ratings, Default: "3"},
			{Name: "communicationRating", Label: "Communication Rating", Type: FieldEnum, Options: model.Ratings, Default: "3"},
			{Name: "feedback", Label: "Feedback", Type: FieldTextArea, Default: ""},
		},
		SuccessTitle:       "Feedback submitted",
		SuccessDescription: "Thank you for your feedback!",
		build: func(v Values) model.Record {
			return &model.SatisfactionRecord{
				ProjectName:         v.Text("projectName"),
				CustomerName:        v.Text("customerName"),
				OverallSatisfaction: model.Rating(v.Text("overallSatisfaction")),
				QualityRating:       model.Rating(v.Text("qualityRating")),
				TimelinessRating:    model.Rating(v.Text("timelinessRating")),
				CommunicationRating: model.Rating(v.Text("communicationRating")),
				Feedback:            v.Text("feedback"),
			}
		},
	},
}

// SchemaFor returns the schema of a record kind
func SchemaFor(kind model.Kind) (*Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return s, nil
}

// Schemas returns every schema in navigation order
func Schemas() []*Schema {
	out := make([]*Schema, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		out = append(out, schemas[k])
	}
	return out
}
