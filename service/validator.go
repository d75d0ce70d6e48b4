package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/go-playground/validator/v10"
)

// Validator turns raw form values into typed records. It is pure and safe
// for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors line up with form fields
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return model.DecimalPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{validate: v}
}

// Validate builds the record for kind from values and checks every field.
// On failure the record is nil and every violated field has a message.
func (v *Validator) Validate(kind model.Kind, values Values) (model.Record, FieldErrors, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, nil, err
	}

	rec := schema.build(values)
	if errs := v.check(schema, rec); len(errs) > 0 {
		return nil, errs, nil
	}
	return rec, nil, nil
}

// ValidateRaw coerces loosely typed input, such as a decoded JSON object,
// and validates it. Absent fields are treated as empty, not as their form
// defaults. Attachments cannot be supplied this way and are ignored.
func (v *Validator) ValidateRaw(kind model.Kind, values map[string]any) (model.Record, FieldErrors, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, nil, err
	}

	coerced := make(Values, len(values))
	for name, raw := range values {
		if name == ImageField {
			continue
		}
		val, err := schema.Coerce(name, raw)
		if err != nil {
			return nil, nil, err
		}
		coerced[name] = val
	}
	return v.Validate(kind, coerced)
}

// ValidateRecord checks an already typed record, e.g. one decoded from JSON
func (v *Validator) ValidateRecord(rec model.Record) (FieldErrors, error) {
	schema, err := SchemaFor(rec.Kind())
	if err != nil {
		return nil, err
	}
	return v.check(schema, rec), nil
}

func (v *Validator) check(schema *Schema, rec model.Record) FieldErrors {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = message(schema, fe)
	}
	return out
}

func message(schema *Schema, fe validator.FieldError) string {
	subject := fe.Field()
	if f, ok := schema.Field(fe.Field()); ok {
		subject = messageSubject(f.Label)
	}

	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", subject, fe.Param())
	case "decimal":
		return fmt.Sprintf("%s must be a valid number.", subject)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", subject, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid.", subject)
	}
}
