package service

import (
	"context"
	"fmt"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/google/uuid"
)

// FormService creates and looks up form instances
type FormService struct {
	deps  FormDeps
	store *FormStore
}

func NewFormService(store *FormStore, deps FormDeps) *FormService {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	return &FormService{deps: deps, store: store}
}

// Create opens a new form instance filled with defaults
func (s *FormService) Create(ctx context.Context, kind model.Kind) (*Form, error) {
	form, err := NewForm(uuid.New().String(), kind, s.deps)
	if err != nil {
		return nil, err
	}
	s.store.Save(form)
	logger.Info(logger.WithForm(ctx, form.ID, string(kind)), "form opened")
	return form, nil
}

func (s *FormService) Get(id string) (*Form, error) {
	form := s.store.Get(id)
	if form == nil {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return form, nil
}

// Discard drops a form instance. A form with a submission in flight is
// kept until the pipeline reports back.
func (s *FormService) Discard(id string) error {
	form, err := s.Get(id)
	if err != nil {
		return err
	}
	if form.State() == StateSubmitting {
		return ErrSubmitInFlight
	}
	s.store.Delete(id)
	return nil
}

// Validate checks raw values without any form instance
func (s *FormService) Validate(kind model.Kind, values Values) (model.Record, FieldErrors, error) {
	return s.deps.Validator.ValidateRaw(kind, values)
}
