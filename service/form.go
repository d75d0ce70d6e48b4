package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
)

// State is the lifecycle position of a form instance
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid" // idle with field errors
	StateSubmitting State = "submitting"
	StateFailed     State = "failed" // pipeline failed, values kept for retry
)

// Failure describes the last pipeline failure
type Failure struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// SubmitResult is what a caller learns from Submit
type SubmitResult struct {
	State   State       `json:"state"`
	Errors  FieldErrors `json:"errors,omitempty"`
	Receipt *Receipt    `json:"receipt,omitempty"`
	Failure *Failure    `json:"failure,omitempty"`
}

// FormView is a point-in-time copy of a form for rendering
type FormView struct {
	ID        string      `json:"id"`
	Kind      model.Kind  `json:"kind"`
	State     State       `json:"state"`
	Values    Values      `json:"values"`
	Errors    FieldErrors `json:"errors,omitempty"`
	Preview   string      `json:"preview,omitempty"`
	Failure   *Failure    `json:"failure,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Form owns the state of one form instance: its values, field errors,
// image preview and submission status. At most one submission is in
// flight at a time.
type Form struct {
	ID        string
	schema    *Schema
	validator *Validator
	pipeline  *Pipeline
	notifier  Notifier
	reader    *AttachmentReader
	createdAt time.Time

	mu        sync.Mutex
	state     State
	values    Values
	errors    FieldErrors
	imageErr  string
	preview   string
	selection uint64
	failure   *Failure
	updatedAt time.Time
}

// FormDeps are the collaborators shared by every form instance
type FormDeps struct {
	Validator   *Validator
	Pipeline    *Pipeline
	Notifier    Notifier
	Attachments *AttachmentReader
}

func NewForm(id string, kind model.Kind, deps FormDeps) (*Form, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(context.Context, Notification) {})
	}
	if deps.Attachments == nil {
		deps.Attachments = NewAttachmentReader(0)
	}

	now := time.Now()
	return &Form{
		ID:        id,
		schema:    schema,
		validator: deps.Validator,
		pipeline:  deps.Pipeline,
		notifier:  deps.Notifier,
		reader:    deps.Attachments,
		createdAt: now,
		state:     StateIdle,
		values:    schema.Defaults(),
		updatedAt: now,
	}, nil
}

func (f *Form) Kind() model.Kind { return f.schema.Kind }

func (f *Form) Schema() *Schema { return f.schema }

func (f *Form) CreatedAt() time.Time { return f.createdAt }

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetField stores a value and clears the stale error of that field only.
// The rest of the form is not re-validated.
func (f *Form) SetField(name string, raw any) error {
	v, err := f.schema.Coerce(name, raw)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = v
	delete(f.errors, name)
	f.touch()
	return nil
}

// AttachImage reads a selected file and makes it the form's image and
// preview. A later selection wins over one still being read; an unreadable
// file leaves a field-scoped error and no image.
func (f *Form) AttachImage(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if !f.schema.HasImage() {
		return "", ErrNoImageField
	}

	f.mu.Lock()
	f.selection++
	gen := f.selection
	f.mu.Unlock()

	att, readErr := f.reader.Read(ctx, r, filename, contentType)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.selection {
		return "", ErrSelectionSuperseded
	}
	f.touch()

	if readErr != nil {
		logger.Warn(ctx, "could not load image preview", "filename", filename, "error", readErr)
		delete(f.values, ImageField)
		f.preview = ""
		f.imageErr = PreviewErrorMessage
		return "", fmt.Errorf("%w: %v", FieldErrors{ImageField: PreviewErrorMessage}, readErr)
	}

	f.values[ImageField] = att
	f.preview = att.DataURI()
	f.imageErr = ""
	return f.preview, nil
}

// Submit validates the current values and, if they pass, runs the pipeline
// and waits for it. A call made while another submission is in flight
// returns ErrSubmitInFlight and has no other effect.
func (f *Form) Submit(ctx context.Context) (*SubmitResult, error) {
	rec, res, err := f.begin(ctx)
	if err != nil || rec == nil {
		return res, err
	}
	return f.finish(ctx, rec), nil
}

// SubmitAsync is Submit without waiting for the pipeline. When the record
// was accepted the returned channel yields the final result once.
func (f *Form) SubmitAsync(ctx context.Context) (*SubmitResult, <-chan *SubmitResult, error) {
	rec, res, err := f.begin(ctx)
	if err != nil || rec == nil {
		return res, nil, err
	}

	done := make(chan *SubmitResult, 1)
	go func() {
		done <- f.finish(ctx, rec)
	}()
	return res, done, nil
}

// begin runs idle -> validating -> {invalid | submitting}
func (f *Form) begin(ctx context.Context) (model.Record, *SubmitResult, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, nil, ErrSubmitInFlight
	}

	f.state = StateValidating
	rec, errs, err := f.validator.Validate(f.schema.Kind, f.values)
	if err != nil {
		f.state = StateIdle
		f.mu.Unlock()
		return nil, nil, err
	}
	f.touch()

	if len(errs) > 0 {
		f.state = StateInvalid
		f.errors = errs
		f.mu.Unlock()

		logger.Info(ctx, "form rejected", "fields", len(errs))
		f.notifier.Notify(ctx, Notification{
			FormID: f.ID,
			Kind:   f.schema.Kind,
			Type:   NotifyInvalid,
			Fields: errs,
		})
		return nil, &SubmitResult{State: StateInvalid, Errors: errs}, nil
	}

	f.state = StateSubmitting
	f.errors = nil
	f.failure = nil
	f.mu.Unlock()
	return rec, &SubmitResult{State: StateSubmitting}, nil
}

// finish runs submitting -> {idle | failed}
func (f *Form) finish(ctx context.Context, rec model.Record) *SubmitResult {
	receipt, err := f.pipeline.Submit(ctx, rec)

	f.mu.Lock()
	if err != nil {
		failure := &Failure{Message: err.Error()}
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			failure.Retryable = subErr.Retryable
		}
		f.state = StateFailed
		f.failure = failure
		f.touch()
		f.mu.Unlock()

		logger.Warn(ctx, "submission failed", "error", err, "retryable", failure.Retryable)
		f.notifier.Notify(ctx, Notification{
			FormID:      f.ID,
			Kind:        f.schema.Kind,
			Type:        NotifyFailed,
			Title:       "Submission failed",
			Description: failure.Message,
			Retryable:   failure.Retryable,
		})
		return &SubmitResult{State: StateFailed, Failure: failure}
	}

	f.resetLocked()
	f.mu.Unlock()

	logger.Info(ctx, "form submitted", "receipt_id", receipt.ID)
	f.notifier.Notify(ctx, Notification{
		FormID:      f.ID,
		Kind:        f.schema.Kind,
		Type:        NotifySubmitted,
		Title:       f.schema.SuccessTitle,
		Description: f.schema.SuccessDescription,
	})
	return &SubmitResult{State: StateIdle, Receipt: receipt}
}

// Reset restores every field to its default and drops errors and preview
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	f.resetLocked()
	return nil
}

func (f *Form) resetLocked() {
	f.values = f.schema.Defaults()
	f.errors = nil
	f.imageErr = ""
	f.preview = ""
	f.failure = nil
	f.selection++ // any read still in progress belongs to the old values
	f.state = StateIdle
	f.touch()
}

// View copies the current state
func (f *Form) View() *FormView {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs FieldErrors
	if len(f.errors) > 0 || f.imageErr != "" {
		errs = make(FieldErrors, len(f.errors)+1)
		for k, v := range f.errors {
			errs[k] = v
		}
		if f.imageErr != "" {
			errs[ImageField] = f.imageErr
		}
	}

	return &FormView{
		ID:        f.ID,
		Kind:      f.schema.Kind,
		State:     f.state,
		Values:    f.values.Clone(),
		Errors:    errs,
		Preview:   f.preview,
		Failure:   f.failure,
		CreatedAt: f.createdAt,
		UpdatedAt: f.updatedAt,
	}
}

func (f *Form) UpdatedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updatedAt
}

func (f *Form) touch() {
	f.updatedAt = time.Now()
}
