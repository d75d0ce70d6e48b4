package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AnTengye/qualitytrack/config"
	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/google/uuid"
)

// Receipt acknowledges an accepted record
type Receipt struct {
	ID          string     `json:"id"`
	Kind        model.Kind `json:"kind"`
	SubmittedAt time.Time  `json:"submittedAt"`
}

// Submitter finalizes a validated record
type Submitter interface {
	Submit(ctx context.Context, rec model.Record) (*Receipt, error)
}

// Pipeline runs a Submitter under a timeout and normalizes every failure
// into a *SubmissionError.
type Pipeline struct {
	submitter Submitter
	timeout   time.Duration
}

func NewPipeline(submitter Submitter, timeout time.Duration) *Pipeline {
	return &Pipeline{submitter: submitter, timeout: timeout}
}

// NewPipelineFromConfig picks the submitter named by cfg.Mode
func NewPipelineFromConfig(cfg *config.SubmissionConfig) *Pipeline {
	var s Submitter
	switch cfg.Mode {
	case config.SubmissionHTTP:
		s = NewHTTPSubmitter(cfg)
	default:
		s = NewSimulatedSubmitter(cfg.Delay())
	}
	return NewPipeline(s, cfg.Timeout())
}

// Submit hands rec to the submitter and returns exactly one outcome
func (p *Pipeline) Submit(ctx context.Context, rec model.Record) (*Receipt, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	receipt, err := p.submitter.Submit(ctx, rec)
	if err != nil {
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			return nil, subErr
		}
		retryable := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
		return nil, &SubmissionError{Retryable: retryable, Err: err}
	}

	if receipt == nil {
		receipt = &Receipt{ID: uuid.New().String(), Kind: rec.Kind(), SubmittedAt: time.Now()}
	}
	return receipt, nil
}

// SimulatedSubmitter stands in for a network call: it waits a fixed delay,
// logs the record and succeeds.
type SimulatedSubmitter struct {
	delay time.Duration
}

func NewSimulatedSubmitter(delay time.Duration) *SimulatedSubmitter {
	return &SimulatedSubmitter{delay: delay}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, rec model.Record) (*Receipt, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, &SubmissionError{Retryable: true, Err: ctx.Err()}
	case <-timer.C:
	}

	receipt := &Receipt{ID: uuid.New().String(), Kind: rec.Kind(), SubmittedAt: time.Now()}
	logger.Info(ctx, "record submitted", "receipt_id", receipt.ID, "kind", rec.Kind(), "record", rec)
	return receipt, nil
}

// HTTPSubmitter posts records to a collecting API
type HTTPSubmitter struct {
	endpoint   string
	apiToken   string
	httpClient *http.Client
}

// submitRequest is the body sent to the collecting API
type submitRequest struct {
	Kind   model.Kind   `json:"kind"`
	Record model.Record `json:"record"`
}

// submitResponse is the optional acknowledgement body
type submitResponse struct {
	ID string `json:"id"`
}

func NewHTTPSubmitter(cfg *config.SubmissionConfig) *HTTPSubmitter {
	return &HTTPSubmitter{
		endpoint: cfg.Endpoint,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, rec model.Record) (*Receipt, error) {
	jsonData, err := json.Marshal(submitRequest{Kind: rec.Kind(), Record: rec})
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("failed to marshal record: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &SubmissionError{Retryable: true, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, &SubmissionError{Retryable: true, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, &SubmissionError{
			Retryable: retryable,
			Err:       fmt.Errorf("collector returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	receipt := &Receipt{Kind: rec.Kind(), SubmittedAt: time.Now()}
	var ack submitResponse
	if len(body) > 0 && json.Unmarshal(body, &ack) == nil && ack.ID != "" {
		receipt.ID = ack.ID
	} else {
		receipt.ID = uuid.New().String()
	}

	logger.Info(ctx, "record forwarded", "receipt_id", receipt.ID, "kind", rec.Kind(), "status", resp.StatusCode)
	return receipt, nil
}
