package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AnTengye/qualitytrack/config"
	"github.com/AnTengye/qualitytrack/model"
	"github.com/AnTengye/qualitytrack/pkg/logger"
)

// DashboardSource supplies the aggregate metrics shown on the dashboard
type DashboardSource interface {
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

// NewDashboardSource returns the reporting-service source when a URL is
// configured and the static fixture otherwise
func NewDashboardSource(cfg *config.DashboardConfig) DashboardSource {
	if cfg.SourceURL == "" {
		return StaticDashboard{}
	}
	return NewRemoteDashboard(cfg.SourceURL, StaticDashboard{})
}

// StaticDashboard serves a fixed demonstration dataset
type StaticDashboard struct{}

func (StaticDashboard) Dashboard(context.Context) (*model.Dashboard, error) {
	return &model.Dashboard{
		Metrics: model.Metrics{
			Inspections:          150,
			Audits:               30,
			Reworks:              15,
			CustomerSatisfaction: 4.2,
			QualityScore:         85,
			ReworkCost:           50000,
			ProjectCompliance:    92,
		},
		Activity: []model.MonthlyActivity{
			{Month: "Jan", Inspections: 20, Audits: 5, Reworks: 2},
			{Month: "Feb", Inspections: 25, Audits: 7, Reworks: 3},
			{Month: "Mar", Inspections: 30, Audits: 6, Reworks: 1},
			{Month: "Apr", Inspections: 22, Audits: 4, Reworks: 2},
			{Month: "May", Inspections: 28, Audits: 5, Reworks: 4},
			{Month: "Jun", Inspections: 35, Audits: 8, Reworks: 3},
		},
		Outcomes: []model.OutcomeShare{
			{Name: "Pass", Value: 70},
			{Name: "Fail", Value: 15},
			{Name: "Needs Improvement", Value: 15},
		},
	}, nil
}

// RemoteDashboard fetches metrics from a reporting service and falls back
// to another source when the service is unavailable
type RemoteDashboard struct {
	url        string
	fallback   DashboardSource
	httpClient *http.Client
}

func NewRemoteDashboard(url string, fallback DashboardSource) *RemoteDashboard {
	return &RemoteDashboard{
		url:      url,
		fallback: fallback,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *RemoteDashboard) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	d, err := s.fetch(ctx)
	if err == nil {
		return d, nil
	}
	if s.fallback == nil {
		return nil, err
	}
	logger.Warn(ctx, "reporting service unavailable, using fallback", "url", s.url, "error", err)
	return s.fallback.Dashboard(ctx)
}

func (s *RemoteDashboard) fetch(ctx context.Context) (*model.Dashboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reporting service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var d model.Dashboard
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &d, nil
}
