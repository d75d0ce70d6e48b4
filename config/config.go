package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Submission SubmissionConfig `yaml:"submission"`
	Attachment AttachmentConfig `yaml:"attachment"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxForms int `yaml:"max_forms"`
}

// Submission modes
const (
	SubmissionSimulated = "simulated"
	SubmissionHTTP      = "http"
)

type SubmissionConfig struct {
	Mode           string `yaml:"mode"` // simulated, http
	DelayMS        int    `yaml:"delay_ms"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Endpoint       string `yaml:"endpoint"`
	APIToken       string `yaml:"api_token"`
}

// Delay is the simulated network latency.
func (c SubmissionConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

func (c SubmissionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type AttachmentConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type DashboardConfig struct {
	SourceURL string `yaml:"source_url"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Load reads the YAML file at path, applies QT_* environment overrides
// (a .env file in the working directory is honoured) and fills defaults.
// An empty path skips the file and builds the config from env and defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.Submission.Mode != SubmissionSimulated && cfg.Submission.Mode != SubmissionHTTP {
		return nil, fmt.Errorf("unknown submission mode %q", cfg.Submission.Mode)
	}
	if cfg.Submission.Mode == SubmissionHTTP && cfg.Submission.Endpoint == "" {
		return nil, fmt.Errorf("submission mode %q requires submission.endpoint", SubmissionHTTP)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Store.MaxForms == 0 {
		cfg.Store.MaxForms = 500
	}
	if cfg.Submission.Mode == "" {
		cfg.Submission.Mode = SubmissionSimulated
	}
	if cfg.Submission.DelayMS == 0 {
		cfg.Submission.DelayMS = 1000
	}
	if cfg.Submission.TimeoutSeconds == 0 {
		cfg.Submission.TimeoutSeconds = 30
	}
	if cfg.Attachment.MaxBytes == 0 {
		cfg.Attachment.MaxBytes = 10 << 20
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 30
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"QT_STATIC_DIR":          &cfg.Server.StaticDir,
		"QT_LOG_LEVEL":           &cfg.Log.Level,
		"QT_LOG_FORMAT":          &cfg.Log.Format,
		"QT_SUBMISSION_MODE":     &cfg.Submission.Mode,
		"QT_SUBMISSION_ENDPOINT": &cfg.Submission.Endpoint,
		"QT_SUBMISSION_TOKEN":    &cfg.Submission.APIToken,
		"QT_DASHBOARD_URL":       &cfg.Dashboard.SourceURL,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"QT_PORT":                &cfg.Server.Port,
		"QT_MAX_FORMS":           &cfg.Store.MaxForms,
		"QT_SUBMISSION_DELAY_MS": &cfg.Submission.DelayMS,
		"QT_SUBMISSION_TIMEOUT":  &cfg.Submission.TimeoutSeconds,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("QT_ATTACHMENT_MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid QT_ATTACHMENT_MAX_BYTES: %w", err)
		}
		cfg.Attachment.MaxBytes = n
	}

	return nil
}
