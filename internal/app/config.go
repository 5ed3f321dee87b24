package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/shotgrid/internal/caseid"
	"github.com/specialistvlad/shotgrid/internal/results"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // .hcl/.yaml files or directories
	// BaseURL overrides target.base_url from the harness configuration.
	BaseURL string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	HistoryDB    string
	DashboardURL string

	ReportPath   string // empty writes the report to the app output
	ReportFormat string
	Only         []string

	UpdateBaselines bool
	InstallBrowsers bool
	Headful         bool
	PrintConfig     bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = results.FormatText
	}
	if !slices.Contains(results.Formats, cfg.ReportFormat) {
		return nil, fmt.Errorf("invalid report-format %q: must be one of %s", cfg.ReportFormat, strings.Join(results.Formats, ", "))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	if _, err := cfg.patterns(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) patterns() ([]caseid.Pattern, error) {
	out := make([]caseid.Pattern, 0, len(c.Only))
	for _, raw := range c.Only {
		p, err := caseid.ParsePattern(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --only filter: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
