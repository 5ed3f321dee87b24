package config

import (
	"maps"
	"slices"
	"time"

	"github.com/specialistvlad/shotgrid/internal/model"
)

// InvalidComponentPolicy decides what happens to manifest entries missing a
// name or a path.
type InvalidComponentPolicy string

const (
	// ExcludeInvalid drops the entry and records a data-quality warning.
	ExcludeInvalid InvalidComponentPolicy = "exclude"
	// FailOnInvalid aborts the run before any case executes.
	FailOnInvalid InvalidComponentPolicy = "fail"
)

const (
	DefaultManifestPath      = "/tools/sidekick/library.json"
	DefaultSelectorTimeoutMs = 30000
	DefaultWorkers           = 4
	DefaultBaselineDir       = "baselines"
)

// Model is the unified, format-agnostic representation of one harness
// configuration.
type Model struct {
	Target    Target
	Viewports []model.Viewport
	Browsers  []model.Browser
	Options   Options
	Baseline  Baseline
}

// Target describes the site under test.
type Target struct {
	BaseURL      string
	ManifestPath string
}

// Options are the tunables of a run.
type Options struct {
	// StabilizationTimeMs is the settle delay before each capture. Zero skips it.
	StabilizationTimeMs int
	// Parallelize lets cases of one browser run concurrently.
	Parallelize bool
	// SelectorOverrides maps a component name to the selector that targets it.
	SelectorOverrides map[string]string
	// SelectorTimeoutMs bounds navigation and the visibility wait of a case.
	SelectorTimeoutMs int
	InvalidComponents InvalidComponentPolicy
	// FailOnEmpty makes a run with zero generated cases exit non-zero.
	FailOnEmpty bool
	// Workers caps concurrent cases per browser when Parallelize is set.
	Workers int
}

// StabilizationTime returns the settle delay as a duration.
func (o Options) StabilizationTime() time.Duration {
	return time.Duration(o.StabilizationTimeMs) * time.Millisecond
}

// SelectorTimeout returns the visibility bound as a duration.
func (o Options) SelectorTimeout() time.Duration {
	return time.Duration(o.SelectorTimeoutMs) * time.Millisecond
}

// Baseline configures where reference images live.
type Baseline struct {
	Dir           string
	UpdateMissing bool
	// S3 is set when baselines live in an S3-compatible bucket instead of Dir.
	S3 *S3Baseline
}

// S3Baseline is the MinIO/S3 location of the baselines.
type S3Baseline struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Region    string `yaml:"region,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
}

// New returns a Model with every default applied and no viewports or browsers.
func New() *Model {
	return &Model{
		Target: Target{ManifestPath: DefaultManifestPath},
		Options: Options{
			Parallelize:       true,
			SelectorOverrides: map[string]string{},
			SelectorTimeoutMs: DefaultSelectorTimeoutMs,
			InvalidComponents: ExcludeInvalid,
			Workers:           DefaultWorkers,
		},
		Baseline: Baseline{Dir: DefaultBaselineDir, UpdateMissing: true},
	}
}

// ViewportList returns the configured viewports in source order.
func (m *Model) ViewportList() []model.Viewport {
	return slices.Clone(m.Viewports)
}

// EnabledBrowsers returns the enabled browsers in source order.
func (m *Model) EnabledBrowsers() []model.Browser {
	var out []model.Browser
	for _, b := range m.Browsers {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

// Overrides returns a copy of the selector override table.
func (m *Model) Overrides() map[string]string {
	return maps.Clone(m.Options.SelectorOverrides)
}
