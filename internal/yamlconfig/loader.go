// Package yamlconfig provides a YAML implementation of config.Loader. The
// layout is the flat viewports/browsers/options shape used by most
// screenshot harnesses.
//
// String values may reference the environment as ${NAME}.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/fsutil"
	"github.com/specialistvlad/shotgrid/internal/model"
	"gopkg.in/yaml.v3"
)

// envRef matches ${NAME}; a bare $ is left alone so selectors like [href$=".pdf"] survive.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

type document struct {
	Target    *target          `yaml:"target"`
	Viewports []model.Viewport `yaml:"viewports"`
	Browsers  []model.Browser  `yaml:"browsers"`
	Options   *options         `yaml:"options"`
	Baseline  *baseline        `yaml:"baseline"`
}

type target struct {
	BaseURL      *string `yaml:"base_url"`
	ManifestPath *string `yaml:"manifest_path"`
}

type options struct {
	StabilizationTimeMs *int              `yaml:"stabilization_time_ms"`
	Parallelize         *bool             `yaml:"parallelize"`
	SelectorOverrides   map[string]string `yaml:"selector_overrides"`
	SelectorTimeoutMs   *int              `yaml:"selector_timeout_ms"`
	InvalidComponents   *string           `yaml:"invalid_components"`
	FailOnEmpty         *bool             `yaml:"fail_on_empty"`
	Workers             *int              `yaml:"workers"`
}

type baseline struct {
	Dir           *string            `yaml:"dir"`
	UpdateMissing *bool              `yaml:"update_missing"`
	S3            *config.S3Baseline `yaml:"s3"`
}

// Loader is the YAML implementation of config.Loader.
type Loader struct {
	// Getenv resolves ${NAME} references. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a YAML loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{Getenv: os.Getenv}
}

// Load reads every .yaml/.yml file under paths, in order, into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .yaml files found in %v", paths)
	}

	m := config.New()
	var seenOptions, seenTarget, seenBaseline string
	for _, file := range files {
		doc, err := l.decodeFile(file)
		if err != nil {
			return nil, err
		}
		if doc.Target != nil {
			if err := claim(&seenTarget, "target", file); err != nil {
				return nil, err
			}
			if doc.Target.BaseURL != nil {
				m.Target.BaseURL = *doc.Target.BaseURL
			}
			if doc.Target.ManifestPath != nil {
				m.Target.ManifestPath = *doc.Target.ManifestPath
			}
		}
		m.Viewports = append(m.Viewports, doc.Viewports...)
		m.Browsers = append(m.Browsers, doc.Browsers...)
		if doc.Options != nil {
			if err := claim(&seenOptions, "options", file); err != nil {
				return nil, err
			}
			applyOptions(&m.Options, doc.Options)
		}
		if doc.Baseline != nil {
			if err := claim(&seenBaseline, "baseline", file); err != nil {
				return nil, err
			}
			applyBaseline(&m.Baseline, doc.Baseline)
		}
		logger.Debug("Merged YAML file.", "file", file, "viewports", len(doc.Viewports), "browsers", len(doc.Browsers))
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return m, nil
}

func (l *Loader) decodeFile(file string) (*document, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	expanded := envRef.ReplaceAllStringFunc(string(raw), func(ref string) string {
		return getenv(envRef.FindStringSubmatch(ref)[1])
	})

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return &doc, nil
}

func claim(slot *string, section, file string) error {
	if *slot != "" {
		return fmt.Errorf("%s section in %s: already defined in %s", section, file, *slot)
	}
	*slot = file
	return nil
}

func applyOptions(dst *config.Options, src *options) {
	if src.StabilizationTimeMs != nil {
		dst.StabilizationTimeMs = *src.StabilizationTimeMs
	}
	if src.Parallelize != nil {
		dst.Parallelize = *src.Parallelize
	}
	for name, sel := range src.SelectorOverrides {
		dst.SelectorOverrides[name] = sel
	}
	if src.SelectorTimeoutMs != nil {
		dst.SelectorTimeoutMs = *src.SelectorTimeoutMs
	}
	if src.InvalidComponents != nil {
		dst.InvalidComponents = config.InvalidComponentPolicy(*src.InvalidComponents)
	}
	if src.FailOnEmpty != nil {
		dst.FailOnEmpty = *src.FailOnEmpty
	}
	if src.Workers != nil {
		dst.Workers = *src.Workers
	}
}

func applyBaseline(dst *config.Baseline, src *baseline) {
	if src.Dir != nil {
		dst.Dir = *src.Dir
	}
	if src.UpdateMissing != nil {
		dst.UpdateMissing = *src.UpdateMissing
	}
	if src.S3 != nil {
		s3 := *src.S3
		if s3.Region == "" {
			s3.Region = "us-east-1"
		}
		dst.S3 = &s3
	}
}

// Marshal renders a model back to YAML, used by `--print-config`.
func Marshal(m *config.Model) ([]byte, error) {
	doc := document{
		Target:    &target{BaseURL: &m.Target.BaseURL, ManifestPath: &m.Target.ManifestPath},
		Viewports: m.Viewports,
		Browsers:  m.Browsers,
		Options: &options{
			StabilizationTimeMs: &m.Options.StabilizationTimeMs,
			Parallelize:         &m.Options.Parallelize,
			SelectorOverrides:   m.Options.SelectorOverrides,
			SelectorTimeoutMs:   &m.Options.SelectorTimeoutMs,
			InvalidComponents:   (*string)(&m.Options.InvalidComponents),
			FailOnEmpty:         &m.Options.FailOnEmpty,
			Workers:             &m.Options.Workers,
		},
		Baseline: &baseline{Dir: &m.Baseline.Dir, UpdateMissing: &m.Baseline.UpdateMissing, S3: m.Baseline.S3},
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
