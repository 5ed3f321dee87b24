package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the invariants every consumer relies on. All problems are
// reported together so a broken file can be fixed in one pass.
func (m *Model) Validate() error {
	if m == nil {
		return errors.New("configuration is nil")
	}
	var errs []error

	seenViewports := make(map[string]struct{}, len(m.Viewports))
	for i, v := range m.Viewports {
		if strings.TrimSpace(v.Name) == "" {
			errs = append(errs, fmt.Errorf("viewport at index %d has an empty name", i))
		} else if _, dup := seenViewports[v.Name]; dup {
			errs = append(errs, fmt.Errorf("viewport %q is defined more than once", v.Name))
		}
		seenViewports[v.Name] = struct{}{}
		if v.Width <= 0 {
			errs = append(errs, fmt.Errorf("viewport %q: width must be a positive integer, got %d", v.Name, v.Width))
		}
		if v.Height <= 0 {
			errs = append(errs, fmt.Errorf("viewport %q: height must be a positive integer, got %d", v.Name, v.Height))
		}
	}

	seenBrowsers := make(map[string]struct{}, len(m.Browsers))
	for i, b := range m.Browsers {
		if strings.TrimSpace(b.Name) == "" {
			errs = append(errs, fmt.Errorf("browser at index %d has an empty name", i))
			continue
		}
		if _, dup := seenBrowsers[b.Name]; dup {
			errs = append(errs, fmt.Errorf("browser %q is defined more than once", b.Name))
		}
		seenBrowsers[b.Name] = struct{}{}
	}

	o := m.Options
	if o.StabilizationTimeMs < 0 {
		errs = append(errs, fmt.Errorf("stabilization_time_ms cannot be negative, got %d", o.StabilizationTimeMs))
	}
	if o.SelectorTimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("selector_timeout_ms must be positive, got %d", o.SelectorTimeoutMs))
	}
	if o.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", o.Workers))
	}
	switch o.InvalidComponents {
	case ExcludeInvalid, FailOnInvalid:
	default:
		errs = append(errs, fmt.Errorf("invalid_components must be %q or %q, got %q", ExcludeInvalid, FailOnInvalid, o.InvalidComponents))
	}
	for name, sel := range o.SelectorOverrides {
		if strings.TrimSpace(sel) == "" {
			errs = append(errs, fmt.Errorf("selector override for %q is empty", name))
		}
	}

	if s3 := m.Baseline.S3; s3 != nil {
		if strings.TrimSpace(s3.Endpoint) == "" {
			errs = append(errs, errors.New("baseline s3 endpoint is required"))
		} else if strings.Contains(s3.Endpoint, "://") {
			errs = append(errs, fmt.Errorf("baseline s3 endpoint must not include scheme: %q", s3.Endpoint))
		}
		if strings.TrimSpace(s3.Bucket) == "" {
			errs = append(errs, errors.New("baseline s3 bucket is required"))
		}
	} else if strings.TrimSpace(m.Baseline.Dir) == "" {
		errs = append(errs, errors.New("baseline dir is required when no s3 bucket is configured"))
	}

	return errors.Join(errs...)
}
