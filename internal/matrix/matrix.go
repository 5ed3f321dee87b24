// Package matrix expands discovered components against the configured
// browsers and viewports into concrete test cases.
//
// Generation is a pure, deterministic step that completes before any case
// runs: browsers in configured order, then viewports in configured order,
// then components in manifest order.
package matrix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/shotgrid/internal/caseid"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// ErrComponentDataQuality is returned under the fail policy when the manifest
// holds entries without a name or a path.
var ErrComponentDataQuality = errors.New("component data quality")

// DataQualityError lists every manifest entry that blocked generation.
type DataQualityError struct {
	Issues []model.DataQualityIssue
}

func (e *DataQualityError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Error()
	}
	return fmt.Sprintf("%d invalid manifest entries: %s", len(e.Issues), strings.Join(parts, "; "))
}

func (e *DataQualityError) Is(target error) bool { return target == ErrComponentDataQuality }

// Matrix is the generated set of cases plus the entries left out of it.
type Matrix struct {
	Cases []model.TestCase
	// Issues are the manifest entries excluded for missing fields.
	Issues []model.DataQualityIssue
}

// Build computes enabled browsers x viewports x valid components. Disabled
// browsers are ignored. Duplicate components are kept and told apart by
// TestCase.Occurrence.
func Build(components []model.Component, viewports []model.Viewport, browsers []model.Browser, policy config.InvalidComponentPolicy) (*Matrix, error) {
	m := &Matrix{}
	valid := make([]model.Component, 0, len(components))
	for i, c := range components {
		if missing := c.Missing(); len(missing) > 0 {
			m.Issues = append(m.Issues, model.DataQualityIssue{Index: i, Component: c, Missing: missing})
			continue
		}
		valid = append(valid, c)
	}
	if len(m.Issues) > 0 && policy == config.FailOnInvalid {
		return nil, &DataQualityError{Issues: m.Issues}
	}

	seen := make(map[caseid.ID]int)
	for _, b := range browsers {
		if !b.Enabled {
			continue
		}
		for _, v := range viewports {
			for _, c := range valid {
				tc := model.TestCase{Browser: b, Viewport: v, Component: c, Seq: len(m.Cases)}
				id := tc.ID()
				tc.Occurrence = seen[id]
				seen[id]++
				m.Cases = append(m.Cases, tc)
			}
		}
	}
	return m, nil
}

// Len returns the number of cases.
func (m *Matrix) Len() int {
	return len(m.Cases)
}

// Filter returns a matrix holding only the cases whose ID matches at least
// one pattern. No patterns keeps every case. Seq values are preserved.
func (m *Matrix) Filter(patterns []caseid.Pattern) *Matrix {
	if len(patterns) == 0 {
		return m
	}
	out := &Matrix{Issues: m.Issues}
	for _, tc := range m.Cases {
		for _, p := range patterns {
			if p.Match(tc.ID()) {
				out.Cases = append(out.Cases, tc)
				break
			}
		}
	}
	return out
}

// Browsers returns the browsers present in the matrix in first-seen order.
func (m *Matrix) Browsers() []model.Browser {
	var out []model.Browser
	seen := make(map[string]bool)
	for _, tc := range m.Cases {
		if !seen[tc.Browser.Name] {
			seen[tc.Browser.Name] = true
			out = append(out, tc.Browser)
		}
	}
	return out
}
