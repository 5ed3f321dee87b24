// Package results collects case outcomes into a run summary and renders the
// reports external tooling consumes.
package results

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// ErrAlreadyReported is returned when a case key is recorded twice.
var ErrAlreadyReported = errors.New("result already reported")

// Summary counts outcomes of one run.
type Summary struct {
	Total     int                       `json:"total"`
	Passed    int                       `json:"passed"`
	Failed    int                       `json:"failed"`
	Skipped   int                       `json:"skipped"`
	ByFailure map[model.FailureKind]int `json:"by_failure,omitempty"`
	// Warnings counts manifest entries excluded for missing fields.
	Warnings int `json:"data_quality_warnings"`
}

// OK reports whether no case failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Aggregator accumulates results keyed by TestCase.Identity. It is safe for
// concurrent use.
type Aggregator struct {
	mu     sync.Mutex
	byID  map[model.Identity]model.CaptureResult
	issues []model.DataQualityIssue
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byID: make(map[model.Identity]model.CaptureResult)}
}

// Record stores a result. A case identity can be recorded only once.
func (a *Aggregator) Record(r model.CaptureResult) error {
	id := r.Case.Identity()
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byID[id]; ok {
		return fmt.Errorf("%s: %w", r.Case.Key(), ErrAlreadyReported)
	}
	a.byID[id] = r
	return nil
}

// Observe lets the aggregator subscribe to an executor.
func (a *Aggregator) Observe(ctx context.Context, r model.CaptureResult) {
	if err := a.Record(r); err != nil {
		ctxlog.FromContext(ctx).Error("Dropping duplicate result.", "error", err)
	}
}

// AddIssues records manifest data-quality warnings for the report.
func (a *Aggregator) AddIssues(issues ...model.DataQualityIssue) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issues = append(a.issues, issues...)
}

// Issues returns the recorded data-quality warnings.
func (a *Aggregator) Issues() []model.DataQualityIssue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.issues)
}

// Results returns every result in matrix order.
func (a *Aggregator) Results() []model.CaptureResult {
	a.mu.Lock()
	out := make([]model.CaptureResult, 0, len(a.byID))
	for _, r := range a.byID {
		out = append(out, r)
	}
	a.mu.Unlock()

	slices.SortFunc(out, func(x, y model.CaptureResult) int {
		if x.Case.Seq != y.Case.Seq {
			return x.Case.Seq - y.Case.Seq
		}
		switch k1, k2 := x.Case.Key(), y.Case.Key(); {
		case k1 < k2:
			return -1
		case k1 > k2:
			return 1
		}
		return 0
	})
	return out
}

// Failures returns the failed results in matrix order.
func (a *Aggregator) Failures() []model.CaptureResult {
	var out []model.CaptureResult
	for _, r := range a.Results() {
		if r.Outcome.Kind == model.Failed {
			out = append(out, r)
		}
	}
	return out
}

// Summary counts the recorded outcomes.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Summary{Total: len(a.byID), Warnings: len(a.issues)}
	for _, r := range a.byID {
		switch r.Outcome.Kind {
		case model.Passed:
			s.Passed++
		case model.Failed:
			s.Failed++
			if s.ByFailure == nil {
				s.ByFailure = make(map[model.FailureKind]int)
			}
			s.ByFailure[r.Outcome.Failure]++
		case model.Skipped:
			s.Skipped++
		}
	}
	return s
}
