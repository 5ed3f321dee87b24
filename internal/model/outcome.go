// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the per-case outcome. Failures are recorded as data so
// that one broken combination never hides the results of the others.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeKind is the top-level classification of a case result.
type OutcomeKind int

const (
	Passed OutcomeKind = iota
	Failed
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// MarshalText lets OutcomeKind appear as its name in JSON reports.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FailureKind names why a failed case failed.
type FailureKind string

const (
	SelectorNotVisible FailureKind = "SelectorNotVisible"
	VisualDiff         FailureKind = "VisualDiff"
	BaselineMissing    FailureKind = "BaselineMissing"
	ExecutionError     FailureKind = "ExecutionError"
)

// Outcome is Passed, Failed(kind, reason) or Skipped(reason).
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Failure FailureKind `json:"failure,omitempty"`
	// Reason carries the failure or skip detail, or a note on a pass
	// (for example "baseline created").
	Reason string `json:"reason,omitempty"`
}

// Pass builds a passing outcome with an optional note.
func Pass(note string) Outcome {
	return Outcome{Kind: Passed, Reason: note}
}

// Fail builds a failing outcome.
func Fail(kind FailureKind, reason string) Outcome {
	return Outcome{Kind: Failed, Failure: kind, Reason: reason}
}

// Skip builds a skipped outcome.
func Skip(reason string) Outcome {
	return Outcome{Kind: Skipped, Reason: reason}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Failed:
		if o.Reason == "" {
			return fmt.Sprintf("failed(%s)", o.Failure)
		}
		return fmt.Sprintf("failed(%s): %s", o.Failure, o.Reason)
	case Skipped:
		return fmt.Sprintf("skipped: %s", o.Reason)
	default:
		if o.Reason == "" {
			return o.Kind.String()
		}
		return fmt.Sprintf("%s (%s)", o.Kind, o.Reason)
	}
}

// CaptureResult is the outcome of running one test case.
type CaptureResult struct {
	Case      TestCase
	Outcome   Outcome
	StartedAt time.Time
	Duration  time.Duration
}

// MarshalJSON flattens the case into its identifying fields for reports.
func (r CaptureResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key        string  `json:"key"`
		Browser    string  `json:"browser"`
		Viewport   string  `json:"viewport"`
		Component  string  `json:"component"`
		Path       string  `json:"path"`
		Outcome    Outcome `json:"outcome"`
		StartedAt  string  `json:"started_at,omitempty"`
		DurationMS int64   `json:"duration_ms"`
	}{
		Key:        r.Case.Key(),
		Browser:    r.Case.Browser.Name,
		Viewport:   r.Case.Viewport.Name,
		Component:  r.Case.Component.Name,
		Path:       r.Case.Component.Path,
		Outcome:    r.Outcome,
		StartedAt:  formatTime(r.StartedAt),
		DurationMS: r.Duration.Milliseconds(),
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
