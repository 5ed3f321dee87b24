package browser

import "context"

// Verdict is the comparator's answer for one capture.
type Verdict int

const (
	// Match means the capture equals the baseline.
	Match Verdict = iota
	// Mismatch means a baseline exists and differs.
	Mismatch
	// Missing means no baseline exists and none was written.
	Missing
	// Created means no baseline existed and the capture became the baseline.
	Created
)

func (v Verdict) String() string {
	switch v {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Missing:
		return "missing"
	case Created:
		return "created"
	default:
		return "unknown"
	}
}

// Comparison is a verdict plus a human-readable detail for reports.
type Comparison struct {
	Verdict Verdict
	Detail  string
}

// Comparator checks a capture against the baseline stored under name.
type Comparator interface {
	Compare(ctx context.Context, name string, image []byte) (Comparison, error)
}
