package baseline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
)

// ActualPrefix is where mismatching captures are stored.
const ActualPrefix = "actual"

// Mode selects what happens when a baseline is absent or stale.
type Mode int

const (
	// Verify compares and reports a missing baseline as Missing.
	Verify Mode = iota
	// CreateMissing writes absent baselines and reports them as Created.
	CreateMissing
	// Overwrite replaces every baseline with the capture.
	Overwrite
)

// Comparator implements browser.Comparator on top of a Store.
type Comparator struct {
	store Store
	mode  Mode
}

var _ browser.Comparator = (*Comparator)(nil)

// NewComparator creates a comparator.
func NewComparator(store Store, mode Mode) *Comparator {
	return &Comparator{store: store, mode: mode}
}

// Compare implements browser.Comparator.
func (c *Comparator) Compare(ctx context.Context, name string, image []byte) (browser.Comparison, error) {
	logger := ctxlog.FromContext(ctx).With("baseline", name)

	if c.mode == Overwrite {
		if err := c.store.Put(ctx, name, image); err != nil {
			return browser.Comparison{}, err
		}
		logger.Info("Baseline updated.")
		return browser.Comparison{Verdict: browser.Created, Detail: "baseline updated"}, nil
	}

	want, err := c.store.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		if c.mode != CreateMissing {
			return browser.Comparison{Verdict: browser.Missing, Detail: fmt.Sprintf("no baseline at %s", name)}, nil
		}
		if err := c.store.Put(ctx, name, image); err != nil {
			return browser.Comparison{}, err
		}
		logger.Info("Baseline created.")
		return browser.Comparison{Verdict: browser.Created, Detail: "baseline created"}, nil
	case err != nil:
		return browser.Comparison{}, err
	}

	if bytes.Equal(want, image) {
		return browser.Comparison{Verdict: browser.Match}, nil
	}

	actual := path.Join(ActualPrefix, name)
	if err := c.store.Put(ctx, actual, image); err != nil {
		logger.Warn("Failed to store mismatching capture.", "error", err)
		actual = "(not stored)"
	}
	return browser.Comparison{
		Verdict: browser.Mismatch,
		Detail:  fmt.Sprintf("digest %s differs from baseline %s; capture at %s", digest(image), digest(want), actual),
	}, nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}
