package browsertest

import (
	"context"
	"sync"

	"github.com/specialistvlad/shotgrid/internal/browser"
)

// Comparator is a fake browser.Comparator. Names without a scripted verdict
// match.
type Comparator struct {
	Verdicts map[string]browser.Comparison
	Errs     map[string]error

	mu    sync.Mutex
	names []string
}

var _ browser.Comparator = (*Comparator)(nil)

// Compare implements browser.Comparator.
func (c *Comparator) Compare(_ context.Context, name string, _ []byte) (browser.Comparison, error) {
	c.mu.Lock()
	c.names = append(c.names, name)
	c.mu.Unlock()
	if err, ok := c.Errs[name]; ok {
		return browser.Comparison{}, err
	}
	if v, ok := c.Verdicts[name]; ok {
		return v, nil
	}
	return browser.Comparison{Verdict: browser.Match}, nil
}

// Names returns every baseline name compared so far.
func (c *Comparator) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}
