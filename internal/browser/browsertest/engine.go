// Package browsertest provides in-memory fakes of the browser ports.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// Behavior scripts how a page reacts for one component path.
type Behavior struct {
	// Status is the navigation status; zero means 200.
	Status int
	// GotoErr fails navigation outright.
	GotoErr error
	// Hidden makes WaitVisible time out.
	Hidden bool
	// Delay is spent inside WaitVisible, honoring cancellation.
	Delay time.Duration
	// Panic panics inside ScreenshotElement with this value.
	Panic string
	// Shot overrides the captured bytes.
	Shot []byte
}

// Capture records one page's journey through the executor steps.
type Capture struct {
	Browser  string
	Viewport model.Viewport
	Path     string
	Selector string
	Steps    []string
}

// Engine is a fake browser.Engine. The zero value launches every browser and
// renders every path as visible.
type Engine struct {
	Behaviors map[string]Behavior
	LaunchErr map[string]error

	mu       sync.Mutex
	launched []string
	closed   []string
	captures []*Capture
	active   map[string]int
	peak     map[string]int
}

var _ browser.Engine = (*Engine)(nil)

// Launch implements browser.Engine.
func (e *Engine) Launch(_ context.Context, name string) (browser.Browser, error) {
	if err, ok := e.LaunchErr[name]; ok {
		return nil, fmt.Errorf("launch %s: %w", name, err)
	}
	e.mu.Lock()
	e.launched = append(e.launched, name)
	e.mu.Unlock()
	return &fakeBrowser{engine: e, name: name}, nil
}

// Launched returns the browsers launched so far.
func (e *Engine) Launched() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.launched...)
}

// Closed returns the browsers closed so far.
func (e *Engine) Closed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.closed...)
}

// Captures returns a snapshot of every opened page.
func (e *Engine) Captures() []Capture {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Capture, len(e.captures))
	for i, c := range e.captures {
		out[i] = *c
		out[i].Steps = append([]string(nil), c.Steps...)
	}
	return out
}

// PeakConcurrency is the largest number of pages a browser had open at once.
func (e *Engine) PeakConcurrency(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peak[name]
}

func (e *Engine) behavior(path string) Behavior {
	return e.Behaviors[path]
}

func (e *Engine) step(c *Capture, s string) {
	e.mu.Lock()
	c.Steps = append(c.Steps, s)
	e.mu.Unlock()
}

type fakeBrowser struct {
	engine *Engine
	name   string
}

func (b *fakeBrowser) NewPage(_ context.Context, viewport model.Viewport) (browser.Page, error) {
	e := b.engine
	c := &Capture{Browser: b.name, Viewport: viewport}
	e.mu.Lock()
	if e.active == nil {
		e.active = make(map[string]int)
		e.peak = make(map[string]int)
	}
	e.captures = append(e.captures, c)
	e.active[b.name]++
	if e.active[b.name] > e.peak[b.name] {
		e.peak[b.name] = e.active[b.name]
	}
	e.mu.Unlock()
	return &fakePage{browser: b, capture: c}, nil
}

func (b *fakeBrowser) Close() error {
	b.engine.mu.Lock()
	b.engine.closed = append(b.engine.closed, b.name)
	b.engine.mu.Unlock()
	return nil
}

type fakePage struct {
	browser *fakeBrowser
	capture *Capture
	closed  bool
}

func (p *fakePage) Goto(_ context.Context, path string, _ time.Duration) error {
	e := p.browser.engine
	e.mu.Lock()
	p.capture.Path = path
	e.mu.Unlock()
	e.step(p.capture, "goto")

	bh := e.behavior(path)
	if bh.GotoErr != nil {
		return bh.GotoErr
	}
	if bh.Status != 0 && (bh.Status < 200 || bh.Status > 299) {
		return &browser.NavigationError{URL: path, Status: bh.Status}
	}
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	e := p.browser.engine
	e.mu.Lock()
	p.capture.Selector = selector
	e.mu.Unlock()
	e.step(p.capture, "wait")

	bh := e.behavior(p.capture.Path)
	if bh.Delay > 0 {
		select {
		case <-time.After(bh.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if bh.Hidden {
		return fmt.Errorf("waiting for %q after %s: %w", selector, timeout, browser.ErrTimeout)
	}
	return nil
}

func (p *fakePage) ScreenshotElement(_ context.Context, selector string) ([]byte, error) {
	e := p.browser.engine
	e.step(p.capture, "screenshot")

	bh := e.behavior(p.capture.Path)
	if bh.Panic != "" {
		panic(bh.Panic)
	}
	if bh.Shot != nil {
		return bh.Shot, nil
	}
	return []byte(fmt.Sprintf("%s|%s|%s", p.capture.Browser, p.capture.Viewport.Name, selector)), nil
}

func (p *fakePage) Close() error {
	e := p.browser.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if !p.closed {
		p.closed = true
		e.active[p.browser.name]--
		p.capture.Steps = append(p.capture.Steps, "close")
	}
	return nil
}
