package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// Module is the interface that all engine modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the engines of a single application instance, keyed by
// browser name.
type Registry struct {
	engines map[string]browser.Engine
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{engines: make(map[string]browser.Engine)}
}

// RegisterEngine binds a browser name to an engine. Registering a name twice
// is a programming error and panics.
func (r *Registry) RegisterEngine(name string, engine browser.Engine) {
	if _, exists := r.engines[name]; exists {
		panic(fmt.Sprintf("engine for browser '%s' already registered", name))
	}
	slog.Debug("Registering browser engine.", "browser", name)
	r.engines[name] = engine
}

// Engine returns the engine registered for name.
func (r *Registry) Engine(name string) (browser.Engine, bool) {
	e, ok := r.engines[name]
	return e, ok
}

// Names returns the registered browser names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Unsupported returns the enabled browsers that no module registered an
// engine for, logging a warning for each.
func (r *Registry) Unsupported(ctx context.Context, browsers []model.Browser) []string {
	logger := ctxlog.FromContext(ctx)
	var missing []string
	for _, b := range browsers {
		if !b.Enabled {
			continue
		}
		if _, ok := r.engines[b.Name]; !ok {
			logger.Warn("No engine registered for browser; its cases will be skipped.", "browser", b.Name, "available", r.Names())
			missing = append(missing, b.Name)
		}
	}
	return missing
}

// Close closes every engine that holds resources. An engine registered under
// several names is closed once.
func (r *Registry) Close() error {
	var errs []error
	closed := make(map[io.Closer]bool)
	for _, name := range r.Names() {
		c, ok := r.engines[name].(io.Closer)
		if !ok || closed[c] {
			continue
		}
		closed[c] = true
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close engine %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
