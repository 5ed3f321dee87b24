package browser

import (
	"context"
	"time"

	"github.com/specialistvlad/shotgrid/internal/model"
)

// Engine launches one browser process for a named engine.
type Engine interface {
	Launch(ctx context.Context, name string) (Browser, error)
}

// Browser is a running engine. It is shared by every case of that engine and
// must allow concurrent NewPage calls.
type Browser interface {
	// NewPage opens an isolated browsing context sized to the viewport. The
	// page and its context belong to one case only.
	NewPage(ctx context.Context, viewport model.Viewport) (Page, error)
	Close() error
}

// Page is the per-case browsing context.
type Page interface {
	// Goto navigates to path, resolved against the site base URL. A non-2xx
	// response is a *NavigationError.
	Goto(ctx context.Context, path string, timeout time.Duration) error
	// WaitVisible blocks until selector is visible, returning an error
	// wrapping ErrTimeout when timeout elapses first.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// ScreenshotElement captures the first element matching selector as PNG.
	ScreenshotElement(ctx context.Context, selector string) ([]byte, error)
	Close() error
}
