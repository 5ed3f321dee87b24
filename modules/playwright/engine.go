package playwright

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"
	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
)

// Options configure the engine.
type Options struct {
	// BaseURL is the site root every case path resolves against.
	BaseURL string
	// Headful shows browser windows.
	Headful bool
	// Install downloads the driver and browsers before the first launch.
	Install bool
}

// Engine starts the playwright driver on first use and launches browsers
// from it. It is safe for concurrent use.
type Engine struct {
	opts Options

	once   sync.Once
	driver *pw.Playwright
	err    error
}

var _ browser.Engine = (*Engine)(nil)

// NewEngine creates an engine; nothing is started until Launch.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) start(ctx context.Context) (*pw.Playwright, error) {
	e.once.Do(func() {
		logger := ctxlog.FromContext(ctx)
		if e.opts.Install {
			logger.Info("Installing playwright driver and browsers.", "browsers", Browsers)
			if err := pw.Install(&pw.RunOptions{Browsers: Browsers}); err != nil {
				e.err = fmt.Errorf("install playwright: %w", err)
				return
			}
		}
		logger.Debug("Starting playwright driver.")
		e.driver, e.err = pw.Run()
		if e.err != nil {
			e.err = fmt.Errorf("start playwright: %w", e.err)
		}
	})
	return e.driver, e.err
}

// Launch implements browser.Engine.
func (e *Engine) Launch(ctx context.Context, name string) (browser.Browser, error) {
	driver, err := e.start(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", browser.ErrUnavailable, err)
	}

	var bt pw.BrowserType
	switch name {
	case "chromium":
		bt = driver.Chromium
	case "firefox":
		bt = driver.Firefox
	case "webkit":
		bt = driver.WebKit
	default:
		return nil, fmt.Errorf("%w: playwright cannot drive %q", browser.ErrUnavailable, name)
	}

	b, err := bt.Launch(pw.BrowserTypeLaunchOptions{Headless: pw.Bool(!e.opts.Headful)})
	if err != nil {
		return nil, fmt.Errorf("%w: launch %s: %w", browser.ErrUnavailable, name, err)
	}
	ctxlog.FromContext(ctx).Info("Browser launched.", "browser", name, "version", b.Version())
	return &Browser{name: name, baseURL: e.opts.BaseURL, browser: b}, nil
}

// Close stops the driver if it was started.
func (e *Engine) Close() error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Stop()
}

// Browser is a launched playwright browser.
type Browser struct {
	name    string
	baseURL string
	browser pw.Browser
}

// NewPage opens a fresh BrowserContext with the viewport and one page in it.
func (b *Browser) NewPage(ctx context.Context, viewport model.Viewport) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: viewport.Width, Height: viewport.Height},
	}
	if b.baseURL != "" {
		opts.BaseURL = pw.String(b.baseURL)
	}
	bctx, err := b.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new context for %s: %w", b.name, err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page for %s: %w", b.name, err)
	}
	return &Page{context: bctx, page: page}, nil
}

// Close closes the browser and every context still open in it.
func (b *Browser) Close() error {
	return b.browser.Close()
}

// Page is a single page inside a case-owned BrowserContext.
type Page struct {
	context pw.BrowserContext
	page    pw.Page
}

// Goto navigates and rejects non-2xx responses.
func (p *Page) Goto(ctx context.Context, path string, timeout time.Duration) error {
	ms, err := budget(ctx, timeout)
	if err != nil {
		return err
	}
	resp, err := p.page.Goto(path, pw.PageGotoOptions{Timeout: pw.Float(ms)})
	if err != nil {
		return mapErr(err)
	}
	// Same-document navigations have no response.
	if resp != nil && !resp.Ok() {
		return &browser.NavigationError{URL: resp.URL(), Status: resp.Status()}
	}
	return nil
}

// WaitVisible waits for the first match of selector to be visible.
func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	ms, err := budget(ctx, timeout)
	if err != nil {
		return err
	}
	err = p.page.Locator(selector).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(ms),
	})
	return mapErr(err)
}

// ScreenshotElement captures only the element, with animations frozen.
func (p *Page) ScreenshotElement(ctx context.Context, selector string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := p.page.Locator(selector).First().Screenshot(pw.LocatorScreenshotOptions{
		Animations: pw.ScreenshotAnimationsDisabled,
		Type:       pw.ScreenshotTypePng,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return img, nil
}

// Close disposes of the page's BrowserContext.
func (p *Page) Close() error {
	return p.context.Close()
}

// budget clamps timeout to the context deadline and converts it to the
// milliseconds playwright expects. Zero means no timeout.
func budget(ctx context.Context, timeout time.Duration) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, fmt.Errorf("deadline passed: %w", browser.ErrTimeout)
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, nil
	}
	return float64(max(timeout.Milliseconds(), 1)), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pw.ErrTimeout) {
		return fmt.Errorf("%w: %w", browser.ErrTimeout, err)
	}
	return err
}
