package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/specialistvlad/shotgrid/internal/selector"
)

// RunCase runs one case on b: open an isolated page at the case viewport,
// navigate, wait for the component to be visible, let it settle, capture the
// element and compare it against its baseline. The steps never reorder.
// Errors and panics become outcomes; RunCase does not notify observers.
func (e *Executor) RunCase(ctx context.Context, b browser.Browser, tc model.TestCase) (result model.CaptureResult) {
	ctx = ctxlog.With(ctx, "case", tc.Key())
	start := e.now()
	result = model.CaptureResult{Case: tc, StartedAt: start}
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Case panicked.", "panic", r)
			result.Outcome = model.Fail(model.ExecutionError, fmt.Sprintf("panic: %v", r))
		}
		result.Duration = e.now().Sub(start)
	}()

	result.Outcome = e.capture(ctx, b, tc)
	return result
}

func (e *Executor) capture(ctx context.Context, b browser.Browser, tc model.TestCase) model.Outcome {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Testing component.", "path", tc.Component.Path, "viewport", tc.Viewport.String())

	page, err := b.NewPage(ctx, tc.Viewport)
	if err != nil {
		return e.executionError(ctx, "open page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("Page close failed.", "error", err)
		}
	}()

	if err := page.Goto(ctx, tc.Component.Path, e.opts.SelectorTimeout); err != nil {
		return e.executionError(ctx, "navigate", err)
	}

	sel := selector.Resolve(tc.Component.Name, e.opts.Overrides)
	if err := page.WaitVisible(ctx, sel, e.opts.SelectorTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) && ctx.Err() == nil {
			return model.Fail(model.SelectorNotVisible, fmt.Sprintf("%s not visible within %s", sel, e.opts.SelectorTimeout))
		}
		return e.executionError(ctx, "wait for "+sel, err)
	}

	if d := e.opts.StabilizationTime; d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return model.Skip("cancelled")
		}
	}

	img, err := page.ScreenshotElement(ctx, sel)
	if err != nil {
		return e.executionError(ctx, "capture "+sel, err)
	}

	cmp, err := e.comparator.Compare(ctx, tc.BaselineName(), img)
	if err != nil {
		return e.executionError(ctx, "compare", err)
	}
	switch cmp.Verdict {
	case browser.Match:
		return model.Pass("")
	case browser.Created:
		return model.Pass(cmp.Detail)
	case browser.Missing:
		return model.Fail(model.BaselineMissing, cmp.Detail)
	default:
		return model.Fail(model.VisualDiff, cmp.Detail)
	}
}

// executionError classifies a step failure; a failure caused by run
// cancellation is reported as a skip.
func (e *Executor) executionError(ctx context.Context, step string, err error) model.Outcome {
	if ctx.Err() != nil {
		return model.Skip("cancelled")
	}
	return model.Fail(model.ExecutionError, fmt.Sprintf("%s: %v", step, err))
}
