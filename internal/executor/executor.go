package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/shotgrid/internal/browser"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"golang.org/x/sync/errgroup"
)

// EngineSource resolves a browser name to its engine. *registry.Registry
// implements it.
type EngineSource interface {
	Engine(name string) (browser.Engine, bool)
}

// Observer receives every result as soon as it settles. Calls are
// serialized by the executor.
type Observer interface {
	Observe(ctx context.Context, result model.CaptureResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, result model.CaptureResult)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, result model.CaptureResult) { f(ctx, result) }

// Options are the run tunables the executor reads.
type Options struct {
	Overrides         map[string]string
	StabilizationTime time.Duration
	SelectorTimeout   time.Duration
	Parallelize       bool
	Workers           int
}

// OptionsFromConfig copies the executor tunables out of the model.
func OptionsFromConfig(m *config.Model) Options {
	return Options{
		Overrides:         m.Overrides(),
		StabilizationTime: m.Options.StabilizationTime(),
		SelectorTimeout:   m.Options.SelectorTimeout(),
		Parallelize:       m.Options.Parallelize,
		Workers:           m.Options.Workers,
	}
}

// Executor runs test cases. It is safe to call Run once at a time.
type Executor struct {
	engines    EngineSource
	comparator browser.Comparator
	opts       Options
	observers  []Observer
	now        func() time.Time

	notifyMu sync.Mutex
}

// New creates an executor.
func New(engines EngineSource, comparator browser.Comparator, opts Options, observers ...Observer) *Executor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Executor{
		engines:    engines,
		comparator: comparator,
		opts:       opts,
		observers:  observers,
		now:        time.Now,
	}
}

// Run executes every case and returns the results in the order of cases.
// Browsers run concurrently; a browser that cannot be launched marks its
// cases skipped. Cases not started before ctx is cancelled are skipped too.
func (e *Executor) Run(ctx context.Context, cases []model.TestCase) []model.CaptureResult {
	logger := ctxlog.FromContext(ctx)
	results := make([]model.CaptureResult, len(cases))

	var order []string
	groups := make(map[string][]int)
	for i, tc := range cases {
		name := tc.Browser.Name
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], i)
	}

	logger.Info("🚀 Starting case execution.", "cases", len(cases), "browsers", order, "parallelize", e.opts.Parallelize, "workers", e.opts.Workers)
	var g errgroup.Group
	for _, name := range order {
		idxs := groups[name]
		g.Go(func() error {
			e.runBrowser(ctxlog.With(ctx, "browser", name), name, cases, idxs, results)
			return nil
		})
	}
	_ = g.Wait()
	logger.Info("🏁 Case execution finished.", "cases", len(cases))
	return results
}

func (e *Executor) runBrowser(ctx context.Context, name string, cases []model.TestCase, idxs []int, results []model.CaptureResult) {
	logger := ctxlog.FromContext(ctx)

	skipAll := func(reason string) {
		for _, i := range idxs {
			results[i] = e.settle(ctx, model.CaptureResult{Case: cases[i], Outcome: model.Skip(reason)})
		}
	}

	engine, ok := e.engines.Engine(name)
	if !ok {
		skipAll(fmt.Sprintf("no engine registered for %s", name))
		return
	}
	b, err := engine.Launch(ctx, name)
	if err != nil {
		logger.Error("Browser launch failed; skipping its cases.", "error", err, "cases", len(idxs))
		skipAll(fmt.Sprintf("engine unavailable: %v", err))
		return
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("Browser close failed.", "error", err)
		}
	}()

	if !e.opts.Parallelize || e.opts.Workers == 1 || len(idxs) == 1 {
		for _, i := range idxs {
			results[i] = e.runOne(ctx, b, cases[i])
		}
		return
	}

	jobs := make(chan int)
	workers := min(e.opts.Workers, len(idxs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go e.worker(ctx, b, jobs, cases, results, &wg, w)
	}
	for _, i := range idxs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// runOne runs a case unless the run is already cancelled, then notifies
// observers.
func (e *Executor) runOne(ctx context.Context, b browser.Browser, tc model.TestCase) model.CaptureResult {
	if ctx.Err() != nil {
		return e.settle(ctx, model.CaptureResult{Case: tc, Outcome: model.Skip("cancelled")})
	}
	return e.settle(ctx, e.RunCase(ctx, b, tc))
}

func (e *Executor) settle(ctx context.Context, r model.CaptureResult) model.CaptureResult {
	logger := ctxlog.FromContext(ctx).With("case", r.Case.Key(), "outcome", r.Outcome.String())
	switch r.Outcome.Kind {
	case model.Passed:
		logger.Info("✅ Case passed.", "duration", r.Duration)
	case model.Failed:
		logger.Warn("❌ Case failed.", "failure", r.Outcome.Failure, "reason", r.Outcome.Reason, "duration", r.Duration)
	case model.Skipped:
		logger.Info("⏭️ Case skipped.", "reason", r.Outcome.Reason)
	}

	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	for _, o := range e.observers {
		o.Observe(ctx, r)
	}
	return r
}
