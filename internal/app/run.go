package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/shotgrid/internal/baseline"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/dashboard"
	"github.com/specialistvlad/shotgrid/internal/executor"
	"github.com/specialistvlad/shotgrid/internal/history"
	"github.com/specialistvlad/shotgrid/internal/manifest"
	"github.com/specialistvlad/shotgrid/internal/matrix"
	"github.com/specialistvlad/shotgrid/internal/results"
	"github.com/specialistvlad/shotgrid/internal/yamlconfig"
)

var (
	// ErrCasesFailed is returned by Run when at least one case failed.
	ErrCasesFailed = errors.New("visual regression run has failures")
	// ErrNoCases is returned by Run when the matrix is empty and the
	// configuration asks for that to be fatal.
	ErrNoCases = errors.New("no test cases were generated")
)

// Run executes one full harness run: fetch the manifest, build the matrix,
// execute every case, and report. The report is written even when cases fail.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defer func() {
		if cerr := a.registry.Close(); cerr != nil {
			a.logger.Warn("Failed to release browser engines.", "error", cerr)
		}
	}()

	if a.config.PrintConfig {
		raw, err := yamlconfig.Marshal(a.model)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		_, err = a.outW.Write(raw)
		return err
	}

	if err := a.healthCheckServer(); err != nil {
		return err
	}
	defer func() { _ = a.closeHealthCheckServer() }()

	runID := a.newRunID()
	startedAt := time.Now()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting visual regression run.", "base_url", a.model.Target.BaseURL)

	fetcher := manifest.NewFetcher(nil, a.model.Target.BaseURL)
	defer fetcher.Close()
	fetched, err := fetcher.Fetch(ctx, a.model.Target.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to fetch component manifest: %w", err)
	}
	a.metrics.ManifestFetched(len(fetched.Components), len(fetched.Issues))

	m, err := matrix.Build(fetched.Components, a.model.ViewportList(), a.model.Browsers, a.model.Options.InvalidComponents)
	if err != nil {
		return err
	}
	patterns, err := a.config.patterns()
	if err != nil {
		return err
	}
	if len(patterns) > 0 {
		m = m.Filter(patterns)
		logger.Info("Applied case filter.", "patterns", len(patterns), "cases", m.Len())
	}
	a.metrics.MatrixBuilt(m.Len())
	a.registry.Unsupported(ctx, m.Browsers())

	agg := results.NewAggregator()
	agg.AddIssues(m.Issues...)

	store, err := a.openHistory(ctx, runID, startedAt)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	publisher := a.connectDashboard(ctx, runID)
	if publisher != nil {
		defer publisher.Close()
	}

	if m.Len() == 0 {
		logger.Warn("No components found, nothing to capture.")
	} else {
		comparator, err := a.newComparator(ctx)
		if err != nil {
			return err
		}
		observers := []executor.Observer{agg, a.metrics}
		if store != nil {
			observers = append(observers, history.NewRecorder(store, runID))
		}
		if publisher != nil {
			observers = append(observers, publisher)
		}
		logger.Info("📸 Capturing screenshots.", "cases", m.Len(), "browsers", len(m.Browsers()))
		executor.New(a.registry, comparator, executor.OptionsFromConfig(a.model), observers...).Run(ctx, m.Cases)
	}

	report := agg.Report(runID, startedAt, time.Now())
	if store != nil {
		if err := store.FinishRun(ctx, runID, report.FinishedAt, report.Summary); err != nil {
			logger.Warn("Failed to record run summary.", "error", err)
		}
	}
	if publisher != nil {
		publisher.PublishSummary(report)
	}
	if err := a.writeReport(report); err != nil {
		return err
	}
	logger.Info("🏁 Run finished.",
		"total", report.Summary.Total,
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"duration_ms", report.DurationMS,
	)

	switch {
	case report.Summary.Total == 0 && a.model.Options.FailOnEmpty:
		return ErrNoCases
	case !report.Summary.OK():
		return fmt.Errorf("%w: %d of %d cases failed", ErrCasesFailed, report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

func (a *App) newComparator(ctx context.Context) (*baseline.Comparator, error) {
	mode := baseline.Verify
	switch {
	case a.config.UpdateBaselines:
		mode = baseline.Overwrite
	case a.model.Baseline.UpdateMissing:
		mode = baseline.CreateMissing
	}

	if s3 := a.model.Baseline.S3; s3 != nil {
		store, err := baseline.NewMinioStore(ctx, *s3)
		if err != nil {
			return nil, fmt.Errorf("failed to open baseline bucket: %w", err)
		}
		return baseline.NewComparator(store, mode), nil
	}
	return baseline.NewComparator(baseline.NewFSStore(a.model.Baseline.Dir), mode), nil
}

func (a *App) openHistory(ctx context.Context, runID string, startedAt time.Time) (*history.Store, error) {
	if a.config.HistoryDB == "" {
		return nil, nil
	}
	store, err := history.Open(ctx, a.config.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	if err := store.BeginRun(ctx, runID, a.model.Target.BaseURL, startedAt); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return store, nil
}

// connectDashboard returns nil when no dashboard is configured or it cannot
// be reached. A dashboard outage never fails the run.
func (a *App) connectDashboard(ctx context.Context, runID string) *dashboard.Publisher {
	if a.config.DashboardURL == "" {
		return nil
	}
	p, err := dashboard.Connect(ctx, a.config.DashboardURL, runID, dashboard.Options{})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Dashboard unavailable, continuing without live results.", "error", err)
		return nil
	}
	return p
}

func (a *App) writeReport(report results.Report) error {
	if a.config.ReportPath == "" {
		if err := results.Write(a.outW, a.config.ReportFormat, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}
	f, err := os.Create(a.config.ReportPath)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return writeAndClose(f, a.config.ReportFormat, report)
}

// writeAndClose renders report into w and closes it. The first write or
// close error is returned.
func writeAndClose(w io.WriteCloser, format string, report results.Report) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()
	if err := results.Write(w, format, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
