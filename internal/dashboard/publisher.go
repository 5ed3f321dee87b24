// Package dashboard streams run progress to a live dashboard over socket.io.
//
// The publisher emits one `case_result` event per settled case and a final
// `run_summary` event. Delivery is best effort: a dashboard that goes away
// never affects the run.
package dashboard

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/specialistvlad/shotgrid/internal/results"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names.
const (
	EventCaseResult = "case_result"
	EventRunSummary = "run_summary"
)

const defaultConnectTimeout = 15 * time.Second

// Options configure the connection.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Publisher is a connected socket.io client bound to one run.
type Publisher struct {
	io    *socket.Socket
	runID string
}

// Connect dials the dashboard and waits for the connection to be accepted.
func Connect(ctx context.Context, rawURL, runID string, opts Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("dashboard", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("dashboard URL %q must be absolute", rawURL)
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Connecting to dashboard...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to dashboard.", "sid", io.Id())
		return &Publisher{io: io, runID: runID}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Observe emits a case_result event.
func (p *Publisher) Observe(_ context.Context, r model.CaptureResult) {
	p.io.Emit(EventCaseResult, CasePayload(p.runID, r))
}

// PublishSummary emits the run_summary event.
func (p *Publisher) PublishSummary(report results.Report) {
	p.io.Emit(EventRunSummary, SummaryPayload(report))
}

// Close disconnects from the dashboard.
func (p *Publisher) Close() {
	p.io.Disconnect()
}

// CasePayload is the body of a case_result event.
func CasePayload(runID string, r model.CaptureResult) map[string]any {
	payload := map[string]any{
		"run_id":      runID,
		"key":         r.Case.Key(),
		"browser":     r.Case.Browser.Name,
		"viewport":    r.Case.Viewport.Name,
		"component":   r.Case.Component.Name,
		"path":        r.Case.Component.Path,
		"outcome":     r.Outcome.Kind.String(),
		"duration_ms": r.Duration.Milliseconds(),
	}
	if r.Outcome.Failure != "" {
		payload["failure"] = string(r.Outcome.Failure)
	}
	if r.Outcome.Reason != "" {
		payload["reason"] = r.Outcome.Reason
	}
	return payload
}

// SummaryPayload is the body of a run_summary event.
func SummaryPayload(report results.Report) map[string]any {
	s := report.Summary
	return map[string]any{
		"run_id":                report.RunID,
		"total":                 s.Total,
		"passed":                s.Passed,
		"failed":                s.Failed,
		"skipped":               s.Skipped,
		"data_quality_warnings": s.Warnings,
		"duration_ms":           report.DurationMS,
	}
}
