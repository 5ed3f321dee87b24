// Package testutil holds the shared harness for end-to-end tests of the app.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/shotgrid/internal/app"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/hcl"
	"github.com/specialistvlad/shotgrid/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files, keyed by relative path, under a fresh temp dir and
// returns that dir.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an end-to-end run.
type HarnessResult struct {
	// Output is everything the app wrote: logs and, without ReportPath, the report.
	Output string
	Err    error
	App    *app.App
}

// Harness describes one end-to-end run.
type Harness struct {
	// Files are written under ConfigDir; HCL files there form the configuration.
	Files  map[string]string
	Config app.Config
	// Loader defaults to the HCL loader.
	Loader  config.Loader
	Modules []registry.Module
}

// Run builds an App from h and runs it with ctx. A startup panic is returned
// as an error.
func (h Harness) Run(ctx context.Context, t *testing.T) *HarnessResult {
	t.Helper()

	cfg := h.Config
	if len(cfg.ConfigPaths) == 0 {
		cfg.ConfigPaths = []string{WriteFiles(t, h.Files)}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	loader := h.Loader
	if loader == nil {
		loader = hcl.NewLoader()
	}
	out := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, appConfig, loader, h.Modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			Output: out.String(),
			Err:    fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	if os.Getenv("SHOTGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
	}
	return &HarnessResult{Output: out.String(), Err: runErr, App: testApp}
}
