package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/shotgrid/internal/app"
	"github.com/specialistvlad/shotgrid/internal/browser/browsertest"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/history"
	"github.com/specialistvlad/shotgrid/internal/manifest"
	"github.com/specialistvlad/shotgrid/internal/registry"
	"github.com/specialistvlad/shotgrid/internal/testutil"
	"github.com/specialistvlad/shotgrid/internal/yamlconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const library = `{"blocks":{"data":[
	{"name":"hero","path":"/blocks/hero"},
	{"name":"cards","path":"/blocks/cards"},
	{"name":"teaser"}
]}}`

// fakeModule binds one in-memory engine to several browser names.
type fakeModule struct {
	engine   *browsertest.Engine
	browsers []string
}

func (m fakeModule) Register(r *registry.Registry) {
	for _, name := range m.browsers {
		r.RegisterEngine(name, m.engine)
	}
}

func serveManifest(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/sidekick/library.json" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func gridConfig(baseURL, baselineDir, extraOptions string) string {
	return fmt.Sprintf(`
target {
  base_url = %q
}

viewport "mobile" {
  width  = 375
  height = 667
}
viewport "desktop" {
  width  = 1280
  height = 720
}

browser "chromium" {}
browser "firefox" {}
browser "webkit" {
  enabled = false
}

options {
  stabilization_time_ms = 0
  selector_timeout_ms   = 2000
  %s
}

baseline {
  dir = %q
}
`, baseURL, extraOptions, baselineDir)
}

func TestApp_Run_CreatesThenVerifiesBaselines(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := serveManifest(t, http.StatusOK, library)
	baselines := t.TempDir()
	engine := &browsertest.Engine{}
	h := testutil.Harness{
		Files:   map[string]string{"visual.hcl": gridConfig(srv.URL, baselines, "")},
		Modules: []registry.Module{fakeModule{engine: engine, browsers: []string{"chromium", "firefox"}}},
	}

	// --- Act ---
	first := h.Run(context.Background(), t)
	second := h.Run(context.Background(), t)

	// --- Assert ---
	require.NoError(t, first.Err)
	assert.Contains(t, first.Output, "8 cases, 8 passed, 0 failed, 0 skipped")
	assert.Contains(t, first.Output, "Data-quality warnings (1)")
	assert.FileExists(t, filepath.Join(baselines, "chromium", "hero-mobile.png"))
	assert.FileExists(t, filepath.Join(baselines, "firefox", "cards-desktop.png"))

	require.NoError(t, second.Err)
	assert.Contains(t, second.Output, "8 cases, 8 passed, 0 failed, 0 skipped")
	assert.Len(t, engine.Captures(), 16)
}

func TestApp_Run_VisualDiffFailsRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := serveManifest(t, http.StatusOK, library)
	baselines := t.TempDir()
	files := map[string]string{"visual.hcl": gridConfig(srv.URL, baselines, "")}
	seed := testutil.Harness{
		Files:   files,
		Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium", "firefox"}}},
	}
	require.NoError(t, seed.Run(context.Background(), t).Err)

	changed := &browsertest.Engine{Behaviors: map[string]browsertest.Behavior{
		"/blocks/hero": {Shot: []byte("redesigned hero")},
	}}
	h := testutil.Harness{
		Files:   files,
		Modules: []registry.Module{fakeModule{engine: changed, browsers: []string{"chromium", "firefox"}}},
	}

	// --- Act ---
	res := h.Run(context.Background(), t)

	// --- Assert ---
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, app.ErrCasesFailed)
	assert.Contains(t, res.Output, "8 cases, 4 passed, 4 failed, 0 skipped")
	assert.Contains(t, res.Output, "VisualDiff")
	assert.FileExists(t, filepath.Join(baselines, "actual", "chromium", "hero-mobile.png"))
}

func TestApp_Run_UnsupportedBrowserIsSkipped(t *testing.T) {
	t.Parallel()

	srv := serveManifest(t, http.StatusOK, library)
	h := testutil.Harness{
		Files:   map[string]string{"visual.hcl": gridConfig(srv.URL, t.TempDir(), "")},
		Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium"}}},
	}

	res := h.Run(context.Background(), t)

	require.NoError(t, res.Err, "skipped cases do not fail the run")
	assert.Contains(t, res.Output, "8 cases, 4 passed, 0 failed, 4 skipped")
	assert.Contains(t, res.Output, "no engine registered for firefox")
}

func TestApp_Run_ManifestUnavailable(t *testing.T) {
	t.Parallel()

	srv := serveManifest(t, http.StatusInternalServerError, "boom")
	engine := &browsertest.Engine{}
	h := testutil.Harness{
		Files:   map[string]string{"visual.hcl": gridConfig(srv.URL, t.TempDir(), "")},
		Modules: []registry.Module{fakeModule{engine: engine, browsers: []string{"chromium", "firefox"}}},
	}

	res := h.Run(context.Background(), t)

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, manifest.ErrManifestUnavailable)
	assert.Contains(t, res.Err.Error(), "500 Internal Server Error")
	assert.Empty(t, engine.Launched(), "no browser starts when the manifest is unavailable")
}

func TestApp_Run_EmptyManifest(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		options string
		wantErr error
	}{
		{name: "warns by default", options: ""},
		{name: "fails when asked", options: "fail_on_empty = true", wantErr: app.ErrNoCases},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := serveManifest(t, http.StatusOK, `{"blocks":{"data":[]}}`)
			h := testutil.Harness{
				Files:   map[string]string{"visual.hcl": gridConfig(srv.URL, t.TempDir(), tc.options)},
				Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium", "firefox"}}},
			}

			res := h.Run(context.Background(), t)

			if tc.wantErr != nil {
				require.ErrorIs(t, res.Err, tc.wantErr)
			} else {
				require.NoError(t, res.Err)
			}
			assert.Contains(t, res.Output, "No components found.")
		})
	}
}

func TestApp_Run_FilterHistoryAndJSONReport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := serveManifest(t, http.StatusOK, library)
	out := t.TempDir()
	reportPath := filepath.Join(out, "report.json")
	dbPath := filepath.Join(out, "history.db")
	h := testutil.Harness{
		Files: map[string]string{"visual.hcl": gridConfig(srv.URL, t.TempDir(), "")},
		Config: app.Config{
			Only:         []string{"chromium/*/hero"},
			ReportPath:   reportPath,
			ReportFormat: "json",
			HistoryDB:    dbPath,
		},
		Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium", "firefox"}}},
	}

	// --- Act ---
	res := h.Run(context.Background(), t)

	// --- Assert ---
	require.NoError(t, res.Err)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report struct {
		RunID   string `json:"run_id"`
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
		} `json:"summary"`
		Results []struct {
			Key string `json:"key"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Passed)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "chromium/mobile/hero", report.Results[0].Key)
	assert.Equal(t, "chromium/desktop/hero", report.Results[1].Key)

	ctx := ctxlog.Discard(context.Background())
	store, err := history.Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	cases, err := store.CaseHistory(ctx, "chromium/mobile/hero", 10)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestApp_Run_ReportsEveryCaseOfCollidingComponents(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := serveManifest(t, http.StatusOK, `{"blocks":{"data":[
		{"name":"hero","path":"/blocks/a"},
		{"name":"hero","path":"/blocks/b"},
		{"name":"hero#1","path":"/blocks/c"}
	]}}`)
	engine := &browsertest.Engine{Behaviors: map[string]browsertest.Behavior{
		"/blocks/c": {Hidden: true},
	}}
	reportPath := filepath.Join(t.TempDir(), "report.json")
	h := testutil.Harness{
		Files: map[string]string{"visual.hcl": gridConfig(srv.URL, t.TempDir(), "")},
		Config: app.Config{
			ReportPath:   reportPath,
			ReportFormat: "json",
			HistoryDB:    filepath.Join(t.TempDir(), "history.db"),
		},
		Modules: []registry.Module{fakeModule{engine: engine, browsers: []string{"chromium", "firefox"}}},
	}

	// --- Act ---
	res := h.Run(context.Background(), t)

	// --- Assert ---
	require.ErrorIs(t, res.Err, app.ErrCasesFailed, "the hidden hero#1 cases fail the run")
	assert.Len(t, engine.Captures(), 12)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report struct {
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
			Failed int `json:"failed"`
		} `json:"summary"`
		Results []struct {
			Path string `json:"path"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 12, report.Summary.Total)
	assert.Equal(t, 8, report.Summary.Passed)
	assert.Equal(t, 4, report.Summary.Failed)
	require.Len(t, report.Results, 12)
	assert.Equal(t, "/blocks/a", report.Results[0].Path)
	assert.Equal(t, "/blocks/b", report.Results[1].Path)
	assert.Equal(t, "/blocks/c", report.Results[2].Path)
	assert.NotContains(t, res.Output, "Dropping duplicate result.")
	assert.NotContains(t, res.Output, "Failed to record")
}

func TestApp_Run_YAMLConfig(t *testing.T) {
	t.Parallel()

	srv := serveManifest(t, http.StatusOK, library)
	dir := testutil.WriteFiles(t, map[string]string{"visual.yaml": fmt.Sprintf(`
target:
  base_url: %s
viewports:
  - { name: mobile, width: 375, height: 667 }
browsers:
  - { name: chromium, enabled: true }
baseline:
  dir: %s
`, srv.URL, t.TempDir())})
	h := testutil.Harness{
		Config:  app.Config{ConfigPaths: []string{dir}},
		Loader:  yamlconfig.NewLoader(),
		Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium"}}},
	}

	res := h.Run(context.Background(), t)

	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "2 cases, 2 passed, 0 failed, 0 skipped")
}

func TestApp_Run_BaseURLOverride(t *testing.T) {
	t.Parallel()

	srv := serveManifest(t, http.StatusOK, library)
	h := testutil.Harness{
		Files:   map[string]string{"visual.hcl": gridConfig("http://127.0.0.1:1", t.TempDir(), "")},
		Config:  app.Config{BaseURL: srv.URL},
		Modules: []registry.Module{fakeModule{engine: &browsertest.Engine{}, browsers: []string{"chromium", "firefox"}}},
	}

	res := h.Run(context.Background(), t)

	require.NoError(t, res.Err)
	assert.Equal(t, srv.URL, res.App.Model().Target.BaseURL)
	assert.Equal(t, []string{"chromium", "firefox"}, res.App.Registry().Names())
}

func TestApp_StartupPanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	h := testutil.Harness{
		Files: map[string]string{"visual.hcl": `viewport "x" {`},
	}

	res := h.Run(context.Background(), t)

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "application startup panicked")
	assert.Contains(t, res.Err.Error(), "failed to load configuration")
	assert.Nil(t, res.App)
}
