package yamlconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const visualConfig = `
target:
  base_url: ${SITE_URL}
viewports:
  - { name: mobile, width: 375, height: 667 }
  - { name: tablet, width: 768, height: 1024 }
  - { name: desktop, width: 1280, height: 720 }
  - { name: widescreen, width: 1920, height: 1080 }
browsers:
  - { name: chromium, enabled: true }
  - { name: firefox, enabled: true }
  - { name: webkit, enabled: false }
options:
  stabilization_time_ms: 500
  parallelize: true
  selector_overrides:
    cards: .cards-container
    links: 'a[href$=".pdf"]'
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeConfig(t, "visual.yaml", visualConfig)
	loader := &Loader{Getenv: func(k string) string {
		if k == "SITE_URL" {
			return "http://localhost:3000"
		}
		return ""
	}}

	// --- Act ---
	m, err := loader.Load(ctxlog.Discard(context.Background()), path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", m.Target.BaseURL)
	assert.Len(t, m.Viewports, 4)
	want := []model.Browser{{Name: "chromium", Enabled: true}, {Name: "firefox", Enabled: true}}
	if diff := cmp.Diff(want, m.EnabledBrowsers()); diff != "" {
		t.Errorf("EnabledBrowsers() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ".cards-container", m.Options.SelectorOverrides["cards"])
	assert.Equal(t, `a[href$=".pdf"]`, m.Options.SelectorOverrides["links"])
	assert.Equal(t, config.ExcludeInvalid, m.Options.InvalidComponents)
}

func TestLoader_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "visual.yml", "options:\n  stabilizationTime: 500\n")
	_, err := NewLoader().Load(ctxlog.Discard(context.Background()), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stabilizationTime")
}

func TestLoader_ValidatesModel(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "visual.yaml", "viewports:\n  - { name: mobile, width: -1, height: 667 }\n")
	_, err := NewLoader().Load(ctxlog.Discard(context.Background()), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width must be a positive integer")
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	loader := &Loader{Getenv: func(string) string { return "http://example.test" }}
	original, err := loader.Load(ctxlog.Discard(context.Background()), writeConfig(t, "a.yaml", visualConfig))
	require.NoError(t, err)

	// --- Act ---
	raw, err := Marshal(original)
	require.NoError(t, err)
	reloaded, err := loader.Load(ctxlog.Discard(context.Background()), writeConfig(t, "b.yaml", string(raw)))

	// --- Assert ---
	require.NoError(t, err)
	if diff := cmp.Diff(original, reloaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
