package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/shotgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{
		"-c", "visual.hcl",
		"--config", "overrides.yaml",
		"--base-url", "http://localhost:3000",
		"--only", "chromium/*/hero,firefox/mobile/*",
		"--only", "webkit/*/*",
		"--report-format", "JSON",
		"--update-baselines",
		"extra",
	}
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, exit, err := Parse(args, out)

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, []string{"visual.hcl", "overrides.yaml", "extra"}, cfg.ConfigPaths)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, []string{"chromium/*/hero", "firefox/mobile/*", "webkit/*/*"}, cfg.Only)
	assert.Equal(t, "json", cfg.ReportFormat)
	assert.True(t, cfg.UpdateBaselines)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse([]string{"grid"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, &app.Config{
		ConfigPaths:  []string{"grid"},
		LogFormat:    "text",
		LogLevel:     "info",
		ReportFormat: "text",
	}, cfg)
}

func TestParse_ExitCleanly(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{name: "help", args: []string{"-h"}},
		{name: "no config path", args: []string{"--log-level", "debug"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)
			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "unknown flag", args: []string{"--nope"}, errContains: "flag provided but not defined"},
		{name: "log format", args: []string{"--log-format", "xml", "grid"}, errContains: "invalid log-format"},
		{name: "log level", args: []string{"--log-level", "trace", "grid"}, errContains: "invalid log-level"},
		{name: "report format", args: []string{"--report-format", "html", "grid"}, errContains: "invalid report-format"},
		{name: "only filter", args: []string{"--only", "chromium//hero", "grid"}, errContains: "invalid --only filter"},
		{name: "port", args: []string{"--healthcheck-port", "70000", "grid"}, errContains: "invalid healthcheck-port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.errContains)
		})
	}
}
