package matrix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/shotgrid/internal/caseid"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	viewports = []model.Viewport{
		{Name: "mobile", Width: 375, Height: 667},
		{Name: "desktop", Width: 1280, Height: 720},
	}
	browsers = []model.Browser{
		{Name: "chromium", Enabled: true},
		{Name: "firefox", Enabled: true},
		{Name: "webkit", Enabled: false},
	}
	components = []model.Component{
		{Name: "hero", Path: "/blocks/hero"},
		{Name: "cards", Path: "/blocks/cards"},
		{Name: "teaser", Path: "/blocks/teaser"},
	}
)

func keys(m *Matrix) []string {
	out := make([]string, len(m.Cases))
	for i, tc := range m.Cases {
		out[i] = tc.Key()
	}
	return out
}

func TestBuild_CrossProductOrder(t *testing.T) {
	t.Parallel()

	// --- Act ---
	m, err := Build(components, viewports, browsers, config.ExcludeInvalid)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2*2*3, m.Len())
	want := []string{
		"chromium/mobile/hero", "chromium/mobile/cards", "chromium/mobile/teaser",
		"chromium/desktop/hero", "chromium/desktop/cards", "chromium/desktop/teaser",
		"firefox/mobile/hero", "firefox/mobile/cards", "firefox/mobile/teaser",
		"firefox/desktop/hero", "firefox/desktop/cards", "firefox/desktop/teaser",
	}
	if diff := cmp.Diff(want, keys(m)); diff != "" {
		t.Errorf("matrix order mismatch (-want +got):\n%s", diff)
	}
	for i, tc := range m.Cases {
		assert.Equal(t, i, tc.Seq)
	}
	assert.Empty(t, m.Issues)
}

func TestBuild_IsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Build(components, viewports, browsers, config.ExcludeInvalid)
	require.NoError(t, err)
	second, err := Build(components, viewports, browsers, config.ExcludeInvalid)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated builds differ (-first +second):\n%s", diff)
	}
}

func TestBuild_EmptyDimensions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		components []model.Component
		viewports  []model.Viewport
		browsers   []model.Browser
	}{
		{name: "no components", viewports: viewports, browsers: browsers},
		{name: "no viewports", components: components, browsers: browsers},
		{name: "no browsers", components: components, viewports: viewports},
		{
			name:       "all browsers disabled",
			components: components,
			viewports:  viewports,
			browsers:   []model.Browser{{Name: "chromium"}, {Name: "webkit"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Build(tc.components, tc.viewports, tc.browsers, config.ExcludeInvalid)
			require.NoError(t, err)
			assert.Zero(t, m.Len())
		})
	}
}

func TestBuild_ExcludesInvalidComponents(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	input := []model.Component{
		{Name: "hero", Path: "/blocks/hero"},
		{Name: "teaser"},
		{Path: "/blocks/nameless"},
	}

	// --- Act ---
	m, err := Build(input, viewports[:1], browsers[:1], config.ExcludeInvalid)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"chromium/mobile/hero"}, keys(m))
	wantIssues := []model.DataQualityIssue{
		{Index: 1, Component: model.Component{Name: "teaser"}, Missing: []string{"path"}},
		{Index: 2, Component: model.Component{Path: "/blocks/nameless"}, Missing: []string{"name"}},
	}
	if diff := cmp.Diff(wantIssues, m.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FailPolicy(t *testing.T) {
	t.Parallel()

	input := []model.Component{{Name: "hero", Path: "/"}, {Name: "teaser"}}
	_, err := Build(input, viewports, browsers, config.FailOnInvalid)

	require.ErrorIs(t, err, ErrComponentDataQuality)
	var dq *DataQualityError
	require.ErrorAs(t, err, &dq)
	require.Len(t, dq.Issues, 1)
	assert.Equal(t, 1, dq.Issues[0].Index)
	assert.Contains(t, err.Error(), "component at index 1 is missing required properties [path]")
}

func TestBuild_FailPolicyWithCleanManifest(t *testing.T) {
	t.Parallel()

	m, err := Build(components, viewports, browsers, config.FailOnInvalid)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Len())
}

func TestBuild_DuplicateComponents(t *testing.T) {
	t.Parallel()

	input := []model.Component{
		{Name: "hero", Path: "/a"},
		{Name: "hero", Path: "/b"},
	}
	m, err := Build(input, viewports[:1], browsers[:1], config.ExcludeInvalid)

	require.NoError(t, err)
	assert.Equal(t, []string{"chromium/mobile/hero", "chromium/mobile/hero#1"}, keys(m))
	assert.Equal(t, m.Cases[0].ID(), m.Cases[1].ID())
	assert.Equal(t, "/b", m.Cases[1].Component.Path)
}

func TestMatrix_Filter(t *testing.T) {
	t.Parallel()

	m, err := Build(components, viewports, browsers, config.ExcludeInvalid)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "no patterns keeps all", want: keys(m)},
		{
			name:     "component across browsers",
			patterns: []string{"*/desktop/hero"},
			want:     []string{"chromium/desktop/hero", "firefox/desktop/hero"},
		},
		{
			name:     "union of patterns",
			patterns: []string{"firefox/mobile/c*", "chromium/*/teaser"},
			want:     []string{"chromium/mobile/teaser", "chromium/desktop/teaser", "firefox/mobile/cards"},
		},
		{name: "no match", patterns: []string{"webkit"}, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var patterns []caseid.Pattern
			for _, raw := range tc.patterns {
				p, err := caseid.ParsePattern(raw)
				require.NoError(t, err)
				patterns = append(patterns, p)
			}
			got := keys(m.Filter(patterns))
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatrix_Browsers(t *testing.T) {
	t.Parallel()

	m, err := Build(components, viewports, browsers, config.ExcludeInvalid)
	require.NoError(t, err)

	assert.Equal(t, []model.Browser{browsers[0], browsers[1]}, m.Browsers())
}
