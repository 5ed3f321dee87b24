// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent_Missing(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		component Component
		missing   []string
	}{
		{name: "complete", component: Component{Name: "hero", Path: "/hero"}},
		{name: "no path", component: Component{Name: "teaser"}, missing: []string{"path"}},
		{name: "no name", component: Component{Path: "/x"}, missing: []string{"name"}},
		{name: "empty", component: Component{}, missing: []string{"name", "path"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.missing, tc.component.Missing())
			assert.Equal(t, len(tc.missing) == 0, tc.component.Valid())
		})
	}
}

func TestTestCase_KeyAndBaseline(t *testing.T) {
	t.Parallel()

	tc := TestCase{
		Browser:   Browser{Name: "chromium", Enabled: true},
		Viewport:  Viewport{Name: "mobile", Width: 375, Height: 667},
		Component: Component{Name: "hero", Path: "/blocks/hero"},
	}

	assert.Equal(t, "chromium/mobile/hero", tc.Key())
	assert.Equal(t, "chromium/hero-mobile.png", tc.BaselineName())

	tc.Occurrence = 1
	assert.Equal(t, "chromium/mobile/hero#1", tc.Key())
	assert.Equal(t, "chromium/mobile/hero", tc.ID().String(), "the triple ignores the occurrence")
}

func TestTestCase_IdentityOutlivesKeyCollisions(t *testing.T) {
	t.Parallel()

	base := TestCase{
		Browser:   Browser{Name: "chromium", Enabled: true},
		Viewport:  Viewport{Name: "a", Width: 375, Height: 667},
		Component: Component{Name: "hero", Path: "/blocks/hero"},
	}
	secondHero := base
	secondHero.Occurrence = 1
	literal := base
	literal.Component.Name = "hero#1"
	nestedComponent := base
	nestedComponent.Component.Name = "b/c"
	nestedViewport := base
	nestedViewport.Viewport.Name = "a/b"
	nestedViewport.Component.Name = "c"

	assert.Equal(t, secondHero.Key(), literal.Key())
	assert.NotEqual(t, secondHero.Identity(), literal.Identity())
	assert.Equal(t, nestedComponent.Key(), nestedViewport.Key())
	assert.NotEqual(t, nestedComponent.Identity(), nestedViewport.Identity())
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "passed", Pass("").String())
	assert.Equal(t, "passed (baseline created)", Pass("baseline created").String())
	assert.Equal(t, "failed(VisualDiff)", Fail(VisualDiff, "").String())
	assert.Equal(t, "failed(ExecutionError): boom", Fail(ExecutionError, "boom").String())
	assert.Equal(t, "skipped: cancelled", Skip("cancelled").String())
}

func TestCaptureResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	result := CaptureResult{
		Case: TestCase{
			Browser:   Browser{Name: "firefox", Enabled: true},
			Viewport:  Viewport{Name: "desktop", Width: 1280, Height: 720},
			Component: Component{Name: "cards", Path: "/blocks/cards"},
		},
		Outcome:  Fail(SelectorNotVisible, "timeout 30s"),
		Duration: 1500 * time.Millisecond,
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "firefox/desktop/cards", decoded["key"])
	assert.Equal(t, float64(1500), decoded["duration_ms"])
	outcome := decoded["outcome"].(map[string]any)
	assert.Equal(t, "failed", outcome["kind"])
	assert.Equal(t, "SelectorNotVisible", outcome["failure"])
	assert.NotContains(t, decoded, "started_at")
}
