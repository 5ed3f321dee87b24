package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/shotgrid/internal/browser/browsertest"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingEngine struct {
	browsertest.Engine
	closes int
}

func (e *closingEngine) Close() error {
	e.closes++
	return nil
}

type fakeModule struct{ engine *closingEngine }

func (m fakeModule) Register(r *Registry) {
	r.RegisterEngine("chromium", m.engine)
	r.RegisterEngine("firefox", m.engine)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	engine := &closingEngine{}
	r := New()

	// --- Act ---
	fakeModule{engine: engine}.Register(r)

	// --- Assert ---
	assert.Equal(t, []string{"chromium", "firefox"}, r.Names())
	got, ok := r.Engine("firefox")
	require.True(t, ok)
	assert.Same(t, engine, got)
	_, ok = r.Engine("webkit")
	assert.False(t, ok)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	t.Parallel()

	r := New()
	r.RegisterEngine("chromium", &browsertest.Engine{})
	assert.Panics(t, func() { r.RegisterEngine("chromium", &browsertest.Engine{}) })
}

func TestRegistry_Unsupported(t *testing.T) {
	t.Parallel()

	r := New()
	r.RegisterEngine("chromium", &browsertest.Engine{})
	missing := r.Unsupported(ctxlog.Discard(context.Background()), []model.Browser{
		{Name: "chromium", Enabled: true},
		{Name: "firefox", Enabled: true},
		{Name: "webkit", Enabled: false},
	})
	assert.Equal(t, []string{"firefox"}, missing)
}

func TestRegistry_CloseOncePerEngine(t *testing.T) {
	t.Parallel()

	engine := &closingEngine{}
	r := New()
	fakeModule{engine: engine}.Register(r)
	r.RegisterEngine("webkit", &browsertest.Engine{})

	require.NoError(t, r.Close())
	assert.Equal(t, 1, engine.closes)
}
