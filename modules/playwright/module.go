// Package playwright drives real browsers through playwright-go. One engine
// serves chromium, firefox and webkit; each case gets its own BrowserContext
// sized to the case viewport.
package playwright

import (
	"github.com/specialistvlad/shotgrid/internal/registry"
)

// Browsers are the engine names playwright can launch.
var Browsers = []string{"chromium", "firefox", "webkit"}

// Module implements the registry.Module interface for this package.
type Module struct {
	Engine *Engine
}

// Register binds every playwright browser name to the module's engine.
func (m *Module) Register(r *registry.Registry) {
	for _, name := range Browsers {
		r.RegisterEngine(name, m.Engine)
	}
}
