package app

import (
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/registry"
	"github.com/specialistvlad/shotgrid/modules/playwright"
)

// coreModules is the definitive list of engine modules compiled into the
// shotgrid binary.
func coreModules(appConfig *Config, m *config.Model) []registry.Module {
	return []registry.Module{
		&playwright.Module{Engine: playwright.NewEngine(playwright.Options{
			BaseURL: m.Target.BaseURL,
			Headful: appConfig.Headful,
			Install: appConfig.InstallBrowsers,
		})},
	}
}
