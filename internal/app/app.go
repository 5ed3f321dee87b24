package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/metrics"
	"github.com/specialistvlad/shotgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	ctx      context.Context
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	metrics  *metrics.Metrics

	httpServer *http.Server
	newRunID   func() string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics. A configuration that cannot be loaded is a fatal startup error
// and panics; the entrypoint recovers it into an exit code.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	if appConfig.BaseURL != "" {
		cfgModel.Target.BaseURL = appConfig.BaseURL
	}
	logger.Debug("Configuration loaded.",
		"viewports", len(cfgModel.Viewports),
		"browsers", len(cfgModel.EnabledBrowsers()),
		"base_url", cfgModel.Target.BaseURL,
	)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(appConfig, cfgModel)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All engine modules registered.", "count", len(modules), "browsers", reg.Names())

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   appConfig,
		model:    cfgModel,
		registry: reg,
		metrics:  metrics.New(),
		newRunID: uuid.NewString,
	}
}

// Model returns the loaded harness configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
