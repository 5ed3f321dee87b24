package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/specialistvlad/shotgrid/internal/app"
	"github.com/specialistvlad/shotgrid/internal/cli"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/hcl"
	"github.com/specialistvlad/shotgrid/internal/yamlconfig"
)

// main is the entrypoint for the shotgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on configuration errors; those are usage errors.
	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: 2, Message: fmt.Sprintf("application startup panicked: %v", r)}
		}
	}()

	shotgrid := app.NewApp(outW, appConfig, loaderFor(appConfig.ConfigPaths))
	return shotgrid.Run(ctx)
}

// loaderFor picks the YAML loader when any path is a .yaml/.yml file and the
// HCL loader otherwise.
func loaderFor(paths []string) config.Loader {
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			return yamlconfig.NewLoader()
		}
	}
	return hcl.NewLoader()
}
