package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/shotgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag. Comma separated values are split.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("shotgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
shotgrid - Visual regression screenshots for every component, viewport and browser.

Usage:
  shotgrid [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a .hcl/.yaml file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths, only stringList
	flagSet.Var(&configPaths, "config", "Path to a config file or directory. Repeatable.")
	flagSet.Var(&configPaths, "c", "Path to a config file or directory (shorthand).")
	flagSet.Var(&only, "only", "Run only cases matching browser/viewport/component; '*' matches any segment. Repeatable.")
	baseURLFlag := flagSet.String("base-url", "", "Override target.base_url of the configuration.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	historyFlag := flagSet.String("history-db", "", "SQLite file recording run history. Empty disables history.")
	dashboardFlag := flagSet.String("dashboard-url", "", "socket.io endpoint receiving live case results.")
	reportFlag := flagSet.String("report", "", "Write the report to this file instead of stdout.")
	reportFormatFlag := flagSet.String("report-format", "text", "Report format. Options: 'text', 'json' or 'markdown'.")
	updateFlag := flagSet.Bool("update-baselines", false, "Overwrite every baseline with the new capture.")
	installFlag := flagSet.Bool("install-browsers", false, "Download the browser driver and browsers before the run.")
	headfulFlag := flagSet.Bool("headful", false, "Show browser windows while capturing.")
	printConfigFlag := flagSet.Bool("print-config", false, "Print the merged configuration as YAML and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append([]string(configPaths), flagSet.Args()...)
	slog.Debug("Config paths determined.", "paths", paths)
	if len(paths) == 0 {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths:     paths,
		BaseURL:         *baseURLFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		HistoryDB:       *historyFlag,
		DashboardURL:    *dashboardFlag,
		ReportPath:      *reportFlag,
		ReportFormat:    strings.ToLower(*reportFormatFlag),
		Only:            only,
		UpdateBaselines: *updateFlag,
		InstallBrowsers: *installFlag,
		Headful:         *headfulFlag,
		PrintConfig:     *printConfigFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
