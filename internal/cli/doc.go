// Package cli parses shotgrid's command-line arguments into an app.Config.
// Every usage error is an ExitError with code 2.
package cli
