// Package registry provides the central "glue" for the module system.
//
// The Registry maps browser names used in configuration (e.g., "chromium")
// to the compiled engines that can drive them. Modules populate it during
// startup through their Register method, and the registry is then checked
// against the configured browsers so a browser without an engine is reported
// before any case runs.
package registry
