// Package config defines the format-agnostic configuration model of a
// visual-regression run, along with the Loader interface concrete formats
// implement.
//
// The `config.Model` is the single source of truth for the manifest fetcher,
// the matrix generator and the executor. It is validated once at load time
// and treated as read-only for the rest of the run. Concrete loaders, such as
// for HCL and YAML, are provided in separate packages.
package config
