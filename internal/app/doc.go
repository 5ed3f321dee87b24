// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle (fetch the manifest,
// build the matrix, execute the cases, report), decoupled from any specific
// entrypoint like a CLI.
package app
