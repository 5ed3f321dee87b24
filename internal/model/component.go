// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the configured dimensions of the matrix (viewports and
// browsers) and the discovered dimension (components).
package model

import "fmt"

// Viewport is a named screen size under which components are captured.
type Viewport struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// String renders the viewport the way reports show it, e.g. `mobile (375x667)`.
func (v Viewport) String() string {
	return fmt.Sprintf("%s (%dx%d)", v.Name, v.Width, v.Height)
}

// Browser is a rendering engine entry from configuration. Only enabled
// browsers take part in matrix generation.
type Browser struct {
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Component is one entry of the site's block library manifest. It is untrusted
// input: either field may be empty.
type Component struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Missing lists the required fields the component lacks, in a stable order.
func (c Component) Missing() []string {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Path == "" {
		missing = append(missing, "path")
	}
	return missing
}

// Valid reports whether the component has both a name and a path.
func (c Component) Valid() bool {
	return c.Name != "" && c.Path != ""
}

// DataQualityIssue records a manifest entry that cannot become a test case.
type DataQualityIssue struct {
	Index     int       `json:"index"`
	Component Component `json:"component"`
	Missing   []string  `json:"missing"`
}

// Error makes an issue printable as a warning line.
func (i DataQualityIssue) Error() string {
	return fmt.Sprintf("component at index %d is missing required properties %v", i.Index, i.Missing)
}
