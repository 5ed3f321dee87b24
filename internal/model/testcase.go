// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines TestCase, the unit of work produced by the matrix
// generator and consumed by the executor.
package model

import (
	"fmt"
	"path"

	"github.com/specialistvlad/shotgrid/internal/caseid"
)

// TestCase is one (browser, viewport, component) combination.
type TestCase struct {
	Browser   Browser
	Viewport  Viewport
	Component Component

	// Seq is the case's position in the generated matrix.
	Seq int
	// Occurrence counts earlier cases with the same identifying triple. It is
	// non-zero only when the manifest lists a component more than once.
	Occurrence int
}

// ID returns the identifying triple.
func (tc TestCase) ID() caseid.ID {
	return caseid.New(tc.Browser.Name, tc.Viewport.Name, tc.Component.Name)
}

// Identity tells cases of one run apart. Unlike Key it stays unique when
// names contain '/' or '#'.
type Identity struct {
	ID         caseid.ID
	Occurrence int
}

// Identity returns the case's comparable identity.
func (tc TestCase) Identity() Identity {
	return Identity{ID: tc.ID(), Occurrence: tc.Occurrence}
}

// Key is the display form of the case: the ID, plus `#<occurrence>` for
// duplicated manifest entries. It is ambiguous for names containing '/' or
// '#'; use Identity to tell cases apart.
func (tc TestCase) Key() string {
	if tc.Occurrence == 0 {
		return tc.ID().String()
	}
	return fmt.Sprintf("%s#%d", tc.ID(), tc.Occurrence)
}

// BaselineName is the name the comparison collaborator stores the reference
// image under: `<browser>/<component>-<viewport>.png`.
func (tc TestCase) BaselineName() string {
	return path.Join(tc.Browser.Name, fmt.Sprintf("%s-%s.png", tc.Component.Name, tc.Viewport.Name))
}

func (tc TestCase) String() string {
	return tc.Key()
}
