// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the value types that flow through a run: the configured
// viewports and browsers, the components discovered from the manifest, the
// test cases generated from them, and the outcome recorded for each case.
//
// Every type here is a plain value. Test cases are computed once by the matrix
// generator and never mutated afterwards, which is what makes it safe to hand
// them to concurrently running executors.
package model
