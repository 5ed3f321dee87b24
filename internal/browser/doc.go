// Package browser defines the ports the case executor drives: an engine that
// launches browsers, pages scoped to one case, and the baseline comparator.
//
// Adapters live elsewhere (modules/playwright for real browsers,
// internal/baseline for comparison); browsertest holds in-memory fakes.
package browser
