/*
Package caseid provides the structured identifier of a test case within one
run, based on the canonical format `browser/viewport/component`.

The triple is what reports, baselines and filters refer to. This package
centralizes formatting and glob matching of that triple.
*/
package caseid
