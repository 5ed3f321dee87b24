// Package baseline implements the comparison collaborator of the executor.
//
// Baselines are PNG files addressed by name (`<browser>/<component>-<viewport>.png`)
// in a Store. A capture matches when it is byte-identical to the baseline;
// failures name short SHA-256 digests of both images.
// Mismatching captures are kept next to the baselines under `actual/` so a
// reviewer can inspect them.
package baseline
