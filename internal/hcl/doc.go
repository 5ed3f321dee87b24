// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for file discovery, parsing, decoding the `target`, `viewport`,
// `browser`, `options` and `baseline` blocks, and translating them into the
// format-agnostic config.Model.
//
// Expressions are evaluated with an `env` object holding the process
// environment, so a file may write `base_url = env.SITE_URL`.
package hcl
