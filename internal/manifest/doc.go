// Package manifest fetches the component library of the site under test.
//
// The manifest is a JSON document shaped as {"blocks": {"data": [...]}} where
// each entry carries a component name and the route that renders it. Entries
// are untrusted: the fetcher records entries missing a field as data-quality
// issues and passes them through, leaving the exclude-or-fail decision to the
// matrix generator.
package manifest
