// Package selector maps a component name to the DOM selector that targets it.
package selector

// Resolve returns the override for name when one exists, otherwise the class
// selector "." + name. The name is used as-is; an invalid selector surfaces
// later as a visibility failure of the case.
func Resolve(name string, overrides map[string]string) string {
	if sel, ok := overrides[name]; ok {
		return sel
	}
	return "." + name
}
