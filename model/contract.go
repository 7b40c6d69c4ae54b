package model

import "regexp"

// Arguments is the caller-supplied key/value input to one operation
// invocation. It is scoped to a single dispatch call and never persisted.
type Arguments map[string]string

// Get returns the value for name, or the empty string if absent.
func (a Arguments) Get(name string) string {
	return a[name]
}

// Has returns true if name is present with a non-empty value.
func (a Arguments) Has(name string) bool {
	return a[name] != ""
}

// ParameterSpec declares a single operation parameter: its name, whether it
// is required, and any value-shape constraint beyond being a string.
type ParameterSpec struct {
	Name        string
	Description string
	Required    bool
	// Pattern, when non-nil, constrains the value shape (e.g. a 4-digit
	// year). Checked at validation time, never left to upstream.
	Pattern *regexp.Regexp
	// Enum, when non-empty, restricts the value to a closed set.
	Enum []string
	// Default is substituted for an absent optional parameter after
	// validation. Empty means no default.
	Default string
}

// AllowsValue reports whether v satisfies the spec's pattern and enum
// constraints. Presence/requiredness is the dispatcher's concern.
func (p ParameterSpec) AllowsValue(v string) bool {
	if p.Pattern != nil && !p.Pattern.MatchString(v) {
		return false
	}
	if len(p.Enum) > 0 {
		for _, e := range p.Enum {
			if v == e {
				return true
			}
		}
		return false
	}
	return true
}

// RequestShape is the fully resolved upstream request: a path with all path
// parameters substituted plus the query parameters to send. Constructed
// fresh per call, never reused.
type RequestShape struct {
	Path  string
	Query map[string]string
}

// Binder maps a validated argument bundle to a RequestShape. Binders must
// be pure and total over any bundle that has already passed validation:
// binding never fails.
type Binder func(args Arguments) RequestShape

// OperationContract is the declarative description of one callable
// operation: its identity, parameter schema, cross-field constraint, and
// the binder producing the upstream request. Contracts are immutable and
// constructed once at process start.
type OperationContract struct {
	Name        string
	Description string
	Params      []ParameterSpec
	// RequireAny lists parameter names of which at least one must be
	// present in the bundle. Empty means no cross-field constraint.
	RequireAny []string
	Bind       Binder
}

// Param returns the ParameterSpec with the given name.
func (c OperationContract) Param(name string) (ParameterSpec, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}
