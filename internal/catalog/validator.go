package catalog

import (
	"fmt"

	"github.com/darkfeedlabs/leakwatch/model"
)

// VError describes a single validation error in a contract declaration.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks the catalog declarations structurally: unique names,
// well-formed parameter specs, defaults that satisfy their own constraints,
// and cross-field constraints that reference declared optional parameters.
// It runs once at startup; a non-empty result is a fatal configuration bug.
func Validate(contracts []model.OperationContract) []VError {
	var errs []VError

	seen := make(map[string]bool, len(contracts))
	for i, c := range contracts {
		prefix := fmt.Sprintf("contracts[%d]", i)

		if c.Name == "" {
			errs = append(errs, VError{Path: prefix + ".name", Code: "REQUIRED", Message: "name is required"})
		} else if seen[c.Name] {
			errs = append(errs, VError{Path: prefix + ".name", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate operation name %q", c.Name)})
		}
		seen[c.Name] = true

		if c.Description == "" {
			errs = append(errs, VError{Path: prefix + ".description", Code: "REQUIRED", Message: "description is required"})
		}
		if c.Bind == nil {
			errs = append(errs, VError{Path: prefix + ".bind", Code: "REQUIRED", Message: "binder is required"})
		}

		errs = append(errs, validateParams(prefix, c)...)
		errs = append(errs, validateConstraint(prefix, c)...)
	}

	return errs
}

func validateParams(prefix string, c model.OperationContract) []VError {
	var errs []VError

	names := make(map[string]bool, len(c.Params))
	for j, p := range c.Params {
		pp := fmt.Sprintf("%s.params[%d]", prefix, j)

		if p.Name == "" {
			errs = append(errs, VError{Path: pp + ".name", Code: "REQUIRED", Message: "parameter name is required"})
			continue
		}
		if names[p.Name] {
			errs = append(errs, VError{Path: pp + ".name", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate parameter %q", p.Name)})
		}
		names[p.Name] = true

		if p.Default != "" {
			if p.Required {
				errs = append(errs, VError{Path: pp + ".default", Code: "CONFLICT", Message: "required parameters cannot declare a default"})
			}
			if !p.AllowsValue(p.Default) {
				errs = append(errs, VError{Path: pp + ".default", Code: "INVALID_DEFAULT", Message: fmt.Sprintf("default %q violates the parameter's own constraint", p.Default)})
			}
		}
	}

	return errs
}

func validateConstraint(prefix string, c model.OperationContract) []VError {
	var errs []VError

	for _, name := range c.RequireAny {
		p, ok := c.Param(name)
		if !ok {
			errs = append(errs, VError{
				Path:    prefix + ".require_any",
				Code:    "REF_NOT_FOUND",
				Message: fmt.Sprintf("constraint references undeclared parameter %q", name),
			})
			continue
		}
		if p.Required {
			errs = append(errs, VError{
				Path:    prefix + ".require_any",
				Code:    "REDUNDANT",
				Message: fmt.Sprintf("constraint references required parameter %q", name),
			})
		}
	}

	return errs
}
