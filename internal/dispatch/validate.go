package dispatch

import (
	"fmt"
	"strings"

	"github.com/darkfeedlabs/leakwatch/model"
)

// validate checks an argument bundle against the contract's parameter
// schema. It returns the first violation found, in declaration order, or
// nil if the bundle is acceptable. Required checks run before value-shape
// checks, and the cross-field constraint runs last.
func validate(contract model.OperationContract, args model.Arguments) *model.Failure {
	for _, p := range contract.Params {
		if p.Required && !args.Has(p.Name) {
			return model.NewInvalidRequestError(fmt.Sprintf("%s is required", p.Name))
		}
	}

	for _, p := range contract.Params {
		if !args.Has(p.Name) {
			continue
		}
		if !p.AllowsValue(args.Get(p.Name)) {
			return model.NewInvalidRequestError(constraintMessage(p))
		}
	}

	if len(contract.RequireAny) > 0 {
		satisfied := false
		for _, name := range contract.RequireAny {
			if args.Has(name) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return model.NewInvalidRequestError(fmt.Sprintf(
				"At least one filter parameter is required (%s)",
				humanJoin(contract.RequireAny),
			))
		}
	}

	return nil
}

// constraintMessage describes the value-shape constraint a parameter value
// violated.
func constraintMessage(p model.ParameterSpec) string {
	if len(p.Enum) > 0 {
		return fmt.Sprintf("%s must be one of: %s", p.Name, strings.Join(p.Enum, ", "))
	}
	return fmt.Sprintf("%s must match pattern %s", p.Name, p.Pattern.String())
}

// applyDefaults returns a copy of args with contract defaults substituted
// for absent optional parameters. The caller's bundle is never mutated.
func applyDefaults(contract model.OperationContract, args model.Arguments) model.Arguments {
	out := make(model.Arguments, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, p := range contract.Params {
		if p.Default != "" && !out.Has(p.Name) {
			out[p.Name] = p.Default
		}
	}
	return out
}

// humanJoin joins names as "a, b, or c" for use in messages.
func humanJoin(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}
