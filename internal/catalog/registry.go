package catalog

import (
	"github.com/darkfeedlabs/leakwatch/model"
)

// Registry is an immutable, read-optimized store of operation contracts.
// It is constructed once at process start and is safe for concurrent reads
// without locking.
type Registry struct {
	order  []model.OperationContract
	byName map[string]model.OperationContract
}

// NewRegistry builds a Registry preserving the declaration order of the
// given contracts.
func NewRegistry(contracts []model.OperationContract) *Registry {
	r := &Registry{
		order:  make([]model.OperationContract, len(contracts)),
		byName: make(map[string]model.OperationContract, len(contracts)),
	}
	copy(r.order, contracts)
	for _, c := range contracts {
		r.byName[c.Name] = c
	}
	return r
}

// Default builds the Registry over the full built-in catalog.
func Default() *Registry {
	return NewRegistry(Contracts())
}

// Resolve returns the contract with the given operation name.
func (r *Registry) Resolve(name string) (model.OperationContract, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// List returns all contracts in declaration order. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r *Registry) List() []model.OperationContract {
	out := make([]model.OperationContract, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.order)
}
