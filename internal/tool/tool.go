// Package tool declares the function tools exposed to the model. Tools are
// registered once at startup as static descriptors; handlers report failures
// as data in the returned map, never as Go errors.
package tool

import "context"

// Handler executes a tool call with the arguments supplied by the model.
type Handler func(ctx context.Context, args map[string]any) map[string]any

// Param describes a single tool parameter
type Param struct {
	Type        string
	Description string
}

// Descriptor is a static tool declaration: name, parameter schema and the
// handler invoked when the model requests the call.
type Descriptor struct {
	Name        string
	Description string
	Params      map[string]Param
	Required    []string
	Handler     Handler
}

// Registry holds the tools declared at startup
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a tool descriptor
func (r *Registry) Register(d Descriptor) {
	r.descriptors = append(r.descriptors, d)
}

// All returns the registered descriptors
func (r *Registry) All() []Descriptor {
	return r.descriptors
}

// Find returns the descriptor with the given name, or false
func (r *Registry) Find(name string) (Descriptor, bool) {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
