// Package assembler gathers the built signatures of a service into a
// Package, extracts the literals and records they reference and validates
// the resulting name space.
package assembler

import (
	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// Package is the compiled type model of one service.
type Package struct {
	Service         string
	Metadata        schema.Metadata
	Client          *builder.Client
	ServiceResource *builder.ServiceResource
	Waiters         []*builder.Waiter
	Paginators      []*builder.Paginator

	// Records and Literals are sorted by name.
	Records  []*descriptor.Record
	Literals []*descriptor.Enum

	// Renames counts request/response role renames.
	Renames int
}

// Record returns the record called name.
func (p *Package) Record(name string) (*descriptor.Record, bool) {
	for _, r := range p.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Literal returns the literal called name.
func (p *Package) Literal(name string) (*descriptor.Enum, bool) {
	for _, e := range p.Literals {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Owners returns every method map of the package keyed by class name.
func (p *Package) Owners() map[string]builder.MethodMap {
	out := make(map[string]builder.MethodMap)
	if p.Client != nil {
		out[p.Client.Name] = p.Client.Methods
	}
	if p.ServiceResource != nil {
		for name, methods := range p.ServiceResource.MethodOwners() {
			out[name] = methods
		}
	}
	for _, w := range p.Waiters {
		out[w.Name] = builder.MethodMap{w.Wait.Name: w.Wait}
	}
	for _, pg := range p.Paginators {
		out[pg.Name] = builder.MethodMap{pg.Paginate.Name: pg.Paginate}
	}
	return out
}

// MethodCount returns the number of methods across all classes.
func (p *Package) MethodCount() int {
	n := 0
	for _, methods := range p.Owners() {
		n += len(methods)
	}
	return n
}

// Types returns every descriptor referenced by a signature or a resource
// attribute, in a deterministic order.
func (p *Package) Types() []descriptor.Descriptor {
	var out []descriptor.Descriptor
	addMethods := func(methods builder.MethodMap) {
		for _, m := range methods.Sorted() {
			out = append(out, m.Types()...)
		}
	}

	if p.Client != nil {
		addMethods(p.Client.Methods)
	}
	if sr := p.ServiceResource; sr != nil {
		addMethods(sr.Methods)
		for _, c := range sr.Collections {
			addMethods(c.Methods)
		}
		for _, r := range sr.SubResources {
			addMethods(r.Methods)
			for _, a := range r.Attributes {
				out = append(out, a.Type)
			}
			for _, c := range r.Collections {
				addMethods(c.Methods)
			}
		}
	}
	for _, w := range p.Waiters {
		out = append(out, w.Wait.Types()...)
	}
	for _, pg := range p.Paginators {
		out = append(out, pg.Paginate.Types()...)
	}
	return out
}
