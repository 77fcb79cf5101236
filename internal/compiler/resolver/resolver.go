// Package resolver converts service shapes into type descriptors. It applies
// the record and literal override tables, the input/output context rules and
// the request/response role deduplication of the RecordRegistry.
package resolver

import (
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// Context selects the resolution mode.
type Context struct {
	// Output is set for the top-level shape of an operation response:
	// every field becomes required and response metadata is appended.
	Output bool
	// OutputChild is set for shapes nested below a response. Scalars use
	// their output mapping; records keep their declared requiredness.
	OutputChild bool
}

// Input is the request context.
var Input = Context{}

// Output is the top-level response context.
var Output = Context{Output: true}

// OutputChild is the context for shapes nested in a response.
var OutputChild = Context{OutputChild: true}

func (c Context) isOutput() bool {
	return c.Output || c.OutputChild
}

func (c Context) child() Context {
	return Context{OutputChild: c.isOutput()}
}

// Resolver resolves the shapes of one service.
type Resolver struct {
	model     *schema.ServiceModel
	overrides *overrides.Registry
	diags     *errors.Diagnostics
	records   *RecordRegistry
	reserved  map[string]bool
	loc       errors.Location

	responseMetadata *descriptor.Record
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReservedWords sets the names that enumerations must not take; such
// enumerations get a Type suffix.
func WithReservedWords(words []string) Option {
	return func(r *Resolver) {
		for _, w := range words {
			r.reserved[w] = true
		}
	}
}

// New creates a resolver for model. A nil registry means no overrides.
func New(model *schema.ServiceModel, registry *overrides.Registry, diags *errors.Diagnostics, opts ...Option) *Resolver {
	if registry == nil {
		registry = overrides.NewRegistry()
	}
	r := &Resolver{
		model:     model,
		overrides: registry,
		diags:     diags,
		records:   NewRecordRegistry(diags),
		reserved:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Model returns the service model.
func (r *Resolver) Model() *schema.ServiceModel { return r.model }

// Overrides returns the override registry.
func (r *Resolver) Overrides() *overrides.Registry { return r.overrides }

// Diagnostics returns the collector.
func (r *Resolver) Diagnostics() *errors.Diagnostics { return r.diags }

// Records returns the record registry.
func (r *Resolver) Records() *RecordRegistry { return r.records }

// Service returns the service name.
func (r *Resolver) Service() string { return r.model.Name }

// SetLocation sets the owner and member reported with diagnostics raised by
// subsequent resolutions.
func (r *Resolver) SetLocation(owner, member string) {
	r.loc = errors.Location{Owner: owner, Member: member}
}

// IsReserved reports whether name is a reserved word.
func (r *Resolver) IsReserved(name string) bool {
	return r.reserved[name]
}

// ResolveRef resolves the shape a reference points at. A dangling reference
// degrades to any.
func (r *Resolver) ResolveRef(ref *schema.ShapeRef, ctx Context) descriptor.Descriptor {
	shape, ok := r.model.ResolveRef(ref)
	if !ok {
		name := ""
		if ref != nil {
			name = ref.Shape
		}
		r.diags.Add(errors.NewUnknownShape(r.location(name), name))
		return descriptor.Any
	}
	return r.Resolve(shape, ctx)
}

// Resolve converts shape into a descriptor.
func (r *Resolver) Resolve(shape *schema.Shape, ctx Context) descriptor.Descriptor {
	switch shape.Type {
	case schema.TypeStructure:
		return r.resolveStructure(shape, ctx)
	case schema.TypeList:
		return r.resolveList(shape, ctx)
	case schema.TypeMap:
		return r.resolveMap(shape, ctx)
	}

	if isScalar(shape.Type) {
		if shape.Streaming {
			if ctx.isOutput() {
				return descriptor.Stream
			}
			return binaryInput()
		}
		return r.resolveScalar(shape, ctx)
	}

	if r.model.IsResource(shape.Type) {
		return descriptor.NewResourceReference(shape.Type)
	}

	r.diags.Add(errors.NewUnknownShapeKind(r.location(shape.Name), shape.Name, shape.Type))
	return descriptor.Any
}

func (r *Resolver) location(field string) errors.Location {
	loc := r.loc
	loc.Field = field
	return loc
}

func (r *Resolver) resolveList(shape *schema.Shape, ctx Context) descriptor.Descriptor {
	if shape.Member == nil {
		return descriptor.NewSequence(descriptor.Any)
	}
	return descriptor.NewSequence(r.ResolveRef(shape.Member, ctx.child()))
}

func (r *Resolver) resolveMap(shape *schema.Shape, ctx Context) descriptor.Descriptor {
	var key, value descriptor.Descriptor = descriptor.String, descriptor.Any
	if shape.Key != nil {
		key = r.ResolveRef(shape.Key, ctx.child())
	}
	if shape.Value != nil {
		value = r.ResolveRef(shape.Value, ctx.child())
	}
	return descriptor.NewMapping(key, value)
}

func (r *Resolver) resolveStructure(shape *schema.Shape, ctx Context) descriptor.Descriptor {
	if len(shape.Members) == 0 {
		return descriptor.StringAnyMap()
	}

	name := TypeDefName(shape.Name, "")
	if d, ok := r.overrides.Shape(r.Service(), name); ok {
		r.diags.Add(errors.NewOverrideApplied(r.location(name), d.String()))
		return d
	}

	existing, rec := r.records.Claim(shape.Name, ctx.Output)
	if rec == nil {
		return existing
	}

	for _, member := range shape.Members {
		ref := member.ShapeRef
		rec.AddField(member.Name, r.ResolveRef(&ref, ctx.child()), shape.IsRequired(member.Name))
	}
	if ctx.Output {
		r.makeOutput(rec)
	}

	r.records.Complete(rec)
	return rec
}

// makeOutput forces every field required and appends response metadata.
func (r *Resolver) makeOutput(rec *descriptor.Record) {
	for _, f := range rec.Fields {
		f.Required = true
	}
	if !rec.HasField(descriptor.ResponseMetadataField) {
		rec.AddField(descriptor.ResponseMetadataField, r.ResponseMetadata(), true)
	}
}

// ResponseMetadata returns the service's shared response metadata record.
func (r *Resolver) ResponseMetadata() *descriptor.Record {
	if r.responseMetadata == nil {
		r.responseMetadata = descriptor.ResponseMetadata()
	}
	return r.responseMetadata
}

// ResolveEnum returns the enumeration for a string shape with options,
// honoring literal overrides.
func (r *Resolver) ResolveEnum(shapeName string, options []string) *descriptor.Enum {
	name := shapeName + "Type"
	if forced, ok := r.overrides.Literal(r.Service(), name); ok {
		r.diags.Add(errors.NewOverrideApplied(r.location(name), forced.String()))
		return r.finishEnum(descriptor.NewEnum(forced.Name, forced.Options))
	}
	return r.finishEnum(descriptor.NewEnum(name, options))
}

func (r *Resolver) finishEnum(e *descriptor.Enum) *descriptor.Enum {
	if r.reserved[e.Name] {
		e.Name += "Type"
	}
	return e
}
