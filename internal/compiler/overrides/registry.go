// Package overrides holds the hand-curated tables that correct known
// inconsistencies in upstream service documents: forced literal option
// lists, record replacements, per-argument type overrides, removed
// signatures and argument aliases.
//
// A Registry is populated once at load time and is read-only afterwards, so
// it is safe to share between concurrent service compilations.
package overrides

import (
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
)

// Wildcard matches any service, owner or operation.
const Wildcard = "*"

// AliasRemoved is the alias value that drops an argument entirely.
const AliasRemoved = "None"

// ReturnField is the pseudo field name used to override a method's return type.
const ReturnField = "return"

// Override is the result of a method lookup: either a forced type or a
// removal marker.
type Override struct {
	Type   descriptor.Descriptor
	Remove bool
}

// String renders the override as a type expression.
func (o Override) String() string {
	if o.Remove {
		return "remove"
	}
	if o.Type == nil {
		return ""
	}
	return o.Type.String()
}

type methodKey struct {
	service, owner, method, field string
}

type signatureKey struct {
	service, owner, method string
}

// Registry stores override tables keyed by service.
type Registry struct {
	literals   map[string]map[string]*descriptor.Enum
	shapes     map[string]map[string]descriptor.Descriptor
	methods    map[methodKey]Override
	signatures map[signatureKey]bool
	aliases    map[string]map[string]map[string]string

	fingerprint string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		literals:   make(map[string]map[string]*descriptor.Enum),
		shapes:     make(map[string]map[string]descriptor.Descriptor),
		methods:    make(map[methodKey]Override),
		signatures: make(map[signatureKey]bool),
		aliases:    make(map[string]map[string]map[string]string),
	}
}

// Fingerprint identifies the sources the registry was loaded from. It is
// part of the compilation cache key.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// AddLiteral forces the option list of the named enumeration.
func (r *Registry) AddLiteral(service string, e *descriptor.Enum) {
	if r.literals[service] == nil {
		r.literals[service] = make(map[string]*descriptor.Enum)
	}
	r.literals[service][e.Name] = e
}

// AddShape replaces the record with the given emitted name.
func (r *Registry) AddShape(service, name string, d descriptor.Descriptor) {
	if r.shapes[service] == nil {
		r.shapes[service] = make(map[string]descriptor.Descriptor)
	}
	r.shapes[service][name] = d
}

// AddMethod overrides one argument (or the return type, with field
// ReturnField) of a method.
func (r *Registry) AddMethod(service, owner, method, field string, o Override) {
	r.methods[methodKey{service, owner, method, field}] = o
}

// RemoveSignature drops a method from its owner.
func (r *Registry) RemoveSignature(service, owner, method string) {
	r.signatures[signatureKey{service, owner, method}] = true
}

// AddAliases merges argument aliases for an operation (or Wildcard).
func (r *Registry) AddAliases(service, operation string, aliases map[string]string) {
	if r.aliases[service] == nil {
		r.aliases[service] = make(map[string]map[string]string)
	}
	if r.aliases[service][operation] == nil {
		r.aliases[service][operation] = make(map[string]string)
	}
	for from, to := range aliases {
		r.aliases[service][operation][from] = to
	}
}

// serviceChain is the lookup order for service-scoped tables.
func serviceChain(service string) []string {
	if service == Wildcard {
		return []string{Wildcard}
	}
	return []string{service, Wildcard}
}

// Literal returns the forced enumeration with the given name.
func (r *Registry) Literal(service, name string) (*descriptor.Enum, bool) {
	for _, s := range serviceChain(service) {
		if e, ok := r.literals[s][name]; ok {
			return e, true
		}
	}
	return nil, false
}

// Shape returns the replacement for the record with the given emitted name.
func (r *Registry) Shape(service, name string) (descriptor.Descriptor, bool) {
	for _, s := range serviceChain(service) {
		if d, ok := r.shapes[s][name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Method returns the override for an argument of a method. Lookup order is
// the exact owner first, then the wildcard owner, for the service and then
// for the wildcard service.
func (r *Registry) Method(service, owner, method, field string) (Override, bool) {
	for _, s := range serviceChain(service) {
		for _, o := range []string{owner, Wildcard} {
			if ov, ok := r.methods[methodKey{s, o, method, field}]; ok {
				return ov, true
			}
		}
	}
	return Override{}, false
}

// SignatureRemoved reports whether the method is dropped from its owner.
func (r *Registry) SignatureRemoved(service, owner, method string) bool {
	for _, s := range serviceChain(service) {
		for _, o := range []string{owner, Wildcard} {
			if r.signatures[signatureKey{s, o, method}] {
				return true
			}
		}
	}
	return false
}

// Alias returns the public name of an operation argument. The second result
// is false when the argument must be dropped. Service entries are consulted
// before wildcard-service entries. Within one service an operation-specific
// alias map replaces the wildcard-operation map instead of merging with it.
func (r *Registry) Alias(service, operation, argument string) (string, bool) {
	for _, s := range serviceChain(service) {
		serviceMap := r.aliases[s]
		if serviceMap == nil {
			continue
		}

		operationMap := serviceMap[Wildcard]
		if m, ok := serviceMap[operation]; ok {
			operationMap = m
		}

		alias, ok := operationMap[argument]
		if !ok {
			continue
		}
		if alias == AliasRemoved {
			return "", false
		}
		return alias, true
	}
	return argument, true
}

// Stats reports the number of entries per table.
type Stats struct {
	Literals   int
	Shapes     int
	Methods    int
	Signatures int
	Aliases    int
}

// Stats counts the loaded entries.
func (r *Registry) Stats() Stats {
	var s Stats
	for _, m := range r.literals {
		s.Literals += len(m)
	}
	for _, m := range r.shapes {
		s.Shapes += len(m)
	}
	s.Methods = len(r.methods)
	s.Signatures = len(r.signatures)
	for _, ops := range r.aliases {
		for _, fields := range ops {
			s.Aliases += len(fields)
		}
	}
	return s
}
