// Package builder assembles the callable signatures of a service: client
// operations, paginators, waiters, the service resource, resource classes and
// their collections. Argument and return types come from the resolver.
package builder

import (
	"strings"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

const (
	// SelfName is the receiver parameter every method starts with.
	SelfName = "self"
	// KeywordSeparator marks that every following argument is keyword-only.
	KeywordSeparator = "*"
	// DefaultNone is the default of an optional argument.
	DefaultNone = "None"
)

// Argument is one method parameter. The receiver and the keyword separator
// carry no type.
type Argument struct {
	Name string
	Type descriptor.Descriptor
	// Default is empty for required arguments.
	Default string
}

// Self returns the receiver argument.
func Self() Argument { return Argument{Name: SelfName} }

// KeywordFlag returns the keyword-only separator.
func KeywordFlag() Argument { return Argument{Name: KeywordSeparator} }

// Required reports whether the argument has no default.
func (a Argument) Required() bool { return a.Default == "" }

// IsSelf reports whether a is the receiver.
func (a Argument) IsSelf() bool { return a.Name == SelfName && a.Type == nil }

// IsKeywordFlag reports whether a is the keyword-only separator.
func (a Argument) IsKeywordFlag() bool { return a.Name == KeywordSeparator && a.Type == nil }

// IsTyped reports whether a is a real parameter.
func (a Argument) IsTyped() bool { return a.Type != nil }

func (a Argument) String() string {
	if !a.IsTyped() {
		return a.Name
	}
	s := a.Name + ": " + a.Type.String()
	if !a.Required() {
		s += " = " + a.Default
	}
	return s
}

// Method is a built signature.
type Method struct {
	Name      string
	Arguments []Argument
	Return    descriptor.Descriptor
	// Request is the record mirroring the typed arguments, used to render a
	// keyword call structure. Nil when the method takes no typed arguments.
	Request *descriptor.Record
}

// TypedArguments returns the arguments without the receiver and separator.
func (m *Method) TypedArguments() []Argument {
	var out []Argument
	for _, a := range m.Arguments {
		if a.IsTyped() {
			out = append(out, a)
		}
	}
	return out
}

// Argument returns the typed argument called name.
func (m *Method) Argument(name string) (Argument, bool) {
	for _, a := range m.Arguments {
		if a.IsTyped() && a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// HasKeywordSeparator reports whether the method forces keyword arguments.
func (m *Method) HasKeywordSeparator() bool {
	for _, a := range m.Arguments {
		if a.IsKeywordFlag() {
			return true
		}
	}
	return false
}

// Types returns every descriptor the signature references.
func (m *Method) Types() []descriptor.Descriptor {
	var out []descriptor.Descriptor
	for _, a := range m.TypedArguments() {
		out = append(out, a.Type)
	}
	if m.Return != nil {
		out = append(out, m.Return)
	}
	if m.Request != nil {
		out = append(out, m.Request)
	}
	return out
}

// Signature renders the method as name(args) -> return.
func (m *Method) Signature() string {
	parts := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		parts[i] = a.String()
	}
	ret := descriptor.None.String()
	if m.Return != nil {
		ret = m.Return.String()
	}
	return m.Name + "(" + strings.Join(parts, ", ") + ") -> " + ret
}

// MethodMap holds the methods of one class keyed by name.
type MethodMap map[string]*Method

// Names returns the method names, sorted.
func (mm MethodMap) Names() []string {
	return schema.SortedKeys(mm)
}

// Sorted returns the methods ordered by name.
func (mm MethodMap) Sorted() []*Method {
	out := make([]*Method, 0, len(mm))
	for _, name := range mm.Names() {
		out = append(out, mm[name])
	}
	return out
}

// requestRecord builds the paired request record for args.
func requestRecord(name string, args []Argument) *descriptor.Record {
	var rec *descriptor.Record
	for _, a := range args {
		if !a.IsTyped() {
			continue
		}
		if rec == nil {
			rec = descriptor.NewRecord(name)
		}
		rec.AddField(a.Name, a.Type, a.Required())
	}
	return rec
}
