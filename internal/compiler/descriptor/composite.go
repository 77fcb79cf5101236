package descriptor

import "strings"

// Sequence is an ordered list of Element values.
type Sequence struct {
	Element Descriptor
}

// NewSequence creates a sequence of element.
func NewSequence(element Descriptor) *Sequence {
	return &Sequence{Element: element}
}

func (*Sequence) Kind() Kind { return KindSequence }
func (s *Sequence) String() string { return "list<" + s.Element.String() + ">" }
func (*Sequence) sealed() {}

// Mapping is a dictionary from Key to Value.
type Mapping struct {
	Key   Descriptor
	Value Descriptor
}

// NewMapping creates a mapping from key to value.
func NewMapping(key, value Descriptor) *Mapping {
	return &Mapping{Key: key, Value: value}
}

func (*Mapping) Kind() Kind { return KindMapping }
func (m *Mapping) String() string {
	return "map<" + m.Key.String() + "," + m.Value.String() + ">"
}
func (*Mapping) sealed() {}

// Union accepts any of its Members. Used for ambiguous scalar encodings such
// as "bytes or stream".
type Union struct {
	Members []Descriptor
}

// NewUnion creates a union of members.
func NewUnion(members ...Descriptor) *Union {
	return &Union{Members: members}
}

func (*Union) Kind() Kind { return KindUnion }
func (u *Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return "union<" + strings.Join(parts, ",") + ">"
}
func (*Union) sealed() {}

// Iterator is a lazy, finite, restartable sequence of pages.
type Iterator struct {
	Element Descriptor
}

// NewIterator creates an iterator over element.
func NewIterator(element Descriptor) *Iterator {
	return &Iterator{Element: element}
}

func (*Iterator) Kind() Kind { return KindIterator }
func (i *Iterator) String() string { return "iterator<" + i.Element.String() + ">" }
func (*Iterator) sealed() {}

// Reference points at a record or a resource defined elsewhere. A record
// reference reads the target's current name, so renames performed by the
// registry after the reference was created are observed.
type Reference struct {
	target   *Record
	name     string
	resource bool
}

// NewRecordReference creates a reference to a registered record.
func NewRecordReference(target *Record) *Reference {
	return &Reference{target: target}
}

// NewResourceReference creates a reference to a service resource class.
func NewResourceReference(name string) *Reference {
	return &Reference{name: name, resource: true}
}

// NewNamedReference creates a reference that is only known by name, e.g. a
// ref<Name> override expression.
func NewNamedReference(name string) *Reference {
	return &Reference{name: name}
}

// Name returns the name of the referenced definition.
func (r *Reference) Name() string {
	if r.target != nil {
		return r.target.Name
	}
	return r.name
}

// Target returns the referenced record, or nil for resource and named references.
func (r *Reference) Target() *Record {
	return r.target
}

// IsResource reports whether the reference points at a resource class.
func (r *Reference) IsResource() bool {
	return r.resource
}

func (*Reference) Kind() Kind { return KindReference }
func (r *Reference) String() string { return "ref<" + r.Name() + ">" }
func (*Reference) sealed() {}
