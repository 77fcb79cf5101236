// Package descriptor defines the compiled type descriptors produced from
// service shapes. A descriptor is a closed tagged variant: every value
// implements Descriptor and reports its Kind, and consumers dispatch with a
// single exhaustive switch over that kind.
//
// Records are owned by a per-service registry and are never embedded by value
// into a cycle: a record that refers back to itself, directly or through other
// records, does so through a Reference that resolves the record name when it
// is read.
package descriptor

// Kind tags the variant of a Descriptor.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindSequence
	KindMapping
	KindRecord
	KindReference
	KindUnion
	KindIterator
)

var kindNames = map[Kind]string{
	KindPrimitive: "primitive",
	KindEnum:      "enum",
	KindSequence:  "sequence",
	KindMapping:   "mapping",
	KindRecord:    "record",
	KindReference: "reference",
	KindUnion:     "union",
	KindIterator:  "iterator",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Descriptor is a compiled type.
type Descriptor interface {
	// Kind returns the variant tag.
	Kind() Kind
	// String renders the descriptor as a type expression, e.g.
	// "list<map<string,any>>" or "ref<ThingTypeDef>".
	String() string

	sealed()
}

// PrimitiveName names a primitive descriptor.
type PrimitiveName string

const (
	NameString    PrimitiveName = "string"
	NameInteger   PrimitiveName = "integer"
	NameFloat     PrimitiveName = "float"
	NameBoolean   PrimitiveName = "boolean"
	NameBytes     PrimitiveName = "bytes"
	NameIOBytes   PrimitiveName = "io-bytes"
	NameStream    PrimitiveName = "stream"
	NameTimestamp PrimitiveName = "timestamp"
	NameAny       PrimitiveName = "any"
	NameNone      PrimitiveName = "none"
)

// Primitive is a scalar built-in type.
type Primitive struct {
	Name PrimitiveName
}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (p *Primitive) String() string { return string(p.Name) }
func (*Primitive) sealed() {}

// Shared primitive instances. Primitives are immutable so these are safe to
// share between services.
var (
	String    = &Primitive{Name: NameString}
	Integer   = &Primitive{Name: NameInteger}
	Float     = &Primitive{Name: NameFloat}
	Boolean   = &Primitive{Name: NameBoolean}
	Bytes     = &Primitive{Name: NameBytes}
	IOBytes   = &Primitive{Name: NameIOBytes}
	Stream    = &Primitive{Name: NameStream}
	Timestamp = &Primitive{Name: NameTimestamp}
	Any       = &Primitive{Name: NameAny}
	None      = &Primitive{Name: NameNone}
)

var primitivesByName = map[PrimitiveName]*Primitive{
	NameString:    String,
	NameInteger:   Integer,
	NameFloat:     Float,
	NameBoolean:   Boolean,
	NameBytes:     Bytes,
	NameIOBytes:   IOBytes,
	NameStream:    Stream,
	NameTimestamp: Timestamp,
	NameAny:       Any,
	NameNone:      None,
}

// LookupPrimitive returns the shared primitive with the given name.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := primitivesByName[PrimitiveName(name)]
	return p, ok
}

// IsNone reports whether d is the none primitive.
func IsNone(d Descriptor) bool {
	p, ok := d.(*Primitive)
	return ok && p.Name == NameNone
}

// StringAnyMap is the open-ended mapping used for records without members
// and for free-form parameters.
func StringAnyMap() *Mapping {
	return &Mapping{Key: String, Value: Any}
}
