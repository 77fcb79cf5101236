package resolver

import (
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

var scalarTypes = map[string]bool{
	schema.TypeString:    true,
	schema.TypeCharacter: true,
	schema.TypeInteger:   true,
	schema.TypeLong:      true,
	schema.TypeBoolean:   true,
	schema.TypeDouble:    true,
	schema.TypeFloat:     true,
	schema.TypeTimestamp: true,
	schema.TypeBlob:      true,
}

func isScalar(shapeType string) bool {
	return scalarTypes[shapeType]
}

// binaryInput is what callers may pass for binary payloads.
func binaryInput() descriptor.Descriptor {
	return descriptor.NewUnion(descriptor.Bytes, descriptor.IOBytes, descriptor.Stream)
}

func (r *Resolver) resolveScalar(shape *schema.Shape, ctx Context) descriptor.Descriptor {
	switch shape.Type {
	case schema.TypeInteger, schema.TypeLong:
		return descriptor.Integer
	case schema.TypeBoolean:
		return descriptor.Boolean
	case schema.TypeDouble, schema.TypeFloat:
		return descriptor.Float
	case schema.TypeTimestamp:
		if ctx.isOutput() {
			return descriptor.Timestamp
		}
		return descriptor.NewUnion(descriptor.Timestamp, descriptor.String)
	case schema.TypeBlob:
		if ctx.isOutput() {
			return descriptor.Bytes
		}
		return binaryInput()
	case schema.TypeString:
		if len(shape.Enum) > 0 {
			return r.ResolveEnum(shape.Name, shape.Enum)
		}
		return descriptor.String
	default:
		return descriptor.String
	}
}
