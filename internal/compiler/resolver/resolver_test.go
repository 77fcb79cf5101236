package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/compiler/schema/schematest"
)

func newThings(t *testing.T, registry *overrides.Registry, opts ...Option) *Resolver {
	t.Helper()
	model := schematest.Parse(t, "things", schematest.Things())
	return New(model, registry, errors.NewDiagnostics("things"), opts...)
}

func shape(t *testing.T, r *Resolver, name string) *schema.Shape {
	t.Helper()
	s, ok := r.Model().Shape(name)
	require.True(t, ok, "shape %s", name)
	return s
}

func TestScalarMapping(t *testing.T) {
	r := newThings(t, nil)

	tests := []struct {
		shape  string
		input  string
		output string
	}{
		{"String", "string", "string"},
		{"Integer", "integer", "integer"},
		{"Long", "integer", "integer"},
		{"Double", "float", "float"},
		{"Boolean", "boolean", "boolean"},
		{"Timestamp", "union<timestamp,string>", "timestamp"},
		{"Blob", "union<bytes,io-bytes,stream>", "bytes"},
		{"StreamingBlob", "union<bytes,io-bytes,stream>", "stream"},
	}

	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			s := shape(t, r, tt.shape)
			assert.Equal(t, tt.input, r.Resolve(s, Input).String())
			assert.Equal(t, tt.output, r.Resolve(s, OutputChild).String())
		})
	}
}

func TestStreamingStringIsBinary(t *testing.T) {
	r := newThings(t, nil)
	s := &schema.Shape{Name: "Payload", Type: schema.TypeString, Streaming: true}

	assert.Equal(t, "union<bytes,io-bytes,stream>", r.Resolve(s, Input).String())
	assert.Equal(t, "stream", r.Resolve(s, Output).String())
}

func TestEnumPreservesDeclaredOrder(t *testing.T) {
	r := newThings(t, nil)

	d := r.Resolve(shape(t, r, "ThingState"), Input)
	e, ok := d.(*descriptor.Enum)
	require.True(t, ok)
	assert.Equal(t, "ThingStateType", e.Name)
	assert.Equal(t, []string{"pending", "active", "deleted"}, e.Options)
}

func TestLiteralOverrideWins(t *testing.T) {
	registry := overrides.NewRegistry()
	registry.AddLiteral("things", descriptor.NewEnum("ThingStateType", []string{"on", "off"}))
	r := newThings(t, registry)

	e := r.Resolve(shape(t, r, "ThingState"), Input).(*descriptor.Enum)
	assert.Equal(t, []string{"on", "off"}, e.Options)
	assert.Len(t, r.Diagnostics().Items().ByCode(errors.ErrOverrideApplied), 1)
}

func TestReservedEnumGetsSuffix(t *testing.T) {
	r := newThings(t, nil, WithReservedWords([]string{"ThingStateType"}))

	e := r.Resolve(shape(t, r, "ThingState"), Input).(*descriptor.Enum)
	assert.Equal(t, "ThingStateTypeType", e.Name)
	assert.True(t, r.IsReserved("ThingStateType"))
}

func TestListAndMapDefaults(t *testing.T) {
	r := newThings(t, nil)

	assert.Equal(t, "list<any>", r.Resolve(&schema.Shape{Name: "L", Type: schema.TypeList}, Input).String())
	assert.Equal(t, "map<string,any>", r.Resolve(&schema.Shape{Name: "M", Type: schema.TypeMap}, Input).String())
	assert.Equal(t, "map<string,integer>", r.Resolve(shape(t, r, "AttributeMap"), Input).String())
	assert.Equal(t, "list<string>", r.Resolve(shape(t, r, "TagList"), Input).String())
}

func TestEmptyRecordIsOpenMapping(t *testing.T) {
	r := newThings(t, nil)
	assert.Equal(t, "map<string,any>", r.Resolve(shape(t, r, "Empty"), Input).String())
	assert.Empty(t, r.Records().Records())
}

func TestRecordFieldsAndRequiredness(t *testing.T) {
	r := newThings(t, nil)

	rec := r.Resolve(shape(t, r, "Thing"), Input).(*descriptor.Record)
	assert.Equal(t, "ThingTypeDef", rec.Name)
	assert.Equal(t, []string{"Name", "State", "Attributes", "Extra"}, rec.FieldNames())
	assert.True(t, rec.Field("Name").Required)
	assert.False(t, rec.Field("State").Required)
	assert.False(t, rec.IsOutput())
}

func TestOutputRecordForcesRequiredAndAppendsMetadata(t *testing.T) {
	r := newThings(t, nil)

	rec := r.Resolve(shape(t, r, "DescribeThingOutput"), Output).(*descriptor.Record)
	assert.Equal(t, "DescribeThingOutputTypeDef", rec.Name)
	assert.Equal(t, []string{"Name", "Tags", "ResponseMetadata"}, rec.FieldNames())
	for _, f := range rec.Fields {
		assert.True(t, f.Required, f.Name)
	}
	assert.Equal(t, "list<string>", rec.Field("Tags").Type.String())
	assert.Equal(t, "ResponseMetadataTypeDef", rec.Field("ResponseMetadata").Type.String())
	assert.True(t, r.Records().IsOutput(rec))
}

func TestOutputChildKeepsNestedRequiredness(t *testing.T) {
	r := newThings(t, nil)

	rec := r.Resolve(shape(t, r, "ListThingsResult"), Output).(*descriptor.Record)
	things := rec.Field("Things").Type.(*descriptor.Sequence)
	thing := things.Element.(*descriptor.Record)

	assert.Equal(t, "ThingTypeDef", thing.Name)
	assert.False(t, thing.Field("State").Required)
	assert.False(t, thing.HasField(descriptor.ResponseMetadataField))
}

func TestOutputChildUsesOutputScalars(t *testing.T) {
	r := newThings(t, nil)

	rec := r.Resolve(shape(t, r, "GetBlobOutput"), Output).(*descriptor.Record)
	assert.Equal(t, "stream", rec.Field("Body").Type.String())
	assert.Equal(t, "timestamp", rec.Field("LastModified").Type.String())
	assert.Equal(t, "integer", rec.Field("Size").Type.String())
	assert.Equal(t, "any", rec.Field("Mystery").Type.String())

	warnings := r.Diagnostics().Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.ErrUnknownShapeKind, warnings[0].Code)
	assert.Equal(t, "mystery", warnings[0].Actual)
}

func TestSelfReferenceYieldsReference(t *testing.T) {
	r := newThings(t, nil)

	node := r.Resolve(shape(t, r, "Node"), Input).(*descriptor.Record)
	children := node.Field("Children").Type.(*descriptor.Sequence)
	ref, ok := children.Element.(*descriptor.Reference)
	require.True(t, ok, "self-referential field must be a reference")
	assert.Equal(t, "NodeTypeDef", ref.Name())
	assert.Same(t, node, ref.Target())
}

func TestMutualRecursionTerminates(t *testing.T) {
	model := schematest.Service(t, "mutual", `{
	  "shapes": {
	    "A": {"type": "structure", "members": {"B": {"shape": "B"}}},
	    "B": {"type": "structure", "members": {"A": {"shape": "A"}, "Name": {"shape": "S"}}},
	    "S": {"type": "string"}
	  }
	}`)
	r := New(model, nil, errors.NewDiagnostics("mutual"))

	a := r.Resolve(model.Shapes["A"], Input).(*descriptor.Record)
	b := a.Field("B").Type.(*descriptor.Record)
	back := b.Field("A").Type.(*descriptor.Reference)
	assert.Same(t, a, back.Target())

	again := r.Resolve(model.Shapes["B"], Input)
	assert.Same(t, b, again)
}

func TestSelfReferenceInOutputKeepsPlainName(t *testing.T) {
	model := schematest.Service(t, "tree", `{
	  "shapes": {
	    "Node": {"type": "structure", "members": {"Name": {"shape": "S"}, "Parent": {"shape": "Node"}}},
	    "S": {"type": "string"}
	  }
	}`)
	r := New(model, nil, errors.NewDiagnostics("tree"))

	node := r.Resolve(model.Shapes["Node"], Output).(*descriptor.Record)
	assert.Equal(t, "NodeTypeDef", node.Name)

	parent, ok := node.Field("Parent").Type.(*descriptor.Reference)
	require.True(t, ok, "recursive field must be a reference")
	assert.Same(t, node, parent.Target())

	assert.Zero(t, r.Records().Renames())
	_, renamed := r.Records().Lookup("NodeResponseMetadataTypeDef")
	assert.False(t, renamed)
	assert.Empty(t, r.Diagnostics().Infos().ByCode(errors.ErrRecordRenamed))
}

func TestMutualRecursionInOutputTerminates(t *testing.T) {
	model := schematest.Service(t, "mutual", `{
	  "shapes": {
	    "A": {"type": "structure", "members": {"B": {"shape": "B"}}},
	    "B": {"type": "structure", "members": {"A": {"shape": "A"}, "Name": {"shape": "S"}}},
	    "S": {"type": "string"}
	  }
	}`)
	r := New(model, nil, errors.NewDiagnostics("mutual"))

	a := r.Resolve(model.Shapes["A"], Output).(*descriptor.Record)
	assert.Equal(t, "ATypeDef", a.Name)
	b := a.Field("B").Type.(*descriptor.Record)
	back, ok := b.Field("A").Type.(*descriptor.Reference)
	require.True(t, ok, "back edge must be a reference")
	assert.Same(t, a, back.Target())

	assert.Zero(t, r.Records().Renames())
	_, renamed := r.Records().Lookup("AResponseMetadataTypeDef")
	assert.False(t, renamed)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newThings(t, nil)

	first := r.Resolve(shape(t, r, "Thing"), Input)
	second := r.Resolve(shape(t, r, "Thing"), Input)
	assert.True(t, descriptor.Equal(first, second))
	assert.Same(t, first, second)

	out1 := r.Resolve(shape(t, r, "DescribeThingOutput"), Output)
	out2 := r.Resolve(shape(t, r, "DescribeThingOutput"), Output)
	assert.Same(t, out1, out2)
}

func TestRequestResponseRolesAreRenamed(t *testing.T) {
	t.Run("input first", func(t *testing.T) {
		r := newThings(t, nil)

		in := r.Resolve(shape(t, r, "Thing"), Input).(*descriptor.Record)
		out := r.Resolve(shape(t, r, "Thing"), Output).(*descriptor.Record)
		again := r.Resolve(shape(t, r, "Thing"), Output)

		assert.Equal(t, "ThingTypeDef", in.Name)
		assert.Equal(t, "ThingResponseMetadataTypeDef", out.Name)
		assert.Same(t, out, again)
		assert.Len(t, r.Records().Records(), 2)
		assert.Equal(t, 1, r.Records().Renames())

		infos := r.Diagnostics().Infos().ByCode(errors.ErrRecordRenamed)
		require.Len(t, infos, 1)
		assert.Equal(t, "Marking ThingTypeDef as ThingResponseMetadataTypeDef", infos[0].Message)
	})

	t.Run("output first", func(t *testing.T) {
		r := newThings(t, nil)

		out := r.Resolve(shape(t, r, "Thing"), Output).(*descriptor.Record)
		ref := descriptor.NewRecordReference(out)
		in := r.Resolve(shape(t, r, "Thing"), Input).(*descriptor.Record)

		assert.Equal(t, "ThingResponseMetadataTypeDef", out.Name)
		assert.Equal(t, "ThingResponseMetadataTypeDef", ref.Name())
		assert.Equal(t, "ThingTypeDef", in.Name)
		assert.Same(t, in, r.Resolve(shape(t, r, "Thing"), Input))
		assert.Same(t, out, r.Resolve(shape(t, r, "Thing"), Output))

		names := []string{}
		for _, rec := range r.Records().Records() {
			names = append(names, rec.Name)
		}
		assert.Equal(t, []string{"ThingResponseMetadataTypeDef", "ThingTypeDef"}, names)

		found, ok := r.Records().Lookup("ThingTypeDef")
		require.True(t, ok)
		assert.Same(t, in, found)
	})
}

func TestShapeOverrideReplacesRecord(t *testing.T) {
	registry := overrides.NewRegistry()
	registry.AddShape("things", "NodeTypeDef", descriptor.NewNamedReference("TreeTypeDef"))
	r := newThings(t, registry)

	d := r.Resolve(shape(t, r, "Node"), Input)
	assert.Equal(t, "ref<TreeTypeDef>", d.String())
	assert.Empty(t, r.Records().Records())
}

func TestResourceTypeYieldsReference(t *testing.T) {
	r := newThings(t, nil)

	d := r.Resolve(&schema.Shape{Name: "resource", Type: "Thing"}, Output)
	ref, ok := d.(*descriptor.Reference)
	require.True(t, ok)
	assert.True(t, ref.IsResource())
	assert.Equal(t, "Thing", ref.Name())
	assert.Empty(t, r.Diagnostics().Items())
}

func TestDanglingReferenceDegradesToAny(t *testing.T) {
	r := newThings(t, nil)
	r.SetLocation("Client", "describe_thing")

	d := r.ResolveRef(&schema.ShapeRef{Shape: "Missing"}, Input)
	assert.Same(t, descriptor.Any, d)

	warnings := r.Diagnostics().Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, errors.ErrUnknownShape, warnings[0].Code)
	assert.Equal(t, "Client.describe_thing.Missing", warnings[0].Location.String())
}

func TestTypeDefName(t *testing.T) {
	assert.Equal(t, "ThingTypeDef", TypeDefName("Thing", ""))
	assert.Equal(t, "ThingRequestTypeDef", TypeDefName("Thing", "Request"))
}
