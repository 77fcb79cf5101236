package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/assembler"
	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema/schematest"
)

func thingsSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	model := schematest.Parse(t, "things", schematest.Things())
	diags := errors.NewDiagnostics("things")
	pkg, err := assembler.New(diags).Build(builder.New(resolver.New(model, nil, diags)))
	require.NoError(t, err)
	return FromPackage(pkg, diags.Items())
}

func TestFromPackage(t *testing.T) {
	s := thingsSnapshot(t)

	assert.Equal(t, FormatVersion, s.Version)
	assert.Equal(t, "things", s.Service)
	assert.Equal(t, 1, s.Renames)

	require.NotEmpty(t, s.Classes)
	assert.Equal(t, "ThingsClient", s.Classes[0].Name)
	assert.Equal(t, KindClient, s.Classes[0].Kind)

	thing, ok := s.Class("Thing")
	require.True(t, ok)
	assert.Equal(t, KindResource, thing.Kind)
	require.NotEmpty(t, thing.Attributes)
	assert.Equal(t, "name", thing.Attributes[0].Name)

	waiter, ok := s.Class("ThingExistsWaiter")
	require.True(t, ok)
	require.Len(t, waiter.Methods, 1)
	assert.Equal(t, "DescribeThingRequestWaitTypeDef", waiter.Methods[0].Request)

	sig := s.Signatures()
	assert.Equal(t, "describe_thing(self, *, Id: string) -> DescribeThingOutputTypeDef", sig["ThingsClient.describe_thing"])

	rec, ok := s.Record("ResponseMetadataTypeDef")
	require.True(t, ok)
	assert.True(t, rec.ForwardRef)

	out, ok := s.Record("DescribeThingOutputTypeDef")
	require.True(t, ok)
	assert.True(t, out.Output)

	_, ok = s.Record("Nope")
	assert.False(t, ok)

	require.NotEmpty(t, s.Diagnostics)
	assert.Equal(t, s.MethodCount(), len(sig))
}

func TestSerializeIsDeterministic(t *testing.T) {
	a, err := Serialize(thingsSnapshot(t))
	require.NoError(t, err)
	b, err := Serialize(thingsSnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	_, err = Serialize(nil)
	assert.Error(t, err)
}

func TestCompressedRoundTrip(t *testing.T) {
	s := thingsSnapshot(t)
	data, err := Serialize(s)
	require.NoError(t, err)

	packed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))

	decoded, err := Decode(packed)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": "0", "service": "x"}`))
	assert.ErrorContains(t, err, "unsupported snapshot version")

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestWriteAndReadFile(t *testing.T) {
	s := thingsSnapshot(t)
	path := filepath.Join(t.TempDir(), "out", "things.json")

	require.NoError(t, WriteToFile(s, path))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Records, got.Records)

	assert.Error(t, WriteToFile(s, ""))
}
