package schema_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/compiler/schema/schematest"
)

func TestMembersPreserveOrder(t *testing.T) {
	var shape schema.Shape
	data := `{"type":"structure","members":{"Zeta":{"shape":"S"},"Alpha":{"shape":"S","streaming":true},"Mid":{"shape":"I"}}}`
	require.NoError(t, json.Unmarshal([]byte(data), &shape))

	require.Len(t, shape.Members, 3)
	assert.Equal(t, "Zeta", shape.Members[0].Name)
	assert.Equal(t, "Alpha", shape.Members[1].Name)
	assert.True(t, shape.Members[1].Streaming)
	assert.Equal(t, "Mid", shape.Members[2].Name)

	out, err := json.Marshal(shape.Members)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":{"shape":"S"},"Alpha":{"shape":"S","streaming":true},"Mid":{"shape":"I"}}`, string(out))
}

func TestMembersRejectNonObject(t *testing.T) {
	var m schema.Members
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &m))
}

func TestStringList(t *testing.T) {
	var p schema.Paginator
	require.NoError(t, json.Unmarshal([]byte(`{"input_token":["Marker","KeyMarker"],"limit_key":"MaxKeys"}`), &p))
	assert.Equal(t, []string{"Marker", "KeyMarker", "MaxKeys"}, p.SkippedArguments())

	require.NoError(t, json.Unmarshal([]byte(`{"input_token":"NextToken"}`), &p))
	assert.Equal(t, schema.StringList{"NextToken"}, p.InputToken)

	assert.Error(t, json.Unmarshal([]byte(`{"input_token":12}`), &p))
}

func TestParseThings(t *testing.T) {
	model := schematest.Parse(t, "things", schematest.Things())

	assert.Equal(t, "things", model.Name)
	assert.Equal(t, "Things", model.Metadata.ServiceID)
	assert.Equal(t, []string{"CreateTree", "DeleteThings", "DescribeThing", "GetBlob", "ListThings", "Ping", "PutThing"}, model.OperationNames())

	op, err := model.Operation("DescribeThing")
	require.NoError(t, err)
	input := model.InputShape(op)
	require.NotNil(t, input)
	assert.Equal(t, "DescribeThingRequest", input.Name)
	assert.True(t, input.IsRequired("Id"))

	ping, err := model.Operation("Ping")
	require.NoError(t, err)
	assert.Nil(t, model.InputShape(ping))
	assert.Nil(t, model.OutputShape(ping))

	_, err = model.Operation("Nope")
	assert.True(t, errors.Is(err, schema.ErrUnknownOperation))

	streaming, ok := model.Shape("StreamingBlob")
	require.True(t, ok)
	assert.True(t, streaming.Streaming)

	assert.Equal(t, []string{"ListThings"}, model.PaginatorNames())
	assert.Equal(t, []string{"ThingExists"}, model.WaiterNames())
	assert.True(t, model.IsResource("Thing"))
	assert.False(t, model.IsResource("Node"))

	resources, err := model.Resources()
	require.NoError(t, err)
	assert.Equal(t, []string{"Thing"}, resources.ResourceNames())
	thing, err := resources.Resource("Thing")
	require.NoError(t, err)
	assert.Equal(t, "Thing", thing.Shape)
	assert.Equal(t, "Names[]", thing.BatchActions["Delete"].Request.Params[0].Target)
}

func TestMissingSections(t *testing.T) {
	model := schematest.Service(t, "bare", `{"operations":{},"shapes":{}}`)

	_, err := model.Paginator("ListThings")
	assert.True(t, errors.Is(err, schema.ErrSectionNotFound))
	_, err = model.Waiter("ThingExists")
	assert.True(t, errors.Is(err, schema.ErrSectionNotFound))
	_, err = model.Resources()
	assert.True(t, errors.Is(err, schema.ErrSectionNotFound))
	assert.Nil(t, model.PaginatorNames())
	assert.False(t, model.HasResources())

	full := schematest.Parse(t, "things", schematest.Things())
	_, err = full.Paginator("Missing")
	assert.True(t, errors.Is(err, schema.ErrSectionNotFound))
}

func TestParseInvalidDocument(t *testing.T) {
	_, err := schema.Parse("broken", &schema.Documents{Service: []byte(`{"shapes":`)})
	assert.True(t, errors.Is(err, schema.ErrInvalidDocument))

	_, err = schema.Parse("broken", &schema.Documents{
		Service:    []byte(`{}`),
		Paginators: []byte(`{"pagination": 3}`),
	})
	assert.True(t, errors.Is(err, schema.ErrInvalidDocument))
}

func TestResolveRefMergesStreaming(t *testing.T) {
	model := schematest.Parse(t, "things", schematest.Things())

	shape, ok := model.ResolveRef(&schema.ShapeRef{Shape: "Blob", Streaming: true})
	require.True(t, ok)
	assert.True(t, shape.Streaming)

	original, _ := model.Shape("Blob")
	assert.False(t, original.Streaming)

	_, ok = model.ResolveRef(&schema.ShapeRef{Shape: "Missing"})
	assert.False(t, ok)
}

func TestDiscoverAndLoad(t *testing.T) {
	dataDir := t.TempDir()
	schematest.WriteDir(t, filepath.Join(dataDir, "things", "2019-01-01"), &schema.Documents{Service: []byte(`{}`)})
	schematest.WriteDir(t, filepath.Join(dataDir, "things", "2020-01-01"), schematest.Things())
	schematest.WriteDir(t, filepath.Join(dataDir, "bare"), &schema.Documents{Service: []byte(`{}`)})
	schematest.WriteDir(t, filepath.Join(dataDir, "empty"), &schema.Documents{})

	services, err := schema.Discover(dataDir)
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "bare", services[0].Name)
	assert.Equal(t, "", services[0].Version)
	assert.False(t, services[0].HasPaginators)

	things := services[1]
	assert.Equal(t, "things", things.Name)
	assert.Equal(t, "2020-01-01", things.Version)
	assert.True(t, things.HasPaginators)
	assert.True(t, things.HasWaiters)
	assert.True(t, things.HasResources)

	model, err := schema.LoadService(things.Name, things.Path)
	require.NoError(t, err)
	assert.True(t, model.HasPaginators())

	found, err := schema.Find(dataDir, "things")
	require.NoError(t, err)
	assert.Equal(t, things.Path, found.Path)

	_, err = schema.Find(dataDir, "nope")
	assert.Error(t, err)
}

func TestLoadTestdata(t *testing.T) {
	dir, err := schema.Find("testdata", "things")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", dir.Version)

	fromDisk, err := schema.LoadService(dir.Name, dir.Path)
	require.NoError(t, err)
	inMemory := schematest.Parse(t, "things", schematest.Things())

	assert.Equal(t, inMemory.Metadata, fromDisk.Metadata)
	assert.Equal(t, inMemory.OperationNames(), fromDisk.OperationNames())
	assert.Equal(t, inMemory.HasWaiters(), fromDisk.HasWaiters())
}
