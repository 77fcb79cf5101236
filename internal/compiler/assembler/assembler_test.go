package assembler

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/compiler/schema/schematest"
)

func build(t *testing.T, docs *schema.Documents) (*Package, *errors.Diagnostics, error) {
	t.Helper()
	model := schematest.Parse(t, "things", docs)
	diags := errors.NewDiagnostics("things")
	b := builder.New(resolver.New(model, nil, diags))
	pkg, err := New(diags).Build(b)
	return pkg, diags, err
}

func recordNames(recs []*descriptor.Record) []string {
	var names []string
	for _, r := range recs {
		names = append(names, r.Name)
	}
	return names
}

func TestBuildThings(t *testing.T) {
	pkg, diags, err := build(t, schematest.Things())
	require.NoError(t, err)

	assert.Equal(t, "things", pkg.Service)
	assert.Equal(t, "ThingsClient", pkg.Client.Name)
	require.NotNil(t, pkg.ServiceResource)
	assert.Len(t, pkg.Waiters, 1)
	assert.Len(t, pkg.Paginators, 1)
	assert.Equal(t, 1, pkg.Renames)

	assert.False(t, diags.HasErrors())
	assert.Len(t, diags.Warnings().ByCode(errors.ErrUnknownShapeKind), 1)
	assert.Empty(t, diags.Warnings().ByCode(errors.ErrMissingSection))

	names := recordNames(pkg.Records)
	assert.IsNonDecreasing(t, names)
	for _, want := range []string{
		"DescribeThingOutputTypeDef",
		"DescribeThingRequestRequestTypeDef",
		"ListThingsResultTypeDef",
		"NodeTypeDef",
		"PaginatorConfigTypeDef",
		"ResponseMetadataTypeDef",
		"ThingResponseMetadataTypeDef",
		"ThingTypeDef",
		"WaiterConfigTypeDef",
	} {
		assert.Contains(t, names, want)
	}

	require.Len(t, pkg.Literals, 1)
	assert.Equal(t, "ThingStateType", pkg.Literals[0].Name)
	assert.Equal(t, []string{"pending", "active", "deleted"}, pkg.Literals[0].Options)
}

func TestNestedRecordsAreForwardReferences(t *testing.T) {
	pkg, _, err := build(t, schematest.Things())
	require.NoError(t, err)

	for name, forward := range map[string]bool{
		"ResponseMetadataTypeDef":    true,
		"ThingTypeDef":               true,
		"DescribeThingOutputTypeDef": false,
		"NodeTypeDef":                false,
	} {
		rec, ok := pkg.Record(name)
		require.True(t, ok, name)
		assert.Equal(t, forward, rec.ForwardRef, name)
	}
}

func TestBuildWithoutOptionalDocuments(t *testing.T) {
	pkg, diags, err := build(t, &schema.Documents{Service: []byte(schematest.ThingsService)})
	require.NoError(t, err)

	assert.Nil(t, pkg.ServiceResource)
	assert.Empty(t, pkg.Waiters)
	assert.Empty(t, pkg.Paginators)
	assert.Len(t, diags.Warnings().ByCode(errors.ErrMissingSection), 3)
}

func TestBuildFailsOnFatalDiagnostics(t *testing.T) {
	docs := schematest.Things()
	docs.Waiters = []byte(`{"version": 2, "waiters": {"Broken": {"operation": "Nope"}}}`)

	pkg, _, err := build(t, docs)
	require.Error(t, err)
	assert.Nil(t, pkg)

	var list errors.ErrorList
	require.True(t, stderrors.As(err, &list))
	assert.Equal(t, errors.ErrUnknownOperation, list[0].Code)
}

func TestExtractLiterals(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags)

	got := a.ExtractLiterals([]descriptor.Descriptor{
		descriptor.NewEnum("ColorType", []string{"red", "blue"}),
		descriptor.NewSequence(descriptor.NewEnum("ColorType", []string{"blue", "red"})),
		descriptor.NewEnum("AType", []string{"x", "y"}),
		descriptor.NewEnum("SingleType", []string{"only"}),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "AType", got[0].Name)
	assert.Equal(t, "ColorType", got[1].Name)
	assert.Equal(t, []string{"red", "blue"}, got[1].Options)
	assert.False(t, diags.HasErrors())
}

func TestAmbiguousLiteralIsFatal(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags)

	rec := descriptor.NewRecord("HolderTypeDef")
	rec.AddField("Color", descriptor.NewEnum("ColorType", []string{"red", "green"}), true)

	a.ExtractLiterals([]descriptor.Descriptor{
		descriptor.NewEnum("ColorType", []string{"red", "blue"}),
		rec,
		descriptor.NewEnum("ColorType", []string{"cyan"}),
	})

	errs := diags.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, errors.ErrAmbiguousEnum, errs[0].Code)
	assert.Equal(t, "red, blue", errs[0].Expected)
	assert.Equal(t, "red, green", errs[0].Actual)
	assert.Equal(t, errors.ErrAmbiguousEnum, errs[1].Code)
	assert.Equal(t, "red, blue", errs[1].Expected)
	assert.Equal(t, "cyan", errs[1].Actual)
}

func TestSingleOptionLiteralConflictIsFatal(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags)

	got := a.ExtractLiterals([]descriptor.Descriptor{
		descriptor.NewEnum("ModeType", []string{"on"}),
		descriptor.NewEnum("ModeType", []string{"on", "off"}),
		descriptor.NewEnum("ModeType", []string{"on", "off"}),
	})

	assert.Empty(t, got)
	errs := diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrAmbiguousEnum, errs[0].Code)
	assert.Equal(t, "on", errs[0].Expected)
	assert.Equal(t, "on, off", errs[0].Actual)
}

func TestExtractRecordsMergesEqualDuplicates(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags)

	first := descriptor.NewRecord("ConfigTypeDef")
	first.AddField("Delay", descriptor.Integer, false)
	second := descriptor.NewRecord("ConfigTypeDef")
	second.AddField("Delay", descriptor.Integer, false)

	got := a.ExtractRecords([]descriptor.Descriptor{first, second})
	require.Len(t, got, 1)
	assert.Same(t, first, got[0])
	assert.False(t, diags.HasErrors())
}

func TestExtractRecordsReportsCollision(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags)

	first := descriptor.NewRecord("ConfigTypeDef")
	first.AddField("Delay", descriptor.Integer, false)
	second := descriptor.NewRecord("ConfigTypeDef")
	second.AddField("Delay", descriptor.String, false)

	a.ExtractRecords([]descriptor.Descriptor{first, descriptor.NewSequence(second), second})

	errs := diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrNameCollision, errs[0].Code)
}

func TestExtractRecordsFollowsReferences(t *testing.T) {
	a := New(errors.NewDiagnostics("x"))

	node := descriptor.NewRecord("NodeTypeDef")
	leaf := descriptor.NewRecord("LeafTypeDef")
	leaf.AddField("Value", descriptor.String, true)
	node.AddField("Next", descriptor.NewRecordReference(node), false)
	node.AddField("Leaves", descriptor.NewSequence(leaf), false)

	got := a.ExtractRecords([]descriptor.Descriptor{descriptor.NewRecordReference(node)})
	assert.Equal(t, []string{"LeafTypeDef", "NodeTypeDef"}, recordNames(got))
	assert.True(t, got[0].ForwardRef)
	assert.False(t, got[1].ForwardRef)
}

func TestValidateNames(t *testing.T) {
	diags := errors.NewDiagnostics("x")
	a := New(diags, WithReservedWords([]string{"Forbidden"}))

	pkg := &Package{
		Records:    []*descriptor.Record{descriptor.NewRecord("List"), descriptor.NewRecord("ThingExistsWaiter")},
		Literals:   []*descriptor.Enum{descriptor.NewEnum("Forbidden", []string{"a", "b"})},
		Waiters:    []*builder.Waiter{{Name: "ThingExistsWaiter"}},
		Paginators: []*builder.Paginator{{Name: "ListPaginator"}},
	}
	a.Validate(pkg)

	assert.Len(t, diags.Errors().ByCode(errors.ErrReservedName), 2)
	collisions := diags.Errors().ByCode(errors.ErrNameCollision)
	require.Len(t, collisions, 1)
	assert.Equal(t, "record", collisions[0].Expected)
	assert.Equal(t, "waiter", collisions[0].Actual)
}

func TestPackageOwners(t *testing.T) {
	pkg, _, err := build(t, schematest.Things())
	require.NoError(t, err)

	owners := pkg.Owners()
	for _, name := range []string{
		"ThingsClient",
		"ThingsServiceResource",
		"ServiceResourceThingsCollection",
		"Thing",
		"ThingExistsWaiter",
		"ListThingsPaginator",
	} {
		assert.Contains(t, owners, name)
	}
	assert.Greater(t, pkg.MethodCount(), 20)
}

func TestReservedWords(t *testing.T) {
	words := ReservedWords("Extra")
	assert.Contains(t, words, "class")
	assert.Equal(t, "Extra", words[len(words)-1])

	set := ReservedSet("Extra")
	assert.True(t, set["Extra"])
	assert.True(t, set["TypedDict"])
	assert.False(t, set["ThingTypeDef"])
}
