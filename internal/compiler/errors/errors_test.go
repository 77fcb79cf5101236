package errors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := make(map[ErrorCode]string)

	groups := map[string][]ErrorCode{
		"schema":   {ErrMissingSection, ErrUnknownShapeKind, ErrUnknownOperation, ErrInvalidDocument, ErrUnknownShape},
		"override": {ErrInvalidOverride, ErrOverrideApplied, ErrSignatureRemoved},
		"naming":   {ErrAmbiguousEnum, ErrNameCollision, ErrReservedName, ErrRecordRenamed},
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group
		}
	}
}

func TestConstructorsSetSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompilerError
		code     ErrorCode
		severity ErrorSeverity
		category ErrorCategory
	}{
		{"missing section", NewMissingSection("paginators", ""), ErrMissingSection, SeverityWarning, CategorySchema},
		{"unknown kind", NewUnknownShapeKind(Location{Member: "Thing"}, "Thing", "weird"), ErrUnknownShapeKind, SeverityWarning, CategorySchema},
		{"unknown operation", NewUnknownOperation(Location{Owner: "Bucket"}, "Nope"), ErrUnknownOperation, SeverityError, CategorySchema},
		{"invalid document", NewInvalidDocument("service-2.json", errors.New("eof")), ErrInvalidDocument, SeverityError, CategorySchema},
		{"invalid override", NewInvalidOverride(Location{}, "list<", errors.New("unterminated")), ErrInvalidOverride, SeverityError, CategoryOverride},
		{"override applied", NewOverrideApplied(Location{Owner: "Client"}, "string"), ErrOverrideApplied, SeverityInfo, CategoryOverride},
		{"ambiguous enum", NewAmbiguousEnum("StateType", []string{"a"}, []string{"b"}), ErrAmbiguousEnum, SeverityError, CategoryNaming},
		{"collision", NewNameCollision("ThingTypeDef", "record", "literal"), ErrNameCollision, SeverityError, CategoryNaming},
		{"reserved", NewReservedName("Dict"), ErrReservedName, SeverityError, CategoryNaming},
		{"renamed", NewRecordRenamed("ThingTypeDef", "ThingResponseMetadataTypeDef"), ErrRecordRenamed, SeverityInfo, CategoryNaming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.severity, tt.err.Severity)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.True(t, strings.HasSuffix(tt.err.Documentation, string(tt.code)))
		})
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "Client.describe_thing.Id", Location{Owner: "Client", Member: "describe_thing", Field: "Id"}.String())
	assert.Equal(t, "Thing", Location{Member: "Thing"}.String())
	assert.True(t, Location{}.IsZero())
}

func TestFormatCompact(t *testing.T) {
	err := NewReservedName("Dict").WithService("ec2")
	assert.Equal(t, "ec2:Dict: error: Dict is a reserved keyword [NAM203]", err.Error())

	bare := NewMissingSection("waiters", "")
	assert.Equal(t, `<service>: warning: Document section "waiters" not found [SCH001]`, bare.Error())
}

func TestFormatError(t *testing.T) {
	err := NewAmbiguousEnum("StateType", []string{"on", "off"}, []string{"on"}).WithService("ec2")
	out := err.Format()

	assert.Contains(t, out, "Naming Error in ec2 [NAM201]")
	assert.Contains(t, out, "At StateType:")
	assert.Contains(t, out, "Expected: on, off")
	assert.Contains(t, out, "Actual:   on")
	assert.Contains(t, out, "Learn more: https://shapec.dev/errors/NAM201")
}

func TestErrorListToJSON(t *testing.T) {
	list := ErrorList{
		NewReservedName("Dict").WithService("s3"),
		NewMissingSection("resources", ""),
	}

	out, err := list.ToJSON()
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "NAM203", decoded[0]["code"])
	assert.Equal(t, "s3", decoded[0]["service"])
	assert.Equal(t, "warning", decoded[1]["severity"])

	empty, err := ErrorList(nil).ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestErrorListCounts(t *testing.T) {
	list := ErrorList{
		NewReservedName("A"),
		NewMissingSection("waiters", ""),
		NewMissingSection("paginators", ""),
		NewRecordRenamed("X", "Y"),
	}

	errs, warns, infos := list.ErrorCount()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warns)
	assert.Equal(t, 1, infos)
	assert.True(t, list.HasErrors())
	assert.True(t, list.HasWarnings())
	assert.Len(t, list.ByCode(ErrMissingSection), 2)
	assert.Contains(t, list.Error(), "4 errors:")
	assert.Contains(t, FormatErrorList(list), "1 error(s), 2 warning(s), 1 info")
}

func TestDiagnostics(t *testing.T) {
	d := NewDiagnostics("ec2")
	assert.NoError(t, d.Err())

	d.Add(NewMissingSection("waiters", ""))
	d.Info(NewRecordRenamed("ThingTypeDef", "ThingResponseMetadataTypeDef"))
	d.Add(nil)

	assert.Len(t, d.Items(), 2)
	assert.Len(t, d.Warnings(), 1)
	assert.Len(t, d.Infos(), 1)
	assert.False(t, d.HasErrors())
	assert.Equal(t, "ec2", d.Items()[0].Service)

	other := NewDiagnostics("ec2")
	other.Add(NewNameCollision("ThingTypeDef", "record", "literal"))
	d.Merge(other)

	require.True(t, d.HasErrors())
	err := d.Err()
	require.Error(t, err)

	var list ErrorList
	require.True(t, errors.As(err, &list))
	assert.Equal(t, ErrNameCollision, list[0].Code)
}

func TestDiagnosticsWarnDowngrades(t *testing.T) {
	d := NewDiagnostics("s3")
	d.Warn(NewUnknownOperation(Location{}, "Nope"))

	require.Len(t, d.Warnings(), 1)
	assert.False(t, d.HasErrors())
}
