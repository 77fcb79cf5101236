package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Snapshot {
	return &Snapshot{
		Version: FormatVersion,
		Service: "things",
		Classes: []Class{{
			Name: "ThingsClient",
			Kind: KindClient,
			Methods: []Method{
				{Name: "get", Signature: "get(self, *, Id: string) -> GetOutputTypeDef"},
				{Name: "ping", Signature: "ping(self) -> none"},
			},
		}},
		Records: []Record{
			{Name: "GetOutputTypeDef", Fields: []Field{{Name: "Id", Type: "string", Required: true}}},
		},
		Literals: []Literal{{Name: "StateType", Options: []string{"on", "off"}}},
	}
}

func TestDiffIdentical(t *testing.T) {
	assert.Empty(t, Diff(sample(), sample()))
}

func TestDiff(t *testing.T) {
	old := sample()
	s := sample()
	s.Classes[0].Methods = s.Classes[0].Methods[:1]
	s.Classes[0].Methods[0].Signature = "get(self, *, Id: string, Force: boolean = None) -> GetOutputTypeDef"
	s.Records[0].Fields[0].Required = false
	s.Literals = append(s.Literals, Literal{Name: "ColorType", Options: []string{"red"}})

	changes := Diff(old, s)
	require.Len(t, changes, 4)

	assert.Equal(t, Change{Kind: Added, Entity: EntityLiteral, Name: "ColorType", After: "red"}, changes[0])
	assert.Equal(t, Changed, changes[1].Kind)
	assert.Equal(t, "ThingsClient.get", changes[1].Name)
	assert.Equal(t, Removed, changes[2].Kind)
	assert.Equal(t, "ThingsClient.ping", changes[2].Name)
	assert.Equal(t, Change{
		Kind:   Changed,
		Entity: EntityRecord,
		Name:   "GetOutputTypeDef",
		Before: "{Id: string}",
		After:  "{Id?: string}",
	}, changes[3])

	assert.Equal(t, Summary{Added: 1, Removed: 1, Changed: 2}, Summarize(changes))
}

func TestDiffAgainstNothing(t *testing.T) {
	changes := Diff(nil, sample())
	assert.Equal(t, Summary{Added: 4}, Summarize(changes))

	data, err := MarshalChanges(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
