package resolver

import (
	"sort"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

const (
	typeDefSuffix = "TypeDef"
	// ResponseMetadataRole is the role suffix given to the response variant
	// of a shape that is also used as a request.
	ResponseMetadataRole = "ResponseMetadata"
)

// TypeDefName returns the emitted record name for a shape, with an optional
// role suffix: TypeDefName("Thing", "Request") is "ThingRequestTypeDef".
func TypeDefName(shapeName, role string) string {
	return shapeName + role + typeDefSuffix
}

// RecordRegistry owns the records of one service compilation. Each record
// name maps to at most one record per role (request or response). The
// registry is scoped to a single compilation and is not safe for concurrent
// use.
type RecordRegistry struct {
	byName     map[string]*descriptor.Record
	output     map[*descriptor.Record]bool
	inProgress map[*descriptor.Record]bool
	diags      *errors.Diagnostics
	renames    int
}

// NewRecordRegistry creates an empty registry reporting to diags.
func NewRecordRegistry(diags *errors.Diagnostics) *RecordRegistry {
	return &RecordRegistry{
		byName:     make(map[string]*descriptor.Record),
		output:     make(map[*descriptor.Record]bool),
		inProgress: make(map[*descriptor.Record]bool),
		diags:      diags,
	}
}

// Claim returns the canonical descriptor for a shape in the given role.
//
// A record still being populated is returned as a Reference whatever the
// requested role, so self and mutual recursion terminate without renaming.
// A completed record for the name and role is returned as is. Otherwise a
// new empty record is created, marked in progress and returned as created;
// the caller must populate it and then call Complete.
//
// When the name is taken by the other role, the response variant is renamed
// to <Shape>ResponseMetadataTypeDef so both can coexist; the request variant
// keeps the plain name.
func (g *RecordRegistry) Claim(shapeName string, output bool) (existing descriptor.Descriptor, created *descriptor.Record) {
	name := TypeDefName(shapeName, "")

	if old, ok := g.byName[name]; ok {
		if g.inProgress[old] {
			return descriptor.NewRecordReference(old), nil
		}
		if g.output[old] == output {
			return old, nil
		}

		renamed := TypeDefName(shapeName, ResponseMetadataRole)
		if output {
			if other, ok := g.byName[renamed]; ok && g.output[other] {
				return g.canonical(other), nil
			}
			name = renamed
			g.diags.Add(errors.NewRecordRenamed(TypeDefName(shapeName, ""), renamed))
		} else {
			old.Name = renamed
			g.byName[renamed] = old
			g.diags.Add(errors.NewRecordRenamed(TypeDefName(shapeName, ""), renamed))
		}
		g.renames++
	}

	rec := descriptor.NewRecord(name)
	g.byName[name] = rec
	g.output[rec] = output
	g.inProgress[rec] = true
	return nil, rec
}

// Complete marks a claimed record as fully populated.
func (g *RecordRegistry) Complete(rec *descriptor.Record) {
	delete(g.inProgress, rec)
}

func (g *RecordRegistry) canonical(rec *descriptor.Record) descriptor.Descriptor {
	if g.inProgress[rec] {
		return descriptor.NewRecordReference(rec)
	}
	return rec
}

// Lookup returns the record currently registered under name.
func (g *RecordRegistry) Lookup(name string) (*descriptor.Record, bool) {
	rec, ok := g.byName[name]
	if !ok || rec.Name != name {
		return nil, false
	}
	return rec, true
}

// IsOutput reports whether rec was registered in the response role.
func (g *RecordRegistry) IsOutput(rec *descriptor.Record) bool {
	return g.output[rec]
}

// Renames returns the number of role renames performed.
func (g *RecordRegistry) Renames() int {
	return g.renames
}

// Records returns every registered record sorted by name.
func (g *RecordRegistry) Records() []*descriptor.Record {
	seen := make(map[*descriptor.Record]bool, len(g.byName))
	out := make([]*descriptor.Record, 0, len(g.byName))
	for _, rec := range g.byName {
		if seen[rec] {
			continue
		}
		seen[rec] = true
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
