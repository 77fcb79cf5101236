package snapshot

import (
	"encoding/json"
	"sort"
	"strings"
)

// ChangeKind classifies an entry of a Diff.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Entity kinds compared by Diff.
const (
	EntityRecord  = "record"
	EntityLiteral = "literal"
	EntityMethod  = "method"
)

// Change is one difference between two snapshots.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Entity string     `json:"entity"`
	Name   string     `json:"name"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after,omitempty"`
}

// Diff compares records, literals and methods of two snapshots of the same
// service. Changes are sorted by entity, then name. A nil old snapshot
// reports everything in s as added.
func Diff(old, s *Snapshot) []Change {
	if old == nil {
		old = &Snapshot{}
	}
	if s == nil {
		s = &Snapshot{}
	}

	var changes []Change
	changes = append(changes, compare(EntityLiteral, literalIndex(old), literalIndex(s))...)
	changes = append(changes, compare(EntityMethod, old.Signatures(), s.Signatures())...)
	changes = append(changes, compare(EntityRecord, recordIndex(old), recordIndex(s))...)

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Entity != changes[j].Entity {
			return changes[i].Entity < changes[j].Entity
		}
		return changes[i].Name < changes[j].Name
	})
	return changes
}

func compare(entity string, before, after map[string]string) []Change {
	var out []Change
	for name, b := range before {
		a, ok := after[name]
		switch {
		case !ok:
			out = append(out, Change{Kind: Removed, Entity: entity, Name: name, Before: b})
		case a != b:
			out = append(out, Change{Kind: Changed, Entity: entity, Name: name, Before: b, After: a})
		}
	}
	for name, a := range after {
		if _, ok := before[name]; !ok {
			out = append(out, Change{Kind: Added, Entity: entity, Name: name, After: a})
		}
	}
	return out
}

func literalIndex(s *Snapshot) map[string]string {
	out := make(map[string]string, len(s.Literals))
	for _, l := range s.Literals {
		out[l.Name] = strings.Join(l.Options, "|")
	}
	return out
}

func recordIndex(s *Snapshot) map[string]string {
	out := make(map[string]string, len(s.Records))
	for _, r := range s.Records {
		out[r.Name] = r.describe()
	}
	return out
}

// describe renders the record as "{A: string, B?: integer}".
func (r Record) describe() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		opt := ""
		if !f.Required {
			opt = "?"
		}
		parts[i] = f.Name + opt + ": " + f.Type
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Summary counts changes by kind.
type Summary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Summarize counts changes by kind.
func Summarize(changes []Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Kind {
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		case Changed:
			s.Changed++
		}
	}
	return s
}

// MarshalChanges renders changes as JSON, never null.
func MarshalChanges(changes []Change) ([]byte, error) {
	if changes == nil {
		changes = []Change{}
	}
	return json.Marshal(changes)
}
