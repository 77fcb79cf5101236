package descriptor

import (
	"slices"
	"sort"
)

// Children returns the direct children of d. The children of a record are
// its field types; references have no children.
func Children(d Descriptor) []Descriptor {
	switch v := d.(type) {
	case *Sequence:
		return []Descriptor{v.Element}
	case *Iterator:
		return []Descriptor{v.Element}
	case *Mapping:
		return []Descriptor{v.Key, v.Value}
	case *Union:
		return v.Members
	case *Record:
		out := make([]Descriptor, len(v.Fields))
		for i, f := range v.Fields {
			out[i] = f.Type
		}
		return out
	default:
		return nil
	}
}

// Flatten returns d followed by every descriptor nested in its containers.
// Records and references are included but not entered.
func Flatten(d Descriptor) []Descriptor {
	if d == nil {
		return nil
	}
	out := []Descriptor{d}
	switch d.Kind() {
	case KindRecord, KindReference:
		return out
	}
	for _, child := range Children(d) {
		out = append(out, Flatten(child)...)
	}
	return out
}

// Walk visits d and its descendants depth-first. Each record is entered at
// most once, so cyclic graphs terminate. Returning false from visit skips the
// children of the visited descriptor.
func Walk(d Descriptor, visit func(Descriptor) bool) {
	walk(d, visit, make(map[*Record]bool))
}

func walk(d Descriptor, visit func(Descriptor) bool, seen map[*Record]bool) {
	if d == nil {
		return
	}
	if r, ok := d.(*Record); ok {
		if seen[r] {
			return
		}
		seen[r] = true
	}
	if !visit(d) {
		return
	}
	if ref, ok := d.(*Reference); ok && ref.Target() != nil {
		walk(ref.Target(), visit, seen)
		return
	}
	for _, child := range Children(d) {
		walk(child, visit, seen)
	}
}

// ChildRecords returns the records directly nested in r's fields, sorted by
// name. Containers are searched but other records are not entered; record
// references contribute their target.
func ChildRecords(r *Record) []*Record {
	found := make(map[*Record]bool)
	var out []*Record
	for _, f := range r.Fields {
		for _, d := range Flatten(f.Type) {
			var child *Record
			switch v := d.(type) {
			case *Record:
				child = v
			case *Reference:
				child = v.Target()
			}
			if child == nil || child == r || found[child] {
				continue
			}
			found[child] = true
			out = append(out, child)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Enums returns every enum reachable from d, entering records transitively,
// in first-seen order.
func Enums(d Descriptor) []*Enum {
	var out []*Enum
	Walk(d, func(node Descriptor) bool {
		if e, ok := node.(*Enum); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Equal reports whether a and b are structurally equal. Records are compared
// by name and by their field list; nested records are compared by name only.
func Equal(a, b Descriptor) bool {
	return equal(a, b, true)
}

func equal(a, b Descriptor, deep bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Primitive:
		return x.Name == b.(*Primitive).Name
	case *Enum:
		y := b.(*Enum)
		return x.Name == y.Name && slices.Equal(x.Options, y.Options)
	case *Sequence:
		return equal(x.Element, b.(*Sequence).Element, deep)
	case *Iterator:
		return equal(x.Element, b.(*Iterator).Element, deep)
	case *Mapping:
		y := b.(*Mapping)
		return equal(x.Key, y.Key, deep) && equal(x.Value, y.Value, deep)
	case *Union:
		y := b.(*Union)
		if len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if !equal(x.Members[i], y.Members[i], deep) {
				return false
			}
		}
		return true
	case *Reference:
		y := b.(*Reference)
		return x.Name() == y.Name() && x.IsResource() == y.IsResource()
	case *Record:
		y := b.(*Record)
		if x.Name != y.Name {
			return false
		}
		if !deep || x == y {
			return true
		}
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for i, f := range x.Fields {
			g := y.Fields[i]
			if f.Name != g.Name || f.Required != g.Required || !equal(f.Type, g.Type, false) {
				return false
			}
		}
		return true
	}
	return false
}
