// Package snapshot provides a deterministic, serializable view of a compiled
// package. Snapshots are what the compiler writes to disk, caches, stores and
// diffs between runs.
package snapshot

import (
	"sort"

	"github.com/shapec-dev/shapec/internal/compiler/assembler"
	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

// FormatVersion is bumped whenever the snapshot layout changes.
const FormatVersion = "1"

// Class kinds.
const (
	KindClient          = "client"
	KindServiceResource = "service_resource"
	KindResource        = "resource"
	KindCollection      = "collection"
	KindPaginator       = "paginator"
	KindWaiter          = "waiter"
)

// Snapshot is the compiled type model of one service.
type Snapshot struct {
	Version     string       `json:"version"`
	Service     string       `json:"service"`
	ServiceID   string       `json:"service_id,omitempty"`
	APIVersion  string       `json:"api_version,omitempty"`
	SourceHash  string       `json:"source_hash,omitempty"` // cache key of the inputs
	Classes     []Class      `json:"classes"`
	Records     []Record     `json:"records"`
	Literals    []Literal    `json:"literals"`
	Renames     int          `json:"renames"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Class is a generated class and its methods.
type Class struct {
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Methods    []Method    `json:"methods"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Method is one rendered signature.
type Method struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Request   string `json:"request,omitempty"`
}

// Attribute is a resource attribute.
type Attribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record is an emitted record type.
type Record struct {
	Name       string  `json:"name"`
	Fields     []Field `json:"fields"`
	Output     bool    `json:"output"`
	ForwardRef bool    `json:"forward_ref"`
}

// Field is a record field.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Literal is an emitted literal type.
type Literal struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Diagnostic is a compiler diagnostic recorded with the snapshot.
type Diagnostic struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// FromPackage builds the snapshot of pkg. Classes are ordered by kind as
// they were built, then by name; methods and records by name.
func FromPackage(pkg *assembler.Package, diags errors.ErrorList) *Snapshot {
	s := &Snapshot{
		Version:    FormatVersion,
		Service:    pkg.Service,
		ServiceID:  pkg.Metadata.ServiceID,
		APIVersion: pkg.Metadata.APIVersion,
		Renames:    pkg.Renames,
		Classes:    []Class{},
		Records:    make([]Record, 0, len(pkg.Records)),
		Literals:   make([]Literal, 0, len(pkg.Literals)),
	}

	if pkg.Client != nil {
		s.Classes = append(s.Classes, class(pkg.Client.Name, KindClient, pkg.Client.Methods))
	}
	if sr := pkg.ServiceResource; sr != nil {
		s.Classes = append(s.Classes, class(sr.Name, KindServiceResource, sr.Methods))
		s.Classes = append(s.Classes, collections(sr.Collections)...)
		for _, r := range sr.SubResources {
			c := class(r.Name, KindResource, r.Methods)
			for _, a := range r.Attributes {
				c.Attributes = append(c.Attributes, Attribute{Name: a.Name, Type: a.Type.String()})
			}
			s.Classes = append(s.Classes, c)
			s.Classes = append(s.Classes, collections(r.Collections)...)
		}
	}
	for _, w := range pkg.Waiters {
		s.Classes = append(s.Classes, class(w.Name, KindWaiter, builder.MethodMap{w.Wait.Name: w.Wait}))
	}
	for _, p := range pkg.Paginators {
		s.Classes = append(s.Classes, class(p.Name, KindPaginator, builder.MethodMap{p.Paginate.Name: p.Paginate}))
	}

	for _, r := range pkg.Records {
		rec := Record{Name: r.Name, Output: r.IsOutput(), ForwardRef: r.ForwardRef, Fields: make([]Field, 0, len(r.Fields))}
		for _, f := range r.Fields {
			rec.Fields = append(rec.Fields, Field{Name: f.Name, Type: f.Type.String(), Required: f.Required})
		}
		s.Records = append(s.Records, rec)
	}
	for _, e := range pkg.Literals {
		s.Literals = append(s.Literals, Literal{Name: e.Name, Options: append([]string(nil), e.Options...)})
	}

	for _, d := range diags {
		s.Diagnostics = append(s.Diagnostics, Diagnostic{
			Code:     string(d.Code),
			Severity: string(d.Severity),
			Message:  d.Message,
			Location: d.Location.String(),
		})
	}
	return s
}

func class(name, kind string, methods builder.MethodMap) Class {
	c := Class{Name: name, Kind: kind, Methods: make([]Method, 0, len(methods))}
	for _, m := range methods.Sorted() {
		method := Method{Name: m.Name, Signature: m.Signature()}
		if m.Request != nil {
			method.Request = m.Request.Name
		}
		c.Methods = append(c.Methods, method)
	}
	return c
}

func collections(cs []*builder.Collection) []Class {
	out := make([]Class, 0, len(cs))
	for _, c := range cs {
		out = append(out, class(c.Name, KindCollection, c.Methods))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Class returns the class called name.
func (s *Snapshot) Class(name string) (*Class, bool) {
	for i := range s.Classes {
		if s.Classes[i].Name == name {
			return &s.Classes[i], true
		}
	}
	return nil, false
}

// Record returns the record called name.
func (s *Snapshot) Record(name string) (*Record, bool) {
	i := sort.Search(len(s.Records), func(i int) bool { return s.Records[i].Name >= name })
	if i < len(s.Records) && s.Records[i].Name == name {
		return &s.Records[i], true
	}
	return nil, false
}

// MethodCount returns the number of methods across all classes.
func (s *Snapshot) MethodCount() int {
	n := 0
	for _, c := range s.Classes {
		n += len(c.Methods)
	}
	return n
}

// Signatures maps "Class.method" to the rendered signature.
func (s *Snapshot) Signatures() map[string]string {
	out := make(map[string]string, s.MethodCount())
	for _, c := range s.Classes {
		for _, m := range c.Methods {
			out[c.Name+"."+m.Name] = m.Signature
		}
	}
	return out
}
