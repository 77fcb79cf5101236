package assembler

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/shapec-dev/shapec/internal/compiler/builder"
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// Assembler builds and validates packages.
type Assembler struct {
	diags    *errors.Diagnostics
	reserved map[string]bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithReservedWords adds words to the default reserved list.
func WithReservedWords(words []string) Option {
	return func(a *Assembler) {
		for _, w := range words {
			a.reserved[w] = true
		}
	}
}

// New creates an assembler reporting to diags.
func New(diags *errors.Diagnostics, opts ...Option) *Assembler {
	a := &Assembler{diags: diags, reserved: ReservedSet()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build drives b over every capability of the service (client, service
// resource, waiters and paginators, in that order) and assembles the
// result. Missing optional documents are reported as warnings.
func (a *Assembler) Build(b *builder.Builder) (*Package, error) {
	model := b.Model()
	pkg := &Package{
		Service:  model.Name,
		Metadata: model.Metadata,
		Client:   b.Client(),
	}

	sr, err := b.ServiceResource()
	switch {
	case err == nil:
		pkg.ServiceResource = sr
	case stderrors.Is(err, schema.ErrSectionNotFound):
		a.diags.Add(errors.NewMissingSection(schema.ResourcesFile, ""))
	default:
		return nil, err
	}

	if !model.HasWaiters() {
		a.diags.Add(errors.NewMissingSection(schema.WaitersFile, ""))
	}
	pkg.Waiters = b.Waiters()

	if !model.HasPaginators() {
		a.diags.Add(errors.NewMissingSection(schema.PaginatorsFile, ""))
	}
	pkg.Paginators = b.Paginators()

	pkg.Renames = b.Resolver().Records().Renames()
	if err := a.Assemble(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Assemble fills the literal and record sets of pkg and validates its names.
// Any error-severity diagnostic, including ones raised earlier in the
// compilation, fails the package.
func (a *Assembler) Assemble(pkg *Package) error {
	types := pkg.Types()
	pkg.Literals = a.ExtractLiterals(types)
	pkg.Records = a.ExtractRecords(types)
	a.Validate(pkg)
	return a.diags.Err()
}

// ExtractLiterals collects the named enumerations reachable from types,
// sorted by name. Two enumerations sharing a name must have the same option
// set; single-option enumerations are checked but not listed.
func (a *Assembler) ExtractLiterals(types []descriptor.Descriptor) []*descriptor.Enum {
	byName := make(map[string]*descriptor.Enum)
	listed := make(map[string]bool)
	reported := make(map[string]bool)
	var out []*descriptor.Enum

	for _, t := range types {
		for _, e := range descriptor.Enums(t) {
			existing, ok := byName[e.Name]
			if !ok {
				byName[e.Name] = e
				existing = e
			}
			if !existing.SameOptions(e) {
				key := e.Name + "=" + strings.Join(e.Options, ",")
				if !reported[key] {
					reported[key] = true
					a.diags.Add(errors.NewAmbiguousEnum(e.Name, existing.Options, e.Options))
				}
				continue
			}
			if !e.Inline() && !listed[e.Name] {
				listed[e.Name] = true
				out = append(out, e)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExtractRecords collects the records referenced by types, then walks their
// fields for nested records not yet seen. Records found by the second pass
// are marked ForwardRef. The result is sorted by name.
func (a *Assembler) ExtractRecords(types []descriptor.Descriptor) []*descriptor.Record {
	byName := make(map[string]*descriptor.Record)
	reported := make(map[string]bool)

	add := func(rec *descriptor.Record) bool {
		existing, ok := byName[rec.Name]
		if !ok {
			byName[rec.Name] = rec
			return true
		}
		if existing != rec && !descriptor.Equal(existing, rec) && !reported[rec.Name] {
			reported[rec.Name] = true
			a.diags.Add(errors.NewNameCollision(rec.Name, "record", "record"))
		}
		return false
	}

	var found []*descriptor.Record
	for _, t := range types {
		for _, d := range descriptor.Flatten(t) {
			if rec := recordOf(d); rec != nil && add(rec) {
				found = append(found, rec)
			}
		}
	}
	sortRecords(found)

	stack := append([]*descriptor.Record(nil), found...)
	for len(stack) > 0 {
		rec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range descriptor.ChildRecords(rec) {
			if add(child) {
				child.ForwardRef = true
				found = append(found, child)
				stack = append(stack, child)
			}
		}
	}

	sortRecords(found)
	return found
}

func recordOf(d descriptor.Descriptor) *descriptor.Record {
	switch v := d.(type) {
	case *descriptor.Record:
		return v
	case *descriptor.Reference:
		return v.Target()
	}
	return nil
}

func sortRecords(recs []*descriptor.Record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
}

// Validate checks every emitted name against the reserved list and for
// duplicates across records, literals, waiters, paginators and resource
// classes.
func (a *Assembler) Validate(pkg *Package) {
	type entry struct{ name, kind string }
	var names []entry
	for _, r := range pkg.Records {
		names = append(names, entry{r.Name, "record"})
	}
	for _, e := range pkg.Literals {
		names = append(names, entry{e.Name, "literal"})
	}
	for _, w := range pkg.Waiters {
		names = append(names, entry{w.Name, "waiter"})
	}
	for _, p := range pkg.Paginators {
		names = append(names, entry{p.Name, "paginator"})
	}
	if pkg.ServiceResource != nil {
		for _, name := range pkg.ServiceResource.ClassNames() {
			names = append(names, entry{name, "resource"})
		}
	}

	seen := make(map[string]string, len(names))
	for _, e := range names {
		if a.reserved[e.name] {
			a.diags.Add(errors.NewReservedName(e.name))
		}
		if kind, ok := seen[e.name]; ok {
			a.diags.Add(errors.NewNameCollision(e.name, kind, e.kind))
			continue
		}
		seen[e.name] = e.kind
	}
}
