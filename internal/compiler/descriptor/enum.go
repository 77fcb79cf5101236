package descriptor

import (
	"sort"
	"strings"
)

// anonymousEnumName is the placeholder name some services give to inline
// string enumerations. Such enums are renamed after their options.
const anonymousEnumName = "__stringType"

// Enum is a named set of string literals.
type Enum struct {
	Name    string
	Options []string
}

// NewEnum creates an enumeration. Duplicate options are dropped while
// declaration order is preserved.
func NewEnum(name string, options []string) *Enum {
	seen := make(map[string]bool, len(options))
	unique := make([]string, 0, len(options))
	for _, opt := range options {
		if seen[opt] {
			continue
		}
		seen[opt] = true
		unique = append(unique, opt)
	}

	e := &Enum{Name: name, Options: unique}
	if name == anonymousEnumName {
		e.Name = nameFromOptions(unique)
	}
	return e
}

func nameFromOptions(options []string) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(opt[:1])+opt[1:])
	}
	sort.Strings(parts)
	return strings.Join(parts, "") + "Type"
}

// Inline reports whether the enum has a single option and can be rendered
// in place instead of by name.
func (e *Enum) Inline() bool {
	return len(e.Options) == 1
}

// SameOptions reports whether both enums accept the same literals,
// regardless of order.
func (e *Enum) SameOptions(other *Enum) bool {
	if len(e.Options) != len(other.Options) {
		return false
	}
	set := make(map[string]bool, len(e.Options))
	for _, opt := range e.Options {
		set[opt] = true
	}
	for _, opt := range other.Options {
		if !set[opt] {
			return false
		}
	}
	return true
}

// SortedOptions returns a sorted copy of the options.
func (e *Enum) SortedOptions() []string {
	out := append([]string(nil), e.Options...)
	sort.Strings(out)
	return out
}

func (*Enum) Kind() Kind { return KindEnum }
func (e *Enum) String() string {
	return "literal<" + e.Name + ":" + strings.Join(e.Options, "|") + ">"
}
func (*Enum) sealed() {}
