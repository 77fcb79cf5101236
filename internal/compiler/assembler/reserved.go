package assembler

// DefaultReservedWords are identifiers generated names must not take: the
// keywords of the emitted stub language and the names its typing prelude
// imports.
var DefaultReservedWords = []string{
	// keywords
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",

	// prelude
	"Any", "Dict", "IO", "Iterator", "List", "Literal", "Mapping", "Optional",
	"Sequence", "Type", "TypedDict", "Union", "StreamingBody", "datetime",
	"bool", "bytes", "dict", "float", "int", "list", "object", "str", "type",
}

// ReservedSet builds a lookup set from the defaults plus extra words.
func ReservedSet(extra ...string) map[string]bool {
	set := make(map[string]bool, len(DefaultReservedWords)+len(extra))
	for _, w := range DefaultReservedWords {
		set[w] = true
	}
	for _, w := range extra {
		set[w] = true
	}
	return set
}

// ReservedWords returns the defaults followed by extra words.
func ReservedWords(extra ...string) []string {
	out := make([]string, 0, len(DefaultReservedWords)+len(extra))
	out = append(out, DefaultReservedWords...)
	return append(out, extra...)
}
