// Package strings holds the identifier case conversions shared by the compiler
// and the CLI.
package strings

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	firstCapRegex   = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	numberCapRegex  = regexp.MustCompile(`([a-z])([0-9]+)`)
	endCapRegex     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	pluralAcronymRe = regexp.MustCompile(`[A-Z]{3,}s$`)
)

// ToSnakeCase converts an operation or waiter name to the snake_case method
// name used by the SDK (DescribeDBInstances -> describe_db_instances).
// Names that already contain an underscore are returned unchanged.
func ToSnakeCase(s string) string {
	if strings.Contains(s, "_") {
		return s
	}

	// ListAMIs -> list_amis, not list_am_is
	if m := pluralAcronymRe.FindString(s); m != "" {
		s = s[:len(s)-len(m)] + "_" + strings.ToLower(m)
	}

	s = firstCapRegex.ReplaceAllString(s, "${1}_${2}")
	s = numberCapRegex.ReplaceAllString(s, "${1}_${2}")
	s = endCapRegex.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// ToPascalCase upper-cases the first rune and drops underscores, capitalizing
// the rune after each (instance_running -> InstanceRunning).
func ToPascalCase(s string) string {
	var result strings.Builder
	upperNext := true
	for _, r := range s {
		if r == '_' || r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			result.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// IsCapitalized reports whether the first rune is upper case. Capitalized
// method names denote constructor-like sub-resource accessors.
func IsCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
