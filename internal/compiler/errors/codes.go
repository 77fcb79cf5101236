package errors

import (
	"fmt"
	"strings"
)

// Schema error codes (SCH001-099)
const (
	// ErrMissingSection indicates an optional document section (paginators,
	// waiters, resources) is absent for the service.
	ErrMissingSection ErrorCode = "SCH001"
	// ErrUnknownShapeKind indicates a shape matches none of the recognized kinds.
	ErrUnknownShapeKind ErrorCode = "SCH002"
	// ErrUnknownOperation indicates a document references an undefined operation.
	ErrUnknownOperation ErrorCode = "SCH003"
	// ErrInvalidDocument indicates a service document could not be decoded.
	ErrInvalidDocument ErrorCode = "SCH004"
	// ErrUnknownShape indicates a reference to an undefined shape name.
	ErrUnknownShape ErrorCode = "SCH005"
)

// Override error codes (OVR100-199)
const (
	// ErrInvalidOverride indicates an override entry could not be parsed.
	ErrInvalidOverride ErrorCode = "OVR101"
	// ErrOverrideApplied records that an override replaced a parsed type.
	ErrOverrideApplied ErrorCode = "OVR102"
	// ErrSignatureRemoved records that a method was dropped by override.
	ErrSignatureRemoved ErrorCode = "OVR103"
)

// Naming error codes (NAM200-299)
const (
	// ErrAmbiguousEnum indicates two same-named enumerations with different options.
	ErrAmbiguousEnum ErrorCode = "NAM201"
	// ErrNameCollision indicates two distinct definitions share one emitted name.
	ErrNameCollision ErrorCode = "NAM202"
	// ErrReservedName indicates an emitted name is a reserved word.
	ErrReservedName ErrorCode = "NAM203"
	// ErrRecordRenamed records a request/response role rename.
	ErrRecordRenamed ErrorCode = "NAM204"
)

// NewMissingSection creates a SCH001 warning
func NewMissingSection(section, name string) *CompilerError {
	message := fmt.Sprintf("Document section %q not found", section)
	if name != "" {
		message = fmt.Sprintf("%s %q not found", section, name)
	}
	return newError(
		ErrMissingSection,
		"missing_schema_section",
		CategorySchema,
		SeverityWarning,
		message,
		Location{Member: name},
	).WithSuggestion("The capability is skipped for this service")
}

// NewUnknownShapeKind creates a SCH002 warning
func NewUnknownShapeKind(loc Location, shapeName, kind string) *CompilerError {
	return newError(
		ErrUnknownShapeKind,
		"unknown_shape_kind",
		CategorySchema,
		SeverityWarning,
		fmt.Sprintf("Unknown shape %s of kind %q, using any", shapeName, kind),
		loc,
	).WithActual(kind)
}

// NewUnknownOperation creates a SCH003 error
func NewUnknownOperation(loc Location, operation string) *CompilerError {
	return newError(
		ErrUnknownOperation,
		"unknown_operation",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Unknown operation %s", operation),
		loc,
	).WithActual(operation)
}

// NewInvalidDocument creates a SCH004 error
func NewInvalidDocument(document string, cause error) *CompilerError {
	return newError(
		ErrInvalidDocument,
		"invalid_document",
		CategorySchema,
		SeverityError,
		fmt.Sprintf("Cannot decode %s: %v", document, cause),
		Location{Member: document},
	)
}

// NewUnknownShape creates a SCH005 warning
func NewUnknownShape(loc Location, shapeName string) *CompilerError {
	return newError(
		ErrUnknownShape,
		"unknown_shape",
		CategorySchema,
		SeverityWarning,
		fmt.Sprintf("Shape %s is referenced but not defined, using any", shapeName),
		loc,
	)
}

// NewInvalidOverride creates an OVR101 error
func NewInvalidOverride(loc Location, expr string, cause error) *CompilerError {
	return newError(
		ErrInvalidOverride,
		"invalid_override",
		CategoryOverride,
		SeverityError,
		fmt.Sprintf("Invalid override expression %q: %v", expr, cause),
		loc,
	).WithExpected("string|integer|float|boolean|bytes|timestamp|any|none|stream|list<T>|map<K,V>|union<...>|ref<Name>|literal<Name:a|b>|remove")
}

// NewOverrideApplied creates an OVR102 info
func NewOverrideApplied(loc Location, replacement string) *CompilerError {
	return newError(
		ErrOverrideApplied,
		"override_applied",
		CategoryOverride,
		SeverityInfo,
		fmt.Sprintf("Override applied: %s", replacement),
		loc,
	).WithActual(replacement)
}

// NewSignatureRemoved creates an OVR103 info
func NewSignatureRemoved(loc Location) *CompilerError {
	return newError(
		ErrSignatureRemoved,
		"signature_removed",
		CategoryOverride,
		SeverityInfo,
		fmt.Sprintf("Signature %s removed by override", loc.String()),
		loc,
	)
}

// NewAmbiguousEnum creates a NAM201 error
func NewAmbiguousEnum(name string, first, second []string) *CompilerError {
	return newError(
		ErrAmbiguousEnum,
		"ambiguous_enumeration",
		CategoryNaming,
		SeverityError,
		fmt.Sprintf("Enumeration %s is defined twice with different options", name),
		Location{Member: name},
	).WithExpected(strings.Join(first, ", ")).
		WithActual(strings.Join(second, ", ")).
		WithSuggestion("Add a literal override for this name to pin the option list")
}

// NewNameCollision creates a NAM202 error
func NewNameCollision(name, firstKind, secondKind string) *CompilerError {
	return newError(
		ErrNameCollision,
		"name_collision",
		CategoryNaming,
		SeverityError,
		fmt.Sprintf("Duplicate name %s", name),
		Location{Member: name},
	).WithExpected(firstKind).WithActual(secondKind)
}

// NewReservedName creates a NAM203 error
func NewReservedName(name string) *CompilerError {
	return newError(
		ErrReservedName,
		"reserved_name",
		CategoryNaming,
		SeverityError,
		fmt.Sprintf("%s is a reserved keyword", name),
		Location{Member: name},
	)
}

// NewRecordRenamed creates a NAM204 info
func NewRecordRenamed(from, to string) *CompilerError {
	return newError(
		ErrRecordRenamed,
		"record_renamed",
		CategoryNaming,
		SeverityInfo,
		fmt.Sprintf("Marking %s as %s", from, to),
		Location{Member: from},
	).WithExpected(from).WithActual(to)
}
