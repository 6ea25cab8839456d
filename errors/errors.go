package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // identity to path resolution
	PhaseLoad    Phase = "load"    // disk/package reads
	PhaseCompile Phase = "compile" // compilation
	PhaseRender  Phase = "render"  // page rendering
	PhaseExport  Phase = "export"  // document serialization
	PhaseFonts   Phase = "fonts"   // font discovery and loading
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAccessDenied  Kind = "access_denied"
	KindIsDirectory   Kind = "is_directory"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindNoDocument    Kind = "no_document"
	KindInvalidInput  Kind = "invalid_input"
	KindPackage       Kind = "package"
	KindSerialization Kind = "serialization"
	KindOther         Kind = "other"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	File   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.File != "" {
		b.WriteString(" at ")
		b.WriteString(e.File)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// NotFound creates a file-not-found error
func NotFound(phase Phase, file string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		File:   file,
		Detail: "file not found",
	}
}

// AccessDenied creates an access-denied error
func AccessDenied(phase Phase, file string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAccessDenied,
		File:   file,
		Detail: "access denied",
	}
}

// IsDirectory creates an error for a read target that is a directory
func IsDirectory(file string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindIsDirectory,
		File:   file,
		Detail: "is a directory",
	}
}

// DecodeFailed creates an invalid UTF-8 error
func DecodeFailed(file string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidUTF8,
		File:   file,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: detail,
	}
}

// NoDocument creates the precondition error for operations that require a
// compiled document
func NoDocument(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNoDocument,
		Detail: "No compiled document. Call compile() first.",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// PackageFailed creates a package resolution error
func PackageFailed(pkg string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindPackage,
		Detail: fmt.Sprintf("resolve package %s", pkg),
		Cause:  cause,
	}
}

// Serialization creates a document serialization error
func Serialization(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseExport,
		Kind:   KindSerialization,
		Detail: detail,
		Cause:  cause,
	}
}

// Load wraps an underlying read failure
func Load(file string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindOther,
		File:  file,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
