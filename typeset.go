package typeset

import (
	"fmt"
	"strings"
)

// PackageSpec identifies a package by namespace, name and version,
// e.g. @preview/cetz:0.2.0.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   string
}

func (s PackageSpec) String() string {
	return fmt.Sprintf("@%s/%s:%s", s.Namespace, s.Name, s.Version)
}

// FileID identifies a file within a compilation world. It is either a
// project-relative path, a path inside a resolved package, or the detached
// main pseudo-file bound to in-memory markup. FileID is comparable and
// usable as a map key.
type FileID struct {
	pkg      PackageSpec
	hasPkg   bool
	path     string
	detached bool
}

// NewFileID creates an identity for a project-relative path.
func NewFileID(path string) FileID {
	return FileID{path: normalizePath(path)}
}

// NewPackageFileID creates an identity for a path inside a package.
func NewPackageFileID(spec PackageSpec, path string) FileID {
	return FileID{pkg: spec, hasPkg: true, path: normalizePath(path)}
}

// NewDetachedFileID creates an identity that never resolves to disk.
// The world uses one of these for its main markup pseudo-file.
func NewDetachedFileID(path string) FileID {
	return FileID{path: normalizePath(path), detached: true}
}

// Package returns the package spec, if this identity lives in a package.
func (id FileID) Package() (PackageSpec, bool) {
	return id.pkg, id.hasPkg
}

// Path returns the rootless virtual path, e.g. "chapters/one.typ".
func (id FileID) Path() string {
	return id.path
}

// Detached reports whether this identity is unresolvable on disk.
func (id FileID) Detached() bool {
	return id.detached
}

func (id FileID) String() string {
	if id.hasPkg {
		return id.pkg.String() + "/" + id.path
	}
	return id.path
}

func normalizePath(path string) string {
	return strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
}

// Source is a parsed source file handed to the compiler. Parse is performed
// by the compiler collaborator; the world only threads previous parses back
// in so the parser can reuse them.
type Source struct {
	ID   FileID
	Text string

	// Parsed is an opaque compiler artifact carried alongside the text.
	// The world preserves it across cache hits and passes it back as the
	// previous value on reparse.
	Parsed any
}

// Library is the compiler's standard library configuration. Inputs become
// available to documents as a string-keyed dictionary.
type Library struct {
	Inputs map[string]string
}

// Date is a calendar date as exposed by Provider.Today.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Provider is the world contract a compiler pulls from: sources, raw bytes,
// fonts, library configuration and the current date. All methods must be
// consistent for the duration of one compile.
type Provider interface {
	// Library returns the current library configuration.
	Library() *Library

	// Main returns the identity of the main source.
	Main() FileID

	// Source returns the parsed source for an identity.
	Source(id FileID) (Source, error)

	// File returns the raw bytes for an identity.
	File(id FileID) ([]byte, error)

	// Font returns the font at a book index, loading it lazily.
	// It returns false if the index is unknown or the face fails to load.
	Font(index int) ([]byte, bool)

	// FontFamilies returns the family names known to the font book.
	FontFamilies() []string

	// Today returns the current calendar date, optionally shifted by a
	// whole-hour UTC offset. A nil offset means local time. The date is
	// derived from a single per-compile snapshot, so repeated queries
	// within one compile agree.
	Today(offsetHours *int) (Date, bool)
}

// Document is a successfully compiled, paginated document. It is immutable
// once produced; everything beyond the page count is opaque to this module.
type Document interface {
	PageCount() int

	// Page returns the laid-out page at a zero-based index. The returned
	// value is only meaningful to the renderer and exporter collaborators.
	Page(index int) any
}

// Compiler is the layout/typesetting engine. A compile either produces a
// document plus warnings or a non-empty list of errors; both carry raw spans
// that the diag package resolves to line/column positions.
type Compiler interface {
	Compile(p Provider) (Document, []RawDiagnostic, []RawDiagnostic)
}

// HTMLRenderer compiles and serializes the world's main source to HTML.
// This is a distinct compilation mode, not a view of a paged document.
type HTMLRenderer interface {
	RenderHTML(p Provider) (string, []RawDiagnostic, []RawDiagnostic)
}

// PageRenderer renders one laid-out page to a vector image.
type PageRenderer interface {
	RenderSVG(page any) (string, error)
}

// PDFExporter serializes a document to PDF bytes. A nil error with non-empty
// diagnostics is not allowed; failures return the diagnostics that caused
// them.
type PDFExporter interface {
	ExportPDF(doc Document, opts PDFConfig) ([]byte, []RawDiagnostic)
}

// PDFConfig is the validated, collaborator-facing form of the session's
// export options.
type PDFConfig struct {
	// Ident overrides the document identifier when non-empty.
	Ident string

	// Standards is the validated set of target standards.
	Standards []PDFStandard

	// Pages restricts exported pages; nil exports everything.
	Pages []PageRange
}

// PDFStandard enumerates the supported PDF target standards.
type PDFStandard int

const (
	PDF17 PDFStandard = iota // PDF 1.7
	PDFA2B                   // PDF/A-2b
	PDFA3B                   // PDF/A-3b
)

func (s PDFStandard) String() string {
	switch s {
	case PDF17:
		return "pdf-1.7"
	case PDFA2B:
		return "pdf-a-2b"
	case PDFA3B:
		return "pdf-a-3b"
	default:
		return fmt.Sprintf("pdf-standard(%d)", int(s))
	}
}

// PageRange is an inclusive 1-based page range.
type PageRange struct {
	Start int
	End   int
}

// PackageResolver maps a package spec to a local directory, downloading and
// extracting the package first if needed. Resolution is synchronous and
// blocking; no retry policy is imposed at this layer.
type PackageResolver interface {
	Resolve(spec PackageSpec) (string, error)
}

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// RawSpan is a compiler-produced span: a byte range inside an identified
// source, not yet resolved to line/column. A span without a byte range has
// HasRange false.
type RawSpan struct {
	File     FileID
	Start    int
	End      int
	HasRange bool
}

// RawTracePoint is one step of a diagnostic's call trace.
type RawTracePoint struct {
	Span    RawSpan
	Message string
}

// RawDiagnostic is a diagnostic as emitted by the compiler, before position
// resolution.
type RawDiagnostic struct {
	Severity Severity
	Message  string
	Span     RawSpan
	Trace    []RawTracePoint
	Hints    []string
}
