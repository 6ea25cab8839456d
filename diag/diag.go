package diag

import (
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/errors"
)

// Span is a byte range inside a source, optionally resolved to a 1-based
// line and column. Line and Column are 0 when the position could not be
// resolved, which keeps "unknown" distinguishable from position (1,1).
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// TraceItem is one step of a diagnostic's call trace.
type TraceItem struct {
	Span    *Span
	Message string
}

// Diagnostic is a position-resolved compiler diagnostic as surfaced to the
// host. Values are immutable copies taken out of the world at construction
// time; they hold no references back into it.
type Diagnostic struct {
	Severity typeset.Severity
	Message  string
	Span     *Span
	Trace    []TraceItem
	Hints    []string
}

// Mapper resolves raw compiler spans to line/column positions by locating
// byte offsets inside the exact text the compiler parsed. It must be backed
// by the same provider the compile ran against, so that overlay and cache
// lookups agree with what the compiler saw.
type Mapper struct {
	provider typeset.Provider
}

func NewMapper(p typeset.Provider) *Mapper {
	return &Mapper{provider: p}
}

// Map converts one raw diagnostic, resolving positions where possible.
func (m *Mapper) Map(raw typeset.RawDiagnostic) Diagnostic {
	d := Diagnostic{
		Severity: raw.Severity,
		Message:  raw.Message,
		Span:     m.span(raw.Span),
		Hints:    copyStrings(raw.Hints),
	}
	for _, tp := range raw.Trace {
		d.Trace = append(d.Trace, TraceItem{
			Span:    m.span(tp.Span),
			Message: tp.Message,
		})
	}
	return d
}

// MapAll converts a list of raw diagnostics, preserving order.
func (m *Mapper) MapAll(raws []typeset.RawDiagnostic) []Diagnostic {
	if raws == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(raws))
	for _, raw := range raws {
		out = append(out, m.Map(raw))
	}
	return out
}

func (m *Mapper) span(raw typeset.RawSpan) *Span {
	if !raw.HasRange {
		return nil
	}
	s := &Span{Start: raw.Start, End: raw.End}
	if src, err := m.provider.Source(raw.File); err == nil {
		s.Line, s.Column = position(src.Text, raw.Start)
	}
	return s
}

// position computes the 1-based line and rune column of a byte offset.
// It returns (0, 0) for offsets outside the text.
func position(text string, offset int) (line, column int) {
	if offset < 0 || offset > len(text) {
		return 0, 0
	}
	before := text[:offset]
	line = 1 + strings.Count(before, "\n")
	lineStart := strings.LastIndexByte(before, '\n') + 1
	column = 1 + utf8.RuneCountInString(before[lineStart:])
	return line, column
}

// Detached converts a raw diagnostic without resolving positions. Used for
// diagnostics emitted after the per-compile world context is gone, such as
// export-time serialization failures: byte ranges are preserved but line
// and column stay unresolved.
func Detached(raw typeset.RawDiagnostic) Diagnostic {
	d := Diagnostic{
		Severity: raw.Severity,
		Message:  raw.Message,
		Span:     detachedSpan(raw.Span),
		Hints:    copyStrings(raw.Hints),
	}
	for _, tp := range raw.Trace {
		d.Trace = append(d.Trace, TraceItem{
			Span:    detachedSpan(tp.Span),
			Message: tp.Message,
		})
	}
	return d
}

// DetachedAll converts a list of raw diagnostics without resolving
// positions, preserving order.
func DetachedAll(raws []typeset.RawDiagnostic) []Diagnostic {
	if raws == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Detached(raw))
	}
	return out
}

func detachedSpan(raw typeset.RawSpan) *Span {
	if !raw.HasRange {
		return nil
	}
	return &Span{Start: raw.Start, End: raw.End}
}

// FromError synthesizes a single spanless error diagnostic from an error.
// Precondition failures at the session boundary surface this way. For
// structured errors the host sees the detail text alone; the phase/kind
// prefix is a debugging aid, not a user-facing message.
func FromError(err error) []Diagnostic {
	message := err.Error()
	var structured *errors.Error
	if stderrors.As(err, &structured) && structured.Detail != "" {
		message = structured.Detail
	}
	return []Diagnostic{{
		Severity: typeset.SeverityError,
		Message:  message,
	}}
}

// Message synthesizes a single spanless error diagnostic from a message.
func Message(msg string) []Diagnostic {
	return []Diagnostic{{
		Severity: typeset.SeverityError,
		Message:  msg,
	}}
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
