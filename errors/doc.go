// Package errors provides structured error types for the compilation world.
//
// Errors carry a Phase (where in processing the failure occurred) and a Kind
// (what went wrong), plus the file path involved when one exists. Matching
// with errors.Is compares Phase and Kind, so callers can test for a category
// without string inspection:
//
//	if errors.Is(err, &typeseterr.Error{Phase: typeseterr.PhaseLoad, Kind: typeseterr.KindIsDirectory}) {
//	    ...
//	}
//
// File access failures are cached by the world alongside successful reads
// and persist until the file's content fingerprint changes, so constructors
// here must be deterministic for identical inputs.
package errors
