// Package session turns one-shot compiles into a stateful
// edit/compile/render/export loop.
//
// A Context owns one compilation world and at most one compiled document.
// Host mutations (markup, virtual files, inputs) act on the world; Compile
// runs the external compiler against it and stores the produced document;
// RenderSVG and ExportPDF read that stored document. Markup and
// virtual-file mutations clear the stored document, so render and export
// always reflect the world state as of the most recent compile.
//
// All failures surface as ordered diag.Diagnostic lists: compiler
// diagnostics keep their source order with positions resolved against the
// live world, export-time serialization failures keep byte ranges but no
// positions, and precondition failures (no compiled document, page index
// out of range) synthesize a single spanless error diagnostic.
package session
