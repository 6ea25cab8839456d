// Package typeset provides the incremental compilation world and session
// layer for a document typesetting compiler.
//
// The compiler itself is an external collaborator: it pulls sources, fonts
// and the current date from a Provider, and this module supplies that
// provider together with the stateful edit/compile/render/export loop
// around it.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	typeset/          Root package with collaborator contracts and value types
//	├── session/      High-level API: the compile/render/export session
//	├── world/        Compilation world: file cache, virtual overlay, clock
//	├── diag/         Position-resolved diagnostics
//	├── pages/        Page-range selector parsing
//	├── fonts/        Font book, lazy font slots, directory search
//	├── packages/     Package storage with download and extraction
//	└── errors/       Structured error types
//
// # Quick Start
//
// Create a session, compile markup and export it:
//
//	ctx, err := session.New(session.Options{Root: "."}, collaborators)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx.SetMarkup("= Hello\nWorld")
//	result, diags := ctx.Compile()
//	if diags != nil {
//	    log.Fatal(diags)
//	}
//
//	pdf, diags := ctx.ExportPDF(session.PDFOptions{Pages: "1-2"})
//
// # Incremental Compilation
//
// The world caches file reads and parses across compiles. Each compile
// starts a new cache generation: the first access of an entry re-reads the
// bytes and compares a content fingerprint, skipping the parse when the
// bytes are unchanged, while later accesses within the same compile return
// cached data without I/O. Edits therefore cost one re-read per touched
// file, and a parse only for files whose content actually changed.
//
// # Thread Safety
//
// A session serializes all of its operations behind one lock; two sessions
// never share state and never contend.
package typeset
