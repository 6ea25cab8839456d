package session

import (
	"fmt"
	"os"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/diag"
	"github.com/inkwell/typeset/errors"
	"github.com/inkwell/typeset/fonts"
	"github.com/inkwell/typeset/pages"
	"github.com/inkwell/typeset/world"
)

// Options configures a new session context.
type Options struct {
	// Root is the project root non-package imports resolve under.
	Root string

	// FontPaths are extra font directories searched ahead of the system
	// directories. Entries that do not exist or are not directories are
	// silently dropped.
	FontPaths []string

	// IgnoreSystemFonts skips the per-OS system font directories.
	IgnoreSystemFonts bool
}

// Config wires the external collaborators into a session. Compiler is
// required; the rest are optional and their operations fail with a
// precondition diagnostic when used unconfigured.
type Config struct {
	Compiler typeset.Compiler
	Renderer typeset.PageRenderer
	Exporter typeset.PDFExporter
	HTML     typeset.HTMLRenderer

	// Fonts is a pre-built font index. When nil and Searcher is set, the
	// index is built from Options' font paths at construction time.
	Fonts    *fonts.Index
	Searcher *fonts.Searcher

	// Resolver maps package specs to local directories.
	Resolver typeset.PackageResolver

	// Clock supplies the per-compile time snapshot; tests inject a mock.
	Clock clock.Clock

	// Parse builds parsed sources, receiving the previous parse for
	// incremental reuse.
	Parse world.ParseFunc
}

// Result is the outcome of a successful compile.
type Result struct {
	PageCount int
	Warnings  []diag.Diagnostic
}

// PDFOptions configures one PDF export.
type PDFOptions struct {
	// DocumentID overrides the document identifier when non-empty.
	DocumentID string

	// Standards are the target standards; at most one PDF/A conformance
	// level may be present.
	Standards []typeset.PDFStandard

	// Pages is a textual page selector such as "1-3,5,7-9". Empty
	// exports every page.
	Pages string
}

// Context is a compilation session: one world plus at most one compiled
// document. Render and export operate on the stored document; any markup
// or virtual-file mutation clears it, so they are only valid between a
// successful Compile and the next mutation.
//
// All operations serialize behind one lock; two contexts never share state.
type Context struct {
	mu       sync.Mutex
	world    *world.World
	doc      typeset.Document
	compiler typeset.Compiler
	renderer typeset.PageRenderer
	exporter typeset.PDFExporter
	html     typeset.HTMLRenderer
}

// New creates a session context. The world (and its caches) lives for the
// session; the font index is built once here.
func New(opts Options, cfg Config) (*Context, error) {
	if cfg.Compiler == nil {
		return nil, errors.InvalidInput(errors.PhaseCompile, "no compiler configured")
	}

	index := cfg.Fonts
	if index == nil && cfg.Searcher != nil {
		index = cfg.Searcher.
			IncludeSystemFonts(!opts.IgnoreSystemFonts).
			SearchWith(existingDirs(opts.FontPaths)...)
	}

	w := world.New(world.Options{
		Root:     opts.Root,
		Fonts:    index,
		Resolver: cfg.Resolver,
		Clock:    cfg.Clock,
		Parse:    cfg.Parse,
	})

	return &Context{
		world:    w,
		compiler: cfg.Compiler,
		renderer: cfg.Renderer,
		exporter: cfg.Exporter,
		html:     cfg.HTML,
	}, nil
}

// SetMarkup replaces the main markup and clears any compiled document.
func (c *Context) SetMarkup(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.SetMarkup(text)
	c.doc = nil
}

// SetVirtualFile replaces the full content of a virtual file and clears any
// compiled document.
func (c *Context) SetVirtualFile(path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.Overlay().Set(path, []byte(content))
	c.doc = nil
}

// AppendVirtualFile concatenates a chunk onto a virtual file, creating it
// if absent. Unlike SetVirtualFile this does not clear the compiled
// document: it exists for progressive upload ahead of a deliberate
// set/compile cycle, and callers must not compile against a file that has
// only been appended to.
func (c *Context) AppendVirtualFile(path, chunk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.Overlay().Append(path, []byte(chunk))
}

// ClearVirtualFile removes a virtual file and clears any compiled
// document.
func (c *Context) ClearVirtualFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.Overlay().Clear(path)
	c.doc = nil
}

// SetInput binds one library input for subsequent compiles. A compiled
// document is deliberately kept: inputs affect the next compile only.
func (c *Context) SetInput(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.SetInput(key, value)
}

// SetInputs replaces the full input binding set for subsequent compiles.
func (c *Context) SetInputs(inputs map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world.SetInputs(inputs)
}

// Compile compiles the current markup against the world. On success the
// produced document is stored for Render/Export and the page count plus
// warnings are returned; on failure any stored document is cleared and the
// compiler's diagnostics are returned in their original order.
func (c *Context) Compile() (*Result, []diag.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.world.Reset()
	doc, warnings, errs := c.compiler.Compile(c.world)
	mapper := diag.NewMapper(c.world)

	if doc == nil || len(errs) > 0 {
		c.doc = nil
		if len(errs) == 0 {
			return nil, diag.Message("compiler returned no document and no errors")
		}
		return nil, mapper.MapAll(errs)
	}

	c.doc = doc
	return &Result{
		PageCount: doc.PageCount(),
		Warnings:  mapper.MapAll(warnings),
	}, nil
}

// RenderSVG renders one stored page, by zero-based index, to a vector
// image.
func (c *Context) RenderSVG(page int) (string, []diag.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return "", diag.FromError(errors.NoDocument(errors.PhaseRender))
	}
	if c.renderer == nil {
		return "", diag.FromError(errors.InvalidInput(errors.PhaseRender, "no page renderer configured"))
	}
	if page < 0 || page >= c.doc.PageCount() {
		return "", diag.FromError(errors.OutOfBounds(errors.PhaseRender,
			fmt.Sprintf("Page index %d out of bounds (document has %d pages)", page, c.doc.PageCount())))
	}

	svg, err := c.renderer.RenderSVG(c.doc.Page(page))
	if err != nil {
		return "", diag.FromError(err)
	}
	return svg, nil
}

// ExportPDF serializes the stored document. Options are validated first;
// serialization failures after validation surface as diagnostics without
// resolved positions, because the per-compile position context is no longer
// live at serialization time.
func (c *Context) ExportPDF(opts PDFOptions) ([]byte, []diag.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.doc == nil {
		return nil, diag.FromError(errors.NoDocument(errors.PhaseExport))
	}
	if c.exporter == nil {
		return nil, diag.FromError(errors.InvalidInput(errors.PhaseExport, "no PDF exporter configured"))
	}

	cfg := typeset.PDFConfig{Ident: opts.DocumentID}

	if err := validateStandards(opts.Standards); err != nil {
		return nil, diag.FromError(err)
	}
	cfg.Standards = append([]typeset.PDFStandard(nil), opts.Standards...)

	if opts.Pages != "" {
		ranges, err := pages.Parse(opts.Pages, c.doc.PageCount())
		if err != nil {
			return nil, diag.FromError(err)
		}
		cfg.Pages = ranges
	}

	pdf, rawDiags := c.exporter.ExportPDF(c.doc, cfg)
	if len(rawDiags) > 0 {
		return nil, diag.DetachedAll(rawDiags)
	}
	return pdf, nil
}

// ExportHTML compiles the current markup in HTML mode and returns the
// serialized document. This is a fresh compilation, independent of the
// stored paged document, which it neither requires nor replaces.
func (c *Context) ExportHTML() (string, []diag.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.html == nil {
		return "", diag.FromError(errors.InvalidInput(errors.PhaseExport, "no HTML renderer configured"))
	}

	c.world.Reset()
	html, _, errs := c.html.RenderHTML(c.world)
	if len(errs) > 0 {
		return "", diag.NewMapper(c.world).MapAll(errs)
	}
	return html, nil
}

// FontFamilies returns the family names known to the session's font index.
// It does not require a compiled document.
func (c *Context) FontFamilies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.FontFamilies()
}

// validateStandards rejects sets that no single document can conform to:
// PDF/A levels are mutually exclusive.
func validateStandards(standards []typeset.PDFStandard) error {
	levels := 0
	for _, s := range standards {
		switch s {
		case typeset.PDFA2B, typeset.PDFA3B:
			levels++
		}
	}
	if levels > 1 {
		return errors.InvalidInput(errors.PhaseExport,
			"Invalid PDF standards: at most one PDF/A conformance level may be requested")
	}
	return nil
}

func existingDirs(paths []string) []string {
	var dirs []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
