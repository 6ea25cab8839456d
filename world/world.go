package world

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/errors"
	"github.com/inkwell/typeset/fonts"
)

// mainPath is the virtual path of the detached main pseudo-file bound to
// the in-memory markup.
const mainPath = "MARKUP.typ"

// Options configures a World.
type Options struct {
	// Root is the project root all non-package identities resolve under.
	Root string

	// Fonts is the searchable font index. May be nil when no fonts are
	// needed (the provider then knows no families).
	Fonts *fonts.Index

	// Resolver maps package specs to local directories. Nil disables
	// package-qualified identities.
	Resolver typeset.PackageResolver

	// Clock supplies the per-compile time snapshot. Defaults to the
	// system clock; tests inject a mock.
	Clock clock.Clock

	// Parse builds parsed sources from decoded text, receiving the
	// previous parse of the same identity for incremental reuse. Defaults
	// to a plain text source with no compiler artifact.
	Parse ParseFunc
}

// World aggregates everything a compiler pulls from during one compile:
// library configuration, fonts, the main markup, cached file sources and
// bytes, the virtual overlay, and a per-compile clock snapshot. It
// implements typeset.Provider.
//
// World is not internally synchronized against host mutation; the owning
// session serializes host calls against compiles. The file cache and the
// time snapshot carry their own locks so a compiler may pull concurrently.
type World struct {
	root     string
	main     typeset.FileID
	markup   string
	library  *typeset.Library
	inputs   map[string]string
	fonts    *fonts.Index
	cache    *FileCache
	overlay  *Overlay
	resolver typeset.PackageResolver
	parse    ParseFunc
	clock    clock.Clock
	now      snapshot
}

func New(opts Options) *World {
	w := &World{
		root:     opts.Root,
		main:     typeset.NewDetachedFileID(mainPath),
		library:  &typeset.Library{},
		inputs:   make(map[string]string),
		fonts:    opts.Fonts,
		cache:    NewFileCache(),
		overlay:  NewOverlay(),
		resolver: opts.Resolver,
		parse:    opts.Parse,
		clock:    opts.Clock,
	}
	if w.clock == nil {
		w.clock = clock.New()
	}
	if w.parse == nil {
		w.parse = func(id typeset.FileID, text string, _ *typeset.Source) (typeset.Source, error) {
			return typeset.Source{ID: id, Text: text}, nil
		}
	}
	return w
}

// Reset begins a new compile generation: cache entries become unvalidated
// (their data is kept) and the time snapshot is dropped so the next Today
// query re-captures it.
func (w *World) Reset() {
	w.cache.Reset()
	w.now.reset()
}

// SetMarkup replaces the main in-memory markup and resets the world for the
// next compile.
func (w *World) SetMarkup(text string) {
	w.markup = text
	w.Reset()
}

// Markup returns the current main markup.
func (w *World) Markup() string {
	return w.markup
}

// Overlay returns the world's virtual file overlay.
func (w *World) Overlay() *Overlay {
	return w.overlay
}

// SetInput binds one library input. The library configuration is rebuilt
// immediately; it takes effect on the next compile.
func (w *World) SetInput(key, value string) {
	w.inputs[key] = value
	w.rebuildLibrary()
}

// SetInputs replaces the full input binding set.
func (w *World) SetInputs(inputs map[string]string) {
	w.inputs = make(map[string]string, len(inputs))
	for k, v := range inputs {
		w.inputs[k] = v
	}
	w.rebuildLibrary()
}

func (w *World) rebuildLibrary() {
	dict := make(map[string]string, len(w.inputs))
	for k, v := range w.inputs {
		dict[k] = v
	}
	w.library = &typeset.Library{Inputs: dict}
}

// Library implements typeset.Provider.
func (w *World) Library() *typeset.Library {
	return w.library
}

// Main implements typeset.Provider.
func (w *World) Main() typeset.FileID {
	return w.main
}

// Source implements typeset.Provider. Precedence: main markup, then the
// overlay, then the cache backed by disk or a resolved package directory.
// The overlay is keyed by rootless path alone, so an entry shadows project
// and package files at that path alike.
func (w *World) Source(id typeset.FileID) (typeset.Source, error) {
	if id == w.main {
		return typeset.Source{ID: id, Text: w.markup}, nil
	}

	if content, ok := w.overlay.Get(id.Path()); ok {
		text, err := decodeUTF8(id.Path(), content)
		if err != nil {
			return typeset.Source{}, err
		}
		return w.parse(id, text, nil)
	}

	return w.cache.Source(id, w.loader(id), w.parse)
}

// File implements typeset.Provider with the same precedence as Source.
func (w *World) File(id typeset.FileID) ([]byte, error) {
	if id == w.main {
		return []byte(w.markup), nil
	}

	if content, ok := w.overlay.Get(id.Path()); ok {
		buf := make([]byte, len(content))
		copy(buf, content)
		return buf, nil
	}

	return w.cache.File(id, w.loader(id))
}

func (w *World) loader(id typeset.FileID) LoadFunc {
	return func() ([]byte, error) {
		path, err := w.systemPath(id)
		if err != nil {
			return nil, err
		}
		return readFile(path)
	}
}

// systemPath resolves an identity to an absolute path, preparing the
// package first for package-qualified identities.
func (w *World) systemPath(id typeset.FileID) (string, error) {
	root := w.root
	if spec, ok := id.Package(); ok {
		if w.resolver == nil {
			return "", errors.PackageFailed(spec.String(), errors.InvalidInput(errors.PhaseResolve, "no package resolver configured"))
		}
		dir, err := w.resolver.Resolve(spec)
		if err != nil {
			logger().Debug("package resolution failed",
				zap.String("package", spec.String()),
				zap.Error(err))
			return "", errors.PackageFailed(spec.String(), err)
		}
		root = dir
	}
	return resolveWithin(root, id.Path())
}

// Font implements typeset.Provider.
func (w *World) Font(index int) ([]byte, bool) {
	if w.fonts == nil {
		return nil, false
	}
	return w.fonts.Font(index)
}

// FontFamilies implements typeset.Provider.
func (w *World) FontFamilies() []string {
	if w.fonts == nil {
		return nil
	}
	return w.fonts.Families()
}

// Today implements typeset.Provider. The underlying instant is captured at
// most once per generation so that repeated queries within one compile
// agree on the date.
func (w *World) Today(offsetHours *int) (typeset.Date, bool) {
	now := w.now.capture(w.clock)

	var local time.Time
	switch {
	case offsetHours == nil:
		local = now.Local()
	case *offsetHours <= -24 || *offsetHours >= 24:
		return typeset.Date{}, false
	default:
		zone := time.FixedZone("", *offsetHours*3600)
		local = now.In(zone)
	}

	return typeset.Date{
		Year:  local.Year(),
		Month: int(local.Month()),
		Day:   local.Day(),
	}, true
}
