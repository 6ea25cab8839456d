package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// FaceParser extracts face descriptions from a font file. Parsing font
// binaries is the layout engine's concern; the searcher only discovers
// candidate files and builds lazy slots around them. A parser returning an
// error skips the file.
type FaceParser interface {
	Parse(path string, data []byte) ([]Info, error)
}

// Searcher builds a font index from directories on disk plus optional
// embedded faces. The zero value is not usable; construct with NewSearcher.
type Searcher struct {
	parser        FaceParser
	includeSystem bool
	embedded      [][]byte
	logger        *zap.Logger
}

func NewSearcher(parser FaceParser) *Searcher {
	return &Searcher{
		parser:        parser,
		includeSystem: true,
		logger:        zap.NewNop(),
	}
}

// IncludeSystemFonts controls whether the per-OS system font directories
// are searched. On by default.
func (s *Searcher) IncludeSystemFonts(include bool) *Searcher {
	s.includeSystem = include
	return s
}

// WithEmbedded adds faces served from memory. Embedded faces are indexed
// before anything discovered on disk.
func (s *Searcher) WithEmbedded(faces ...[]byte) *Searcher {
	s.embedded = append(s.embedded, faces...)
	return s
}

// WithLogger installs a logger for discovery diagnostics.
func (s *Searcher) WithLogger(l *zap.Logger) *Searcher {
	s.logger = l
	return s
}

// Search builds an index from the system font directories alone.
func (s *Searcher) Search() *Index {
	return s.SearchWith()
}

// SearchWith builds an index from the given directories, plus the system
// font directories when enabled. Unreadable directories and unparsable
// files are skipped.
func (s *Searcher) SearchWith(dirs ...string) *Index {
	ix := &Index{book: &Book{}}

	for _, data := range s.embedded {
		infos, err := s.parser.Parse("", data)
		if err != nil {
			s.logger.Debug("skipping embedded font", zap.Error(err))
			continue
		}
		for i, info := range infos {
			info.Face = i
			ix.book.add(info)
			ix.slots = append(ix.slots, NewSlot(MemoryLoader{Data: data}))
		}
	}

	roots := append([]string{}, dirs...)
	if s.includeSystem {
		roots = append(roots, systemFontDirs()...)
	}
	for _, root := range roots {
		s.searchDir(ix, root)
	}
	return ix
}

func (s *Searcher) searchDir(ix *Index, root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isFontFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("unreadable font file", zap.String("path", path), zap.Error(err))
			return nil
		}
		infos, err := s.parser.Parse(path, data)
		if err != nil {
			s.logger.Debug("unparsable font file", zap.String("path", path), zap.Error(err))
			return nil
		}
		for i, info := range infos {
			info.Face = i
			ix.book.add(info)
			ix.slots = append(ix.slots, NewSlot(FileLoader{Path: path}))
		}
		return nil
	})
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf", ".ttc", ".otc":
		return true
	default:
		return false
	}
}

func systemFontDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return []string{
			"/Library/Fonts",
			"/System/Library/Fonts",
			filepath.Join(home, "Library", "Fonts"),
		}
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{filepath.Join(windir, "Fonts")}
	default:
		home, _ := os.UserHomeDir()
		return []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, ".fonts"),
		}
	}
}
