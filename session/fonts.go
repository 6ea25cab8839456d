package session

import "github.com/inkwell/typeset/fonts"

// FontOptions configures a stateless font family listing.
type FontOptions struct {
	FontPaths         []string
	IgnoreSystemFonts bool
}

// SystemFontFamilies builds a throwaway font index and returns its family
// names. It needs no session; hosts use it to enumerate available fonts
// before creating one. Font paths that do not exist or are not directories
// are silently dropped, matching session construction.
func SystemFontFamilies(opts FontOptions, searcher *fonts.Searcher) []string {
	index := searcher.
		IncludeSystemFonts(!opts.IgnoreSystemFonts).
		SearchWith(existingDirs(opts.FontPaths)...)
	return index.Families()
}
