package world

import "strings"

// Overlay is an in-memory path to content map that shadows disk and package
// lookups for matching identities. Paths are stored rootless, so "/a.typ"
// and "a.typ" address the same entry.
//
// The overlay itself is not synchronized; the session's lock covers it along
// with the rest of the world. Document invalidation on Set/Clear is the
// session's responsibility.
type Overlay struct {
	files map[string][]byte
}

func NewOverlay() *Overlay {
	return &Overlay{files: make(map[string][]byte)}
}

// Set replaces the full content at path, creating the entry if absent.
func (o *Overlay) Set(path string, content []byte) {
	buf := make([]byte, len(content))
	copy(buf, content)
	o.files[rootless(path)] = buf
}

// Append concatenates chunk onto the existing content at path, creating the
// entry if absent. Intended for progressive upload ahead of a deliberate
// Set/compile cycle.
func (o *Overlay) Append(path string, chunk []byte) {
	key := rootless(path)
	o.files[key] = append(o.files[key], chunk...)
}

// Clear removes the entry at path.
func (o *Overlay) Clear(path string) {
	delete(o.files, rootless(path))
}

// Get returns the content at path and whether an entry exists.
func (o *Overlay) Get(path string) ([]byte, bool) {
	content, ok := o.files[rootless(path)]
	return content, ok
}

func rootless(path string) string {
	return strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
}
