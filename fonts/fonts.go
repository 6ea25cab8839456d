package fonts

import (
	"os"
	"sync"
)

// Info describes one font face discovered at index-build time. Face-level
// metadata beyond the family name belongs to the layout engine; the index
// only needs enough to answer family listings.
type Info struct {
	Family string
	Style  string

	// Face is the position of this face within its backing file or blob.
	// Plain font files carry one face at 0; collection files carry several,
	// all served from the same bytes.
	Face int
}

// Book is the searchable catalogue of discovered faces. Face order is
// discovery order and stays stable for the life of the index, since the
// compiler addresses fonts by position.
type Book struct {
	infos []Info
}

func (b *Book) add(info Info) {
	b.infos = append(b.infos, info)
}

// Len returns the number of faces in the book.
func (b *Book) Len() int {
	return len(b.infos)
}

// Info returns the face description at a book index.
func (b *Book) Info(index int) (Info, bool) {
	if index < 0 || index >= len(b.infos) {
		return Info{}, false
	}
	return b.infos[index], true
}

// Families returns the distinct family names in first-seen order.
func (b *Book) Families() []string {
	seen := make(map[string]bool, len(b.infos))
	var families []string
	for _, info := range b.infos {
		if !seen[info.Family] {
			seen[info.Family] = true
			families = append(families, info.Family)
		}
	}
	return families
}

// Loader loads the bytes of one face. The set of implementations is closed
// and selected at index-build time: FileLoader for faces discovered on
// disk, MemoryLoader for embedded faces.
type Loader interface {
	load() ([]byte, bool)
}

// FileLoader reads a font file from disk on first use. Every face of a
// collection file shares the backing bytes; the face position within them
// lives in the book's Info.
type FileLoader struct {
	Path string
}

func (l FileLoader) load() ([]byte, bool) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// MemoryLoader serves a face embedded in the host binary or provided by the
// host at index-build time.
type MemoryLoader struct {
	Data []byte
}

func (l MemoryLoader) load() ([]byte, bool) {
	return l.Data, true
}

// Slot lazily loads one face, at most once for the index's lifetime. A
// failed load is remembered and not retried.
type Slot struct {
	once   sync.Once
	loader Loader
	data   []byte
	ok     bool
}

func NewSlot(loader Loader) *Slot {
	return &Slot{loader: loader}
}

// Get returns the face bytes, loading them on first use.
func (s *Slot) Get() ([]byte, bool) {
	s.once.Do(func() {
		s.data, s.ok = s.loader.load()
	})
	return s.data, s.ok
}

// Index pairs the book with the lazy slots backing each face.
type Index struct {
	book  *Book
	slots []*Slot
}

// Book returns the index's catalogue.
func (ix *Index) Book() *Book {
	return ix.book
}

// Font returns the bytes of the face at a book index, loading lazily.
func (ix *Index) Font(index int) ([]byte, bool) {
	if index < 0 || index >= len(ix.slots) {
		return nil, false
	}
	return ix.slots[index].Get()
}

// Families returns the distinct family names known to the index.
func (ix *Index) Families() []string {
	return ix.book.Families()
}
