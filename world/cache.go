package world

import (
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/inkwell/typeset"
)

// Fingerprint seeds keep a failed load from colliding with file content
// that happens to equal the error text.
const (
	contentSeed uint64 = 0
	errorSeed   uint64 = 1
)

// LoadFunc reads the raw bytes for an identity from disk or a package.
type LoadFunc func() ([]byte, error)

// ParseFunc builds a parsed source from decoded text. prev is the previous
// successfully parsed source for the same identity, when one exists, so the
// parser can apply the edit instead of reparsing from scratch.
type ParseFunc func(id typeset.FileID, text string, prev *typeset.Source) (typeset.Source, error)

// FileCache caches file loads and their transforms across compile
// generations. Each identity owns two cells, one for the parsed source and
// one for the raw bytes; both follow the same revalidation policy:
//
//   - accessed earlier in the current generation: return the cached result,
//     no I/O;
//   - first access of a generation: re-read the bytes, recompute the content
//     fingerprint, and reuse the cached transform when the fingerprint is
//     unchanged;
//   - fingerprint changed: run the transform, threading in the previous
//     successful value.
//
// Failed loads and failed transforms are cached exactly like successes and
// persist until the fingerprint changes.
type FileCache struct {
	mu    sync.Mutex
	gen   uint64
	slots map[typeset.FileID]*fileSlot
}

func NewFileCache() *FileCache {
	return &FileCache{gen: 1, slots: make(map[typeset.FileID]*fileSlot)}
}

// Reset starts a new generation. No data is discarded; every cell becomes
// unvalidated so its next access re-reads and fingerprints the bytes once.
func (c *FileCache) Reset() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

// slot locates or creates the slot for id. The map lock is held only here,
// never across a load or transform.
func (c *FileCache) slot(id typeset.FileID) (*fileSlot, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[id]
	if !ok {
		s = &fileSlot{id: id}
		c.slots[id] = s
	}
	return s, c.gen
}

// Source returns the parsed source for id, loading and parsing only when
// the revalidation policy requires it.
func (c *FileCache) Source(id typeset.FileID, load LoadFunc, parse ParseFunc) (typeset.Source, error) {
	s, gen := c.slot(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source.getOrInit(gen, load, func(data []byte, prev *typeset.Source) (typeset.Source, error) {
		text, err := decodeUTF8(id.Path(), data)
		if err != nil {
			return typeset.Source{}, err
		}
		return parse(id, text, prev)
	})
}

// File returns the raw bytes for id.
func (c *FileCache) File(id typeset.FileID, load LoadFunc) ([]byte, error) {
	s, gen := c.slot(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.getOrInit(gen, load, func(data []byte, _ *[]byte) ([]byte, error) {
		return data, nil
	})
}

// fileSlot holds the two cache cells of one identity. Its mutex is held for
// the duration of a load/transform, serializing concurrent lookups of the
// same file without blocking lookups of other files.
type fileSlot struct {
	mu     sync.Mutex
	id     typeset.FileID
	source cell[typeset.Source]
	file   cell[[]byte]
}

// cell is one cached load+transform result keyed by (generation, content
// fingerprint). gen records the generation the cell was last validated in;
// the zero value has gen 0 and is therefore never considered validated.
type cell[T any] struct {
	val    T
	err    error
	loaded bool
	hash   xxh3.Uint128
	gen    uint64
}

func (c *cell[T]) getOrInit(gen uint64, load LoadFunc, transform func(data []byte, prev *T) (T, error)) (T, error) {
	if c.gen == gen && c.loaded {
		return c.val, c.err
	}

	data, err := load()
	hash := fingerprint(data, err)
	c.gen = gen

	if c.loaded && hash == c.hash {
		return c.val, c.err
	}
	c.hash = hash

	var prev *T
	if c.loaded && c.err == nil {
		v := c.val
		prev = &v
	}

	c.loaded = true
	if err != nil {
		var zero T
		c.val, c.err = zero, err
		return zero, err
	}

	v, terr := transform(data, prev)
	if terr != nil {
		var zero T
		c.val, c.err = zero, terr
		return zero, terr
	}
	c.val, c.err = v, nil
	return v, nil
}

func fingerprint(data []byte, err error) xxh3.Uint128 {
	if err != nil {
		return xxh3.Hash128Seed([]byte(err.Error()), errorSeed)
	}
	return xxh3.Hash128Seed(data, contentSeed)
}
