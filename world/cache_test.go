package world

import (
	stderrors "errors"
	"testing"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/errors"
)

// countingSource is a load/parse pair with call counters, so tests can
// observe which stages actually ran.
type countingSource struct {
	data    []byte
	loadErr error

	loads  int
	parses int
}

func (c *countingSource) load() ([]byte, error) {
	c.loads++
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.data, nil
}

func (c *countingSource) parse(id typeset.FileID, text string, prev *typeset.Source) (typeset.Source, error) {
	c.parses++
	src := typeset.Source{ID: id, Text: text}
	if prev != nil {
		src.Parsed = prev.Parsed
	}
	return src, nil
}

func TestFileCache_SecondAccessSameGenerationSkipsIO(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("a.typ")
	cs := &countingSource{data: []byte("= Hi")}

	for i := 0; i < 3; i++ {
		src, err := cache.Source(id, cs.load, cs.parse)
		if err != nil {
			t.Fatalf("access %d: %v", i, err)
		}
		if src.Text != "= Hi" {
			t.Fatalf("access %d: text = %q", i, src.Text)
		}
	}

	if cs.loads != 1 {
		t.Errorf("loads = %d, want 1 (no I/O within one generation)", cs.loads)
	}
	if cs.parses != 1 {
		t.Errorf("parses = %d, want 1", cs.parses)
	}
}

func TestFileCache_UnchangedContentSkipsParseAcrossGenerations(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("a.typ")
	cs := &countingSource{data: []byte("= Hi")}

	if _, err := cache.Source(id, cs.load, cs.parse); err != nil {
		t.Fatal(err)
	}
	cache.Reset()
	if _, err := cache.Source(id, cs.load, cs.parse); err != nil {
		t.Fatal(err)
	}

	if cs.loads != 2 {
		t.Errorf("loads = %d, want 2 (one re-read per generation)", cs.loads)
	}
	if cs.parses != 1 {
		t.Errorf("parses = %d, want 1 (fingerprint unchanged)", cs.parses)
	}
}

func TestFileCache_ChangedContentReparsesWithPrevious(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("a.typ")

	var gotPrev *typeset.Source
	parse := func(id typeset.FileID, text string, prev *typeset.Source) (typeset.Source, error) {
		gotPrev = prev
		return typeset.Source{ID: id, Text: text, Parsed: "tree:" + text}, nil
	}

	data := []byte("one")
	load := func() ([]byte, error) { return data, nil }

	if _, err := cache.Source(id, load, parse); err != nil {
		t.Fatal(err)
	}
	if gotPrev != nil {
		t.Error("first parse should see no previous source")
	}

	data = []byte("two")
	cache.Reset()
	src, err := cache.Source(id, load, parse)
	if err != nil {
		t.Fatal(err)
	}
	if src.Text != "two" {
		t.Errorf("text = %q, want %q", src.Text, "two")
	}
	if gotPrev == nil {
		t.Fatal("reparse should receive the previous successful source")
	}
	if gotPrev.Parsed != "tree:one" {
		t.Errorf("previous artifact = %v, want tree:one", gotPrev.Parsed)
	}
}

func TestFileCache_ErrorsAreCached(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("missing.typ")
	cs := &countingSource{loadErr: errors.NotFound(errors.PhaseLoad, "missing.typ")}

	_, err := cache.Source(id, cs.load, cs.parse)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindNotFound}) {
		t.Fatalf("err = %v, want not_found", err)
	}

	// Same generation: cached failure, no I/O.
	if _, err := cache.Source(id, cs.load, cs.parse); err == nil {
		t.Fatal("expected cached failure")
	}
	if cs.loads != 1 {
		t.Errorf("loads = %d, want 1", cs.loads)
	}

	// Next generation: re-read happens, same error fingerprint, still the
	// cached failure and still no parse.
	cache.Reset()
	if _, err := cache.Source(id, cs.load, cs.parse); err == nil {
		t.Fatal("expected persistent failure")
	}
	if cs.loads != 2 {
		t.Errorf("loads = %d, want 2", cs.loads)
	}
	if cs.parses != 0 {
		t.Errorf("parses = %d, want 0", cs.parses)
	}
}

func TestFileCache_ErrorReplacedBySuccessOnContentChange(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("flaky.typ")

	failing := true
	load := func() ([]byte, error) {
		if failing {
			return nil, errors.NotFound(errors.PhaseLoad, "flaky.typ")
		}
		return []byte("content"), nil
	}
	cs := &countingSource{}

	if _, err := cache.Source(id, load, cs.parse); err == nil {
		t.Fatal("expected failure")
	}

	failing = false
	cache.Reset()
	src, err := cache.Source(id, load, cs.parse)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if src.Text != "content" {
		t.Errorf("text = %q", src.Text)
	}
}

func TestFileCache_SuccessThenErrorKeepsNoStalePrevForNextParse(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("a.typ")

	var gotPrev *typeset.Source
	parse := func(id typeset.FileID, text string, prev *typeset.Source) (typeset.Source, error) {
		gotPrev = prev
		return typeset.Source{ID: id, Text: text}, nil
	}

	var loadErr error
	data := []byte("one")
	load := func() ([]byte, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return data, nil
	}

	if _, err := cache.Source(id, load, parse); err != nil {
		t.Fatal(err)
	}

	loadErr = errors.AccessDenied(errors.PhaseLoad, "a.typ")
	cache.Reset()
	if _, err := cache.Source(id, load, parse); err == nil {
		t.Fatal("expected failure")
	}

	// Recovery after a cached failure: the previous *successful* parse is
	// gone, so parse starts fresh.
	loadErr = nil
	data = []byte("three")
	cache.Reset()
	if _, err := cache.Source(id, load, parse); err != nil {
		t.Fatal(err)
	}
	if gotPrev != nil {
		t.Error("parse after a cached failure should not receive a previous source")
	}
}

func TestFileCache_InvalidUTF8FailsAndIsCached(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("binary.typ")
	cs := &countingSource{data: []byte{0xff, 0xfe, 0x00}}

	_, err := cache.Source(id, cs.load, cs.parse)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidUTF8}) {
		t.Fatalf("err = %v, want invalid_utf8", err)
	}
	if cs.parses != 0 {
		t.Errorf("parses = %d, want 0 (decode failed before parse)", cs.parses)
	}

	// The decode failure is a cached transform result.
	cache.Reset()
	if _, err := cache.Source(id, cs.load, cs.parse); err == nil {
		t.Fatal("expected persistent decode failure")
	}
	if cs.loads != 2 {
		t.Errorf("loads = %d, want 2", cs.loads)
	}
}

func TestFileCache_BOMIsStripped(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("bom.typ")
	cs := &countingSource{data: append([]byte{0xef, 0xbb, 0xbf}, "hello"...)}

	src, err := cache.Source(id, cs.load, cs.parse)
	if err != nil {
		t.Fatal(err)
	}
	if src.Text != "hello" {
		t.Errorf("text = %q, want %q", src.Text, "hello")
	}
}

func TestFileCache_FileBytesDoNotRequireUTF8(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("img.png")
	raw := []byte{0x89, 0x50, 0x4e, 0x47}

	data, err := cache.File(id, func() ([]byte, error) { return raw, nil })
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(raw) {
		t.Errorf("bytes = %x, want %x", data, raw)
	}
}

func TestFileCache_SourceAndFileCellsAreIndependent(t *testing.T) {
	cache := NewFileCache()
	id := typeset.NewFileID("a.typ")
	cs := &countingSource{data: []byte("text")}

	if _, err := cache.Source(id, cs.load, cs.parse); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.File(id, cs.load); err != nil {
		t.Fatal(err)
	}

	// One load per cell: the source cell and the bytes cell validate
	// separately.
	if cs.loads != 2 {
		t.Errorf("loads = %d, want 2", cs.loads)
	}
}

func TestFingerprint_ErrorAndContentNeverCollide(t *testing.T) {
	msg := "file not found"
	errHash := fingerprint(nil, stderrors.New(msg))
	contentHash := fingerprint([]byte(msg), nil)
	if errHash == contentHash {
		t.Error("error fingerprint collides with identical file content")
	}
}
