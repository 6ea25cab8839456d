package world

import "testing"

func TestOverlay_SetReplacesContent(t *testing.T) {
	o := NewOverlay()
	o.Set("a.typ", []byte("one"))
	o.Set("a.typ", []byte("two"))

	got, ok := o.Get("a.typ")
	if !ok || string(got) != "two" {
		t.Errorf("Get = %q, %v; want %q, true", got, ok, "two")
	}
}

func TestOverlay_AppendCreatesAndConcatenates(t *testing.T) {
	o := NewOverlay()
	o.Append("chunks.typ", []byte("abc"))
	o.Append("chunks.typ", []byte("def"))

	got, ok := o.Get("chunks.typ")
	if !ok || string(got) != "abcdef" {
		t.Errorf("Get = %q, %v; want %q, true", got, ok, "abcdef")
	}
}

func TestOverlay_Clear(t *testing.T) {
	o := NewOverlay()
	o.Set("a.typ", []byte("x"))
	o.Clear("a.typ")

	if _, ok := o.Get("a.typ"); ok {
		t.Error("entry survived Clear")
	}
}

func TestOverlay_ClearMissingIsNoop(t *testing.T) {
	o := NewOverlay()
	o.Clear("never-set.typ")
}

func TestOverlay_RootedAndRootlessPathsAlias(t *testing.T) {
	o := NewOverlay()
	o.Set("/sub/a.typ", []byte("x"))

	if _, ok := o.Get("sub/a.typ"); !ok {
		t.Error("rootless lookup missed rooted set")
	}
	o.Clear("sub/a.typ")
	if _, ok := o.Get("/sub/a.typ"); ok {
		t.Error("rooted lookup found cleared entry")
	}
}

func TestOverlay_SetCopiesContent(t *testing.T) {
	o := NewOverlay()
	buf := []byte("abc")
	o.Set("a.typ", buf)
	buf[0] = 'x'

	got, _ := o.Get("a.typ")
	if string(got) != "abc" {
		t.Errorf("overlay aliased caller's buffer: %q", got)
	}
}
