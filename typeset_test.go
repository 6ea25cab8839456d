package typeset

import "testing"

func TestPackageSpec_String(t *testing.T) {
	spec := PackageSpec{Namespace: "preview", Name: "cetz", Version: "0.2.0"}
	if got := spec.String(); got != "@preview/cetz:0.2.0" {
		t.Errorf("String() = %q", got)
	}
}

func TestFileID_Normalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chapters/one.typ", "chapters/one.typ"},
		{"/chapters/one.typ", "chapters/one.typ"},
		{`chapters\one.typ`, "chapters/one.typ"},
		{`\chapters\one.typ`, "chapters/one.typ"},
	}
	for _, tt := range tests {
		if got := NewFileID(tt.in).Path(); got != tt.want {
			t.Errorf("NewFileID(%q).Path() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileID_EquivalentSpellingsCompareEqual(t *testing.T) {
	if NewFileID("/a/b.typ") != NewFileID("a/b.typ") {
		t.Error("rooted and rootless spellings must be the same identity")
	}
	if NewFileID("a.typ") == NewDetachedFileID("a.typ") {
		t.Error("detached identities must not equal project identities")
	}

	spec := PackageSpec{Namespace: "preview", Name: "cetz", Version: "0.2.0"}
	if NewPackageFileID(spec, "lib.typ") == NewFileID("lib.typ") {
		t.Error("package identities must not equal project identities")
	}
}

func TestFileID_String(t *testing.T) {
	spec := PackageSpec{Namespace: "preview", Name: "cetz", Version: "0.2.0"}
	if got := NewPackageFileID(spec, "src/lib.typ").String(); got != "@preview/cetz:0.2.0/src/lib.typ" {
		t.Errorf("String() = %q", got)
	}
	if got := NewFileID("/main.typ").String(); got != "main.typ" {
		t.Errorf("String() = %q", got)
	}
}

func TestFileID_UsableAsMapKey(t *testing.T) {
	m := map[FileID]int{
		NewFileID("a.typ"): 1,
	}
	if m[NewFileID("/a.typ")] != 1 {
		t.Error("normalized spellings must hit the same map entry")
	}
}
