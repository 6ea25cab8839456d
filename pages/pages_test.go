package pages

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/inkwell/typeset"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		total    int
		want     []typeset.PageRange
	}{
		{
			name:     "mixed singles and ranges",
			selector: "1-3,5,7-9",
			total:    10,
			want: []typeset.PageRange{
				{Start: 1, End: 3},
				{Start: 5, End: 5},
				{Start: 7, End: 9},
			},
		},
		{
			name:     "single page",
			selector: "4",
			total:    4,
			want:     []typeset.PageRange{{Start: 4, End: 4}},
		},
		{
			name:     "whitespace around tokens",
			selector: " 1 , 2 - 3 ",
			total:    3,
			want: []typeset.PageRange{
				{Start: 1, End: 1},
				{Start: 2, End: 3},
			},
		},
		{
			name:     "duplicates and overlaps kept in input order",
			selector: "3,1-3,3",
			total:    3,
			want: []typeset.PageRange{
				{Start: 3, End: 3},
				{Start: 1, End: 3},
				{Start: 3, End: 3},
			},
		},
		{
			name:     "full document",
			selector: "1-10",
			total:    10,
			want:     []typeset.PageRange{{Start: 1, End: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.selector, tt.total)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ranges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		total    int
		contains string
	}{
		{"zero start", "0-2", 10, "Page range out of bounds: 0-2"},
		{"reversed range", "5-3", 10, "Page range out of bounds: 5-3"},
		{"single above total", "11", 10, "Page number out of bounds: 11"},
		{"range above total", "9-12", 10, "Page range out of bounds: 9-12"},
		{"zero single", "0", 10, "Page number out of bounds: 0"},
		{"garbage single", "abc", 10, "Invalid page number: abc"},
		{"garbage range start", "x-3", 10, "Invalid page number in range: x-3"},
		{"garbage range end", "3-x", 10, "Invalid page number in range: 3-x"},
		{"negative range end", "2--3", 10, "Invalid page number in range: 2--3"},
		{"negative single range", "-5", 10, "Invalid page number in range: -5"},
		{"empty token", "1,,3", 10, "Invalid page number"},
		{"bad token after valid ones", "1-3,oops", 10, "Invalid page number: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.selector, tt.total)
			if err == nil {
				t.Fatalf("expected error, got ranges %v", got)
			}
			if got != nil {
				t.Errorf("expected no partial result, got %v", got)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err, tt.contains)
			}
		})
	}
}
