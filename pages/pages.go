// Package pages parses textual page-range selectors such as "1-3,5,7-9".
//
// Selectors are comma-separated tokens, each either a single 1-based page
// number or an inclusive range "N-M". Parsing is bound to a known total page
// count and fails on the first invalid token; valid tokens are kept in input
// order without merging, sorting or de-duplication.
package pages

import (
	"strconv"
	"strings"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/errors"
)

// Parse parses a selector against a document of total pages. It returns the
// ranges in input order, or an error naming the first offending token.
func Parse(selector string, total int) ([]typeset.PageRange, error) {
	var ranges []typeset.PageRange
	for _, token := range strings.Split(selector, ",") {
		token = strings.TrimSpace(token)
		if strings.Contains(token, "-") {
			start, end, _ := strings.Cut(token, "-")
			lo, ok := parsePage(start)
			if !ok {
				return nil, errors.InvalidInput(errors.PhaseExport, "Invalid page number in range: "+token)
			}
			hi, ok := parsePage(end)
			if !ok {
				return nil, errors.InvalidInput(errors.PhaseExport, "Invalid page number in range: "+token)
			}
			if lo < 1 || hi < 1 || lo > total || hi > total || lo > hi {
				return nil, errors.OutOfBounds(errors.PhaseExport, "Page range out of bounds: "+token)
			}
			ranges = append(ranges, typeset.PageRange{Start: lo, End: hi})
			continue
		}

		page, ok := parsePage(token)
		if !ok {
			return nil, errors.InvalidInput(errors.PhaseExport, "Invalid page number: "+token)
		}
		if page < 1 || page > total {
			return nil, errors.OutOfBounds(errors.PhaseExport, "Page number out of bounds: "+strconv.Itoa(page))
		}
		ranges = append(ranges, typeset.PageRange{Start: page, End: page})
	}
	return ranges, nil
}

// parsePage parses one unsigned page component. Negative numbers are a
// parse failure, not an out-of-bounds page.
func parsePage(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
