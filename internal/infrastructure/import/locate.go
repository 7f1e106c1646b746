package poimport

import (
	"strings"
	"unicode/utf8"
)

// Placement says where a header label's value sits relative to the label
type Placement int

const (
	// PlaceRight reads the next non-empty cell on the same row, then the cell below
	PlaceRight Placement = iota
	// PlaceBelow reads the cell below, then the next non-empty cell on the right
	PlaceBelow
)

// how far right of a label a value may sit
const maxValueDistance = 3

// labelSet is a precomputed set of label keys
type labelSet map[string]struct{}

func newLabelSet(labels ...string) labelSet {
	s := make(labelSet, len(labels))
	for _, l := range labels {
		if k := labelKey(l); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

func (s labelSet) has(text string) bool {
	_, ok := s[labelKey(text)]
	return ok
}

// labelMatch is a located label and its value
type labelMatch struct {
	row, col int
	value    string
}

// findLabel scans the first maxRows rows for a cell matching one of labels.
// "Label : value" in a single cell is read inline first. Cells that are
// themselves known labels (stop) are never taken as values.
func findLabel(g Grid, maxRows int, placement Placement, labels, stop labelSet) (labelMatch, bool) {
	if maxRows <= 0 || maxRows > len(g) {
		maxRows = len(g)
	}
	for r := 0; r < maxRows; r++ {
		for c := range g[r] {
			text := cell(g[r], c)
			if text == "" {
				continue
			}
			if label, v, ok := splitInline(text); ok && v != "" && labels.has(label) {
				return labelMatch{row: r, col: c, value: v}, true
			}
			if !labels.has(text) {
				continue
			}
			if v, ok := valueFor(g, r, c, placement, stop); ok {
				return labelMatch{row: r, col: c, value: v}, true
			}
		}
	}
	return labelMatch{}, false
}

// splitInline splits "Label : value" at the first ASCII or full-width colon
func splitInline(text string) (label, value string, ok bool) {
	i := strings.IndexAny(text, ":：")
	if i <= 0 {
		return "", "", false
	}
	_, width := utf8.DecodeRuneInString(text[i:])
	return text[:i], strings.TrimSpace(text[i+width:]), true
}

func valueFor(g Grid, r, c int, placement Placement, stop labelSet) (string, bool) {
	right := func() (string, bool) {
		for i := c + 1; i < len(g[r]) && i <= c+maxValueDistance; i++ {
			v := cell(g[r], i)
			if v == "" {
				continue
			}
			if stop.has(v) || strings.HasSuffix(v, ":") {
				return "", false
			}
			return v, true
		}
		return "", false
	}
	below := func() (string, bool) {
		v := g.Cell(r+1, c)
		if v == "" || stop.has(v) {
			return "", false
		}
		return v, true
	}

	if placement == PlaceBelow {
		if v, ok := below(); ok {
			return v, true
		}
		return right()
	}
	if v, ok := right(); ok {
		return v, true
	}
	return below()
}

// labelPresent reports whether any of labels appears within the first maxRows rows
func labelPresent(g Grid, maxRows int, labels labelSet) bool {
	if maxRows <= 0 || maxRows > len(g) {
		maxRows = len(g)
	}
	for r := 0; r < maxRows; r++ {
		for c := range g[r] {
			text := cell(g[r], c)
			if text == "" {
				continue
			}
			if labels.has(text) {
				return true
			}
			if label, _, ok := splitInline(text); ok && labels.has(label) {
				return true
			}
		}
	}
	return false
}

// markerHits counts how many markers appear in row
func markerHits(row []string, markers []string) int {
	present := make(map[string]struct{}, len(row))
	for _, v := range row {
		present[labelKey(v)] = struct{}{}
	}
	hits := 0
	for _, m := range markers {
		if _, ok := present[labelKey(m)]; ok {
			hits++
		}
	}
	return hits
}

// findTable returns the first row at or after from that contains every marker
func findTable(g Grid, from int, markers []string) (int, bool) {
	for r := from; r < len(g); r++ {
		if markerHits(g[r], markers) == len(markers) {
			return r, true
		}
	}
	return -1, false
}

// columnIndex returns the first column of header matching any alias
func columnIndex(header []string, aliases []string) (int, bool) {
	keys := newLabelSet(aliases...)
	for i, h := range header {
		if keys.has(h) {
			return i, true
		}
	}
	return -1, false
}

var totalsLabels = newLabelSet("Total Quantity", "Total Qty", "Grand Total", "Net amount", "Total")

// isTotalsRow reports whether row is a summary row that ends the item table:
// any cell is a totals label, or the first cell starts with "Total"
func isTotalsRow(row []string) bool {
	if strings.HasPrefix(labelKey(cell(row, 0)), "total") {
		return true
	}
	for _, v := range row {
		if v = strings.TrimSpace(v); v != "" && totalsLabels.has(v) {
			return true
		}
	}
	return false
}
