package csv

import "strings"

// Table is the parsed upload. It is created once per file and not mutated
// afterwards.
type Table struct {
	// Headers are the first line's cells in file order.
	Headers []string

	// Rows are the data rows. Rows may be shorter than Headers; missing
	// trailing cells read as "".
	Rows [][]string

	// Delimiter is the separator used for every line.
	Delimiter rune

	// DroppedBlank counts data rows discarded because every cell was blank.
	DroppedBlank int
}

// Cell returns the value at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Column returns the index of the first header equal to name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Sample returns up to n leading rows, each padded or cut to the header width.
func (t *Table) Sample(n int) [][]string {
	n = max(0, min(n, len(t.Rows)))
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Headers))
		for j := range row {
			row[j] = t.Cell(i, j)
		}
		out = append(out, row)
	}
	return out
}

// String serializes the table back with its delimiter. Cells are written
// verbatim, so only tables without delimiter or quote characters inside
// cells survive a round trip.
func (t *Table) String() string {
	sep := string(t.Delimiter)
	if t.Delimiter == 0 {
		sep = ","
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, sep))
	for _, r := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(r, sep))
	}
	return b.String()
}
