// Package csv turns an uploaded spreadsheet export into a header row and data
// rows of trimmed strings. Unlike encoding/csv it is deliberately lenient: a
// double quote anywhere in a line toggles "inside quotes", the delimiter is
// sniffed from the header line, and lines that would make encoding/csv abort
// (stray or unterminated quotes) are still split.
package csv

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyInput is returned when the input has no non-blank lines.
	ErrEmptyInput = errors.New("csv: file contains no data")

	// ErrUnsupportedExtension is returned by ReadFile for names not ending in .csv.
	ErrUnsupportedExtension = errors.New("csv: only .csv files are supported")

	// ErrRead wraps failures to read the input as text.
	ErrRead = errors.New("csv: could not read file")
)

// utf8BOM is stripped from the first line if present.
const utf8BOM = "\uFEFF"

// Options configures the parser. The zero value sniffs the delimiter.
type Options struct {
	// Comma forces the field delimiter. When zero, DetectDelimiter is used on
	// the first line.
	Comma rune
}

// Parser parses text according to Options. It is safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse is shorthand for NewParser(Options{}).Parse(text).
func Parse(text string) (*Table, error) { return NewParser(Options{}).Parse(text) }

// Parse splits text into lines, sniffs the delimiter from the first line and
// returns the header row plus every data row that has at least one non-blank
// cell.
func (p *Parser) Parse(text string) (*Table, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	lines[0] = strings.TrimPrefix(lines[0], utf8BOM)

	comma := p.opt.Comma
	if comma == 0 {
		comma = DetectDelimiter(lines[0])
	}

	t := &Table{
		Headers:   SplitLine(lines[0], comma),
		Delimiter: comma,
	}
	for _, line := range lines[1:] {
		row := SplitLine(line, comma)
		if blankRow(row) {
			t.DroppedBlank++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile validates the upload name, reads r fully and parses it. Read
// failures and non-UTF-8 content are reported as ErrRead.
func ReadFile(name string, r io.Reader) (*Table, error) {
	return NewParser(Options{}).ReadFile(name, r)
}

// ReadFile is the package-level ReadFile using p's options.
func (p *Parser) ReadFile(name string, r io.Reader) (*Table, error) {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, name)
	}
	t, err := p.ParseReader(r)
	if errors.Is(err, ErrRead) {
		return nil, fmt.Errorf("%w (%s)", err, name)
	}
	return t, err
}

// ParseReader is shorthand for NewParser(Options{}).ParseReader(r).
func ParseReader(r io.Reader) (*Table, error) { return NewParser(Options{}).ParseReader(r) }

// ParseReader reads r fully and parses it. Read failures and non-UTF-8
// content are reported as ErrRead.
func (p *Parser) ParseReader(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: not UTF-8 text", ErrRead)
	}
	return p.Parse(string(b))
}

// DetectDelimiter inspects a single line: semicolon wins over tab, tab wins
// over comma, and comma is the fallback.
func DetectDelimiter(line string) rune {
	switch {
	case strings.ContainsRune(line, ';'):
		return ';'
	case strings.ContainsRune(line, '\t'):
		return '\t'
	default:
		return ','
	}
}

// SplitLine scans line once. A double quote toggles the in-quotes flag and is
// dropped; comma only ends a cell outside quotes. Cells are trimmed. An
// unterminated quote simply runs to the end of the line.
func SplitLine(line string, comma rune) []string {
	var (
		cells    []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == comma && !inQuotes:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// splitLines splits on "\n", removes a trailing "\r" from each line and drops
// lines that are blank after trimming.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := raw[:0]
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(strings.TrimPrefix(l, utf8BOM)) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
