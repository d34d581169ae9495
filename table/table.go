// Package table reads and writes samplesheets as a header plus rows of
// string cells addressed by column name.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/carbocation/gsmerge"
	"golang.org/x/net/html/charset"
)

const utf8BOM = "\ufeff"

// Table is a header plus rows of string fields, all as wide as the header.
type Table struct {
	Header []string
	Rows   [][]string

	// Delimiter the table was read with, if it was read from a delimited
	// file.
	Delimiter rune

	index map[string]int
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	t := &Table{
		Header: append([]string(nil), header...),
		Rows:   make([][]string, 0),
	}
	t.reindex()

	return t
}

// ReadOptions control how Read decodes a delimited file.
type ReadOptions struct {
	// Delimiter, or 0 to detect it from the content.
	Delimiter rune

	// Encoding is a WHATWG encoding label such as windows-1252. Empty means
	// UTF-8.
	Encoding string
}

// Read parses a delimited file with a header row. Rows shorter than the
// header are padded with empty cells; longer rows are an ErrFormat.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	if opts.Encoding != "" {
		converted, err := charset.NewReaderLabel(opts.Encoding, r)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding %q: %v", gsmerge.ErrConfig, opts.Encoding, err)
		}
		r = converted
	}

	// Samplesheets are small; keeping the whole file lets us detect the
	// delimiter without needing to seek.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	delim := opts.Delimiter
	if delim == 0 {
		delim = gsmerge.DetermineDelimiter(bytes.NewReader(data))
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gsmerge.ErrFormat, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: no header row", gsmerge.ErrFormat)
	}

	t := New(records[0])
	t.Delimiter = delim
	for i, record := range records[1:] {
		if len(record) > len(t.Header) {
			return nil, fmt.Errorf("%w: row %d has %d fields but the header has %d", gsmerge.ErrFormat, i+1, len(record), len(t.Header))
		}
		t.Rows = append(t.Rows, pad(record, len(t.Header)))
	}

	return t, nil
}

// Write emits the header and all rows.
func (t *Table) Write(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}

	return cw.Error()
}

// Bytes renders the table with Write.
func (t *Table) Bytes(delim rune) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := t.Write(buf, delim); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the header contains the column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Index returns the position of a column in the header, or -1.
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}

	return -1
}

// Get returns the cell of a row in the named column. The second return value
// is false if the column does not exist.
func (t *Table) Get(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok {
		return "", false
	}

	return t.Rows[row][i], true
}

// Lookup returns a function that fetches cells of one row by column name.
func (t *Table) Lookup(row int) func(column string) (string, bool) {
	return func(column string) (string, bool) {
		return t.Get(row, column)
	}
}

// EnsureColumns appends every missing column to the header and widens
// existing rows with empty cells.
func (t *Table) EnsureColumns(columns ...string) {
	for _, column := range columns {
		if t.Has(column) {
			continue
		}
		t.Header = append(t.Header, column)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.reindex()
	}
}

// AppendRow adds a row, which must be as wide as the header.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Header) {
		return fmt.Errorf("row has %d fields but the header has %d", len(row), len(t.Header))
	}
	t.Rows = append(t.Rows, row)

	return nil
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		// The first occurrence of a duplicated column name wins
		if _, exists := t.index[name]; !exists {
			t.index[name] = i
		}
	}
}

func pad(record []string, width int) []string {
	out := make([]string, width)
	copy(out, record)

	return out
}
