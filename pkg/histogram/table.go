package histogram

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// ErrBadTable is returned when a table file can not be parsed.
var ErrBadTable = errors.New("bad table")

const sizeHeading = "size"

// Histogram counts occurrences per size.
type Histogram map[uint64]uint64

func (h Histogram) Inc(size uint64) {
	h[size]++
}

func (h Histogram) Add(size uint64, count uint64) {
	h[size] += count
}

// Table is a set of named histograms sharing the size axis.
type Table struct {
	Columns map[string]Histogram
}

func NewTable() *Table {
	return &Table{Columns: make(map[string]Histogram)}
}

// Column returns the named histogram, creating it if needed.
func (t *Table) Column(name string) Histogram {
	h, ok := t.Columns[name]
	if !ok {
		h = make(Histogram)
		t.Columns[name] = h
	}
	return h
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes returns every size present in any column, ascending.
func (t *Table) Sizes() []uint64 {
	seen := make(map[uint64]struct{})
	for _, h := range t.Columns {
		for size := range h {
			seen[size] = struct{}{}
		}
	}

	sizes := make([]uint64, 0, len(seen))
	for size := range seen {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// Merge adds the counts of other into t.
func (t *Table) Merge(other *Table) {
	for name, h := range other.Columns {
		col := t.Column(name)
		for size, count := range h {
			col.Add(size, count)
		}
	}
}

// Save writes the table as CSV: a "size" column followed by one column per
// histogram, one row per size, zero where a histogram has no entry.
func (t *Table) Save(w io.Writer) error {
	names := t.Names()

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{sizeHeading}, names...)); err != nil {
		return err
	}

	row := make([]string, len(names)+1)
	for _, size := range t.Sizes() {
		row[0] = strconv.FormatUint(size, 10)
		for i, name := range names {
			row[i+1] = strconv.FormatUint(t.Columns[name][size], 10)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Load reads a table written by Save and adds its counts to t, matching
// columns by name.
func (t *Table) Load(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headings, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("%w - missing headings", ErrBadTable)
	}
	if err != nil {
		return err
	}

	if headings[0] != sizeHeading {
		return fmt.Errorf("%w - first heading must be %q, got %q", ErrBadTable, sizeHeading, headings[0])
	}

	// empty headings come from a trailing comma and are skipped
	order := make([]Histogram, len(headings)-1)
	for i, heading := range headings[1:] {
		if heading != "" {
			order[i] = t.Column(heading)
		}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line, _ := cr.FieldPos(0)

		size, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w - line %d: %v", ErrBadTable, line, err)
		}

		for i, cell := range record[1:] {
			if i >= len(order) || order[i] == nil || cell == "" {
				continue
			}

			count, err := strconv.ParseUint(cell, 10, 64)
			if err != nil {
				return fmt.Errorf("%w - line %d: %v", ErrBadTable, line, err)
			}

			// zero cells are padding written by Save
			if count == 0 {
				continue
			}
			order[i].Add(size, count)
		}
	}
}

func (t *Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := t.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
