package store

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/elonfeng/tasteprice/pkg/catalog"
)

// CSVTable is a dish table stored as a UTF-8 CSV file with a header row.
// Columns are matched by name; unknown columns are ignored.
type CSVTable struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a table backed by the CSV file at path. The file need not
// exist until the first Save.
func NewCSV(path string) *CSVTable {
	return &CSVTable{path: path}
}

// Path returns the backing file path.
func (t *CSVTable) Path() string { return t.path }

func (t *CSVTable) Close() error { return nil }

// Load reads every row. A missing or empty file is catalog.ErrDataUnavailable.
// Cells that do not parse as numbers load as nil.
func (t *CSVTable) Load(ctx context.Context) ([]catalog.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(catalog.ErrDataUnavailable, "table %s does not exist", t.path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open table %s", t.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.Wrapf(catalog.ErrDataUnavailable, "table %s is empty", t.path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read header of %s", t.path)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	var records []catalog.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", t.path)
		}
		records = append(records, parseRow(cols, row))
	}
	if len(records) == 0 {
		return nil, eris.Wrapf(catalog.ErrDataUnavailable, "table %s has no rows", t.path)
	}
	return records, nil
}

// Save replaces the file with records. The new content is written to a
// temporary file in the same directory and renamed into place.
func (t *CSVTable) Save(_ context.Context, records []catalog.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tasteprice-*.csv")
	if err != nil {
		return eris.Wrap(err, "create temp table")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(catalog.Columns); err != nil {
		tmp.Close()
		return eris.Wrap(err, "write header")
	}
	for i, rec := range records {
		if err := w.Write(formatRow(rec)); err != nil {
			tmp.Close()
			return eris.Wrapf(err, "write row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "flush table")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "close temp table")
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return eris.Wrapf(err, "replace %s", t.path)
	}
	return nil
}

func parseRow(cols map[string]int, row []string) catalog.Record {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	return catalog.Record{
		Restaurant:  cell("restaurant"),
		Food:        cell("food"),
		Price:       parseFloat(cell("price")),
		Taste:       parseFloat(cell("taste")),
		Location:    cell("location"),
		PortionSize: cell("portion_size"),
		Category:    cell("dish_category"),
		Description: catalog.String(cell("description")),
		SourceURL:   cell("source_url"),
		VotesCount:  parseInt(cell("votes_count")),
	}
}

func formatRow(r catalog.Record) []string {
	desc := ""
	if r.Description != nil {
		desc = *r.Description
	}
	return []string{
		r.Restaurant,
		r.Food,
		formatFloat(r.Price),
		formatFloat(r.Taste),
		r.Location,
		r.PortionSize,
		r.Category,
		desc,
		r.SourceURL,
		formatInt(r.VotesCount),
	}
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseInt accepts whole numbers written as floats ("5.0").
func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	v := int(*f)
	return &v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
