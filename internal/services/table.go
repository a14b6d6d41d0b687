package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrColumnNotFound is returned when a view asks for a column the table lacks.
var ErrColumnNotFound = errors.New("column not found")

// Cell values treated as missing when the table is loaded.
var nullMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

const utf8BOM = "\ufeff"

// Table is an immutable, string-typed view of the order file.
type Table struct {
	frame    dataframe.DataFrame
	source   string
	loadedAt time.Time
}

// LoadTable reads a comma-delimited file with a header row. Every column is
// kept as text; typing happens in the aggregators that need it.
func LoadTable(ctx context.Context, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		record, err = fitRow(record, len(header))
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("read row %d (line %d): %w", len(rows)+1, line, err)
		}
		rows = append(rows, record)
	}

	table, err := TableFromRecords(header, rows)
	if err != nil {
		return nil, err
	}
	table.source = path
	return table, nil
}

// fitRow pads a short record with empty (missing) cells. Records with more
// fields than the header are rejected.
func fitRow(record []string, width int) ([]string, error) {
	switch {
	case len(record) > width:
		return nil, fmt.Errorf("expected %d fields, saw %d", width, len(record))
	case len(record) < width:
		padded := make([]string, width)
		copy(padded, record)
		return padded, nil
	}
	return record, nil
}

// TableFromRecords builds a table from a header and its data rows.
func TableFromRecords(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
	}

	var frame dataframe.DataFrame
	if len(rows) == 0 {
		columns := make([]series.Series, len(names))
		for i, name := range names {
			columns[i] = series.New([]string{}, series.String, name)
		}
		frame = dataframe.New(columns...)
	} else {
		records := make([][]string, 0, len(rows)+1)
		records = append(records, names)
		records = append(records, rows...)
		frame = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.NaNValues(nullMarkers),
		)
	}
	if frame.Err != nil {
		return nil, fmt.Errorf("load records: %w", frame.Err)
	}

	return NewTable(frame), nil
}

// NewTable wraps an already built frame.
func NewTable(frame dataframe.DataFrame) *Table {
	return &Table{
		frame:    frame,
		loadedAt: time.Now(),
	}
}

func (t *Table) Len() int {
	return t.frame.Nrow()
}

func (t *Table) Columns() []string {
	return t.frame.Names()
}

func (t *Table) Source() string {
	return t.source
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// Column returns the raw text of a column and, per row, whether the cell is
// missing. The returned slices are copies.
func (t *Table) Column(name string) ([]string, []bool, error) {
	if !slices.Contains(t.frame.Names(), name) {
		return nil, nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	col := t.frame.Col(name)
	if col.Err != nil {
		return nil, nil, fmt.Errorf("column %q: %w", name, col.Err)
	}

	return col.Records(), col.IsNaN(), nil
}
