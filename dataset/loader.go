// Package dataset loads tabular CSV data from a URL or a local path
// and projects it onto named columns.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrDataUnavailable marks a source that is unreachable or whose
	// contents cannot be parsed as a numeric CSV table.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrSchemaMismatch marks a table missing a requested column.
	ErrSchemaMismatch = errors.New("dataset schema mismatch")
)

// Table is an immutable named-column view of a loaded dataset.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]float64
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Load fetches a CSV table from source, a single attempt with no
// retries. Sources starting with http:// or https:// are fetched over
// the network, anything else is treated as a local path.
func Load(source string) (*Table, error) {
	body, err := open(source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	// Spreadsheet exports often carry a UTF-8 BOM or arrive as UTF-16.
	decoded := transform.NewReader(body, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	table, err := parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, source, err)
	}
	return table, nil
}

func open(source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s returned status %d", ErrDataUnavailable, source, resp.StatusCode)
		}
		return resp.Body, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	return file, nil
}

func parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var rows [][]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %v", err)
		}
		row := make([]float64, len(record))
		for i, cell := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %v", len(rows)+1, header[i], err)
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}

	return &Table{header: header, index: index, rows: rows}, nil
}
