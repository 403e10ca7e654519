package dataset

import (
	"fmt"
	"strings"
)

// Select projects the table onto the named feature columns plus the
// target column, preserving row order. Feature rows come back in the
// exact order of the features argument. Pure projection, the table is
// not modified.
func Select(t *Table, features []string, target string) ([][]float64, []int, error) {
	var missing []string

	cols := make([]int, len(features))
	for i, name := range features {
		idx, ok := t.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = idx
	}
	targetIdx, ok := t.index[target]
	if !ok {
		missing = append(missing, target)
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	rows := make([][]float64, len(t.rows))
	labels := make([]int, len(t.rows))
	for r, row := range t.rows {
		vector := make([]float64, len(cols))
		for i, c := range cols {
			vector[i] = row[c]
		}
		rows[r] = vector
		labels[r] = int(row[targetIdx])
	}
	return rows, labels, nil
}
