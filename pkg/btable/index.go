package btable

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/blzerr"
)

// Row is one record: column name -> scalar value, in table column order
// when iterated via Names().
type Row map[string]atom.Scalar

// GetRow returns record i as a name->scalar map — the "integer row i ->
// one record (tuple of scalars)" form of spec.md §4.5's __getitem__.
func (t *BTable) GetRow(i int) (Row, error) {
	if i < 0 {
		i += t.length
	}
	if i < 0 || i >= t.length {
		return nil, blzerr.NewIndexError("btable: row index %d out of range [0,%d)", i, t.length)
	}
	row := make(Row, len(t.order))
	for _, name := range t.order {
		v, err := t.cols[name].Get(i)
		if err != nil {
			return nil, err
		}
		row[name] = v
	}
	return row, nil
}

// GetRows returns the record buffer for rows [start,stop) stepping by
// step — the "slice -> record buffer" form of spec.md §4.5's __getitem__.
func (t *BTable) GetRows(start, stop, step int) ([]Row, error) {
	if step <= 0 {
		step = 1
	}
	if start < 0 {
		start = 0
	}
	if stop > t.length {
		stop = t.length
	}
	if stop < start {
		return nil, blzerr.NewValueError("btable: GetRows: stop %d < start %d", stop, start)
	}

	colVals := make(map[string][]atom.Scalar, len(t.order))
	for _, name := range t.order {
		vals, err := t.cols[name].GetSlice(start, stop, step)
		if err != nil {
			return nil, err
		}
		colVals[name] = vals
	}
	n := 0
	if len(t.order) > 0 {
		n = len(colVals[t.order[0]])
	}
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		row := make(Row, len(t.order))
		for _, name := range t.order {
			row[name] = colVals[name][i]
		}
		rows[i] = row
	}
	return rows, nil
}
