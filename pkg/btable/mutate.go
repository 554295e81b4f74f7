package btable

import (
	"context"
	"path/filepath"

	"github.com/ContinuumIO/blz/pkg/barray"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

// Append appends one record, fanning the per-column writes out across
// pkg/chunkenc's process-wide worker pool (SPEC_FULL.md §5's "BTable.Append
// fan-out across columns"). After the call every column shares the new
// length (spec.md §4.5).
// Not transactional: if one column's Append fails mid-fan-out, columns
// that already succeeded are left one row ahead of the rest.
func (t *BTable) Append(row Row) error {
	for _, name := range t.order {
		if _, ok := row[name]; !ok {
			return blzerr.NewValueError("btable: append: missing value for column %q", name)
		}
	}
	err := chunkenc.Parallel(context.Background(), len(t.order), func(i int) error {
		name := t.order[i]
		return t.cols[name].Append(row[name])
	})
	if err != nil {
		return err
	}
	t.length++
	return nil
}

// AppendRows appends each row in turn.
func (t *BTable) AppendRows(rows []Row) error {
	for _, row := range rows {
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return nil
}

// AddCol inserts array under name at position pos (pos<0 or pos>=column
// count appends at the end), the O(columns) bookkeeping spec.md §4.5's
// addcol describes.
func (t *BTable) AddCol(array *barray.BArray, name string, pos int) error {
	if _, dup := t.cols[name]; dup {
		return blzerr.NewValueError("btable: addcol: column %q already exists", name)
	}
	if array.Len() != t.length {
		return blzerr.NewValueError("btable: addcol: column %q has length %d, expected %d", name, array.Len(), t.length)
	}
	t.cols[name] = array
	if pos < 0 || pos >= len(t.order) {
		t.order = append(t.order, name)
		return nil
	}
	order := make([]string, 0, len(t.order)+1)
	order = append(order, t.order[:pos]...)
	order = append(order, name)
	order = append(order, t.order[pos:]...)
	t.order = order
	return nil
}

// DelCol removes the named column. Its on-disk directory (if any) is
// removed on the next Flush, not immediately — spec.md §4.5: "A deleted
// column's directory is removed on the next flush."
func (t *BTable) DelCol(name string) error {
	a, ok := t.cols[name]
	if !ok {
		return blzerr.NewValueError("btable: delcol: no such column %q", name)
	}
	delete(t.cols, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	if t.rootdir != "" && a.Rootdir() != "" {
		t.pendingDeletes = append(t.pendingDeletes, a.Rootdir())
	} else if t.rootdir != "" {
		t.pendingDeletes = append(t.pendingDeletes, filepath.Join(t.rootdir, name))
	}
	return a.Close()
}
