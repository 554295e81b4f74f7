// Package btable implements C5, spec.md §4.5: a named, ordered collection
// of equal-length BArrays sharing a single logical row count. Columns are
// plain *barray.BArray values; btable only owns ordering and cross-column
// bookkeeping (append fan-out, addcol/delcol, where/eval against the
// Evaluator).
package btable

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/barray"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/persist"
)

const columnsAttrKey = "columns"

// BTable is a mapping name -> *barray.BArray with insertion order
// preserved, all constituent arrays sharing len (spec.md §3, §4.5).
type BTable struct {
	order   []string
	cols    map[string]*barray.BArray
	length  int
	mode    string
	rootdir string
	attrs   *persist.Attrs

	pendingDeletes []string
}

type columnsDoc struct {
	Names []string `mapstructure:"names"`
}

func autoName(i int) string {
	return "f" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// FromArrays builds an in-memory BTable from parallel column arrays,
// auto-assigning names f0..f{n-1} when names is nil (spec.md §4.5's
// "construct from a sequence of parallel buffers").
func FromArrays(arrays []*barray.BArray, names []string) (*BTable, error) {
	if len(arrays) == 0 {
		return nil, blzerr.NewValueError("btable: at least one column is required")
	}
	if names == nil {
		names = make([]string, len(arrays))
		for i := range arrays {
			names[i] = autoName(i)
		}
	}
	if len(names) != len(arrays) {
		return nil, blzerr.NewValueError("btable: %d names for %d columns", len(names), len(arrays))
	}
	length := arrays[0].Len()
	cols := make(map[string]*barray.BArray, len(arrays))
	order := make([]string, len(arrays))
	for i, a := range arrays {
		if a.Len() != length {
			return nil, blzerr.NewValueError("btable: column %q has length %d, expected %d", names[i], a.Len(), length)
		}
		if _, dup := cols[names[i]]; dup {
			return nil, blzerr.NewValueError("btable: duplicate column name %q", names[i])
		}
		cols[names[i]] = a
		order[i] = names[i]
	}
	return &BTable{order: order, cols: cols, length: length}, nil
}

// Create persists a new on-disk BTable: arrays must already be rooted
// under rootdir/<name> (each built via barray.New/Zeros/... with
// Options.Rootdir set accordingly). Create writes the __attrs__ column
// order record spec.md §4.7 calls out for BTable layout.
func Create(rootdir string, arrays []*barray.BArray, names []string) (*BTable, error) {
	t, err := FromArrays(arrays, names)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(rootdir, 0o755); err != nil {
		return nil, blzerr.WrapIO(err, "creating btable rootdir %s", rootdir)
	}
	attrs, err := persist.OpenAttrs(filepath.Join(rootdir, "__attrs__"))
	if err != nil {
		return nil, err
	}
	if err := attrs.SetJSON(columnsAttrKey, columnsDoc{Names: t.order}); err != nil {
		_ = attrs.Close()
		return nil, err
	}
	t.rootdir = rootdir
	t.mode = "a"
	t.attrs = attrs
	return t, nil
}

// Open reopens an on-disk BTable, decoding the __attrs__ column order
// (jsoniter raw-map, then mapstructure into a typed columnsDoc — the
// attrs -> typed-struct decode path spec.md §4.5's layout calls for) and
// reopening each column's BArray directory.
func Open(rootdir, mode string) (*BTable, error) {
	attrs, err := persist.OpenAttrs(filepath.Join(rootdir, "__attrs__"))
	if err != nil {
		return nil, err
	}
	raw, ok, err := attrs.GetRawMap(columnsAttrKey)
	if err != nil {
		_ = attrs.Close()
		return nil, err
	}
	if !ok {
		_ = attrs.Close()
		return nil, blzerr.NewCorruptedDataError("btable: %s: missing %q attrs key", rootdir, columnsAttrKey)
	}
	var doc columnsDoc
	if err := mapstructure.Decode(raw, &doc); err != nil {
		_ = attrs.Close()
		return nil, blzerr.NewCorruptedDataError("btable: %s: decoding column order: %v", rootdir, err)
	}
	if len(doc.Names) == 0 {
		_ = attrs.Close()
		return nil, blzerr.NewCorruptedDataError("btable: %s: empty column order", rootdir)
	}

	cols := make(map[string]*barray.BArray, len(doc.Names))
	length := -1
	for _, name := range doc.Names {
		a, err := barray.Open(filepath.Join(rootdir, name), mode)
		if err != nil {
			_ = attrs.Close()
			return nil, err
		}
		if length < 0 {
			length = a.Len()
		} else if a.Len() != length {
			_ = attrs.Close()
			return nil, blzerr.NewCorruptedDataError("btable: %s: column %q length %d != %d", rootdir, name, a.Len(), length)
		}
		cols[name] = a
	}
	return &BTable{order: doc.Names, cols: cols, length: length, rootdir: rootdir, mode: mode, attrs: attrs}, nil
}

// Len is the shared row count of every column.
func (t *BTable) Len() int { return t.length }

// Names returns the column order (a defensive copy).
func (t *BTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Column returns the named BArray, or false if no such column exists.
func (t *BTable) Column(name string) (*barray.BArray, bool) {
	a, ok := t.cols[name]
	return a, ok
}

// Dtypes returns the declared dtype of each column in order, the "row
// type is the struct of column dtypes in declared order" spec.md §3 names.
func (t *BTable) Dtypes() []atom.Atom {
	out := make([]atom.Atom, len(t.order))
	for i, name := range t.order {
		out[i] = t.cols[name].Dtype()
	}
	return out
}

// Flush persists the column order (reflecting any addcol/delcol since the
// last flush) and removes directories of columns deleted in the meantime,
// matching spec.md §4.5's "A deleted column's directory is removed on the
// next flush."
func (t *BTable) Flush() error {
	for _, a := range t.cols {
		if a.Rootdir() != "" {
			if err := a.Flush(); err != nil {
				return err
			}
		}
	}
	if t.attrs != nil {
		if err := t.attrs.SetJSON(columnsAttrKey, columnsDoc{Names: t.order}); err != nil {
			return err
		}
	}
	for _, dir := range t.pendingDeletes {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return blzerr.WrapIO(err, "removing deleted column directory %s", dir)
		}
	}
	t.pendingDeletes = nil
	return nil
}

// Close flushes (if rooted) and releases every column plus the attrs file.
func (t *BTable) Close() error {
	if t.rootdir != "" {
		if err := t.Flush(); err != nil {
			return err
		}
	}
	for _, a := range t.cols {
		if err := a.Close(); err != nil {
			return err
		}
	}
	if t.attrs != nil {
		return t.attrs.Close()
	}
	return nil
}
