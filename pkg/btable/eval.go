package btable

import (
	"github.com/ContinuumIO/blz/pkg/atom"
	"github.com/ContinuumIO/blz/pkg/barray"
	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
	"github.com/ContinuumIO/blz/pkg/eval"
)

func (t *BTable) bindings() eval.MapBindings {
	b := make(eval.MapBindings, len(t.cols))
	for name, a := range t.cols {
		b[name] = a
	}
	return b
}

// Where forwards expr to the Evaluator against the column bindings and
// yields the rows where it evaluates true, respecting skip/limit.
// outcols projects to a subset of columns (nil means every column), the
// exact contract spec.md §4.5 names.
func (t *BTable) Where(expr string, outcols []string, skip, limit int) ([]Row, error) {
	e, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	positions, err := eval.WherePositions(e, t.bindings(), skip, limit)
	if err != nil {
		return nil, err
	}
	if outcols == nil {
		outcols = t.order
	}
	rows := make([]Row, len(positions))
	for i, pos := range positions {
		row := make(Row, len(outcols))
		for _, name := range outcols {
			col, ok := t.cols[name]
			if !ok {
				return nil, blzerr.NewValueError("btable: where: no such column %q", name)
			}
			v, err := col.Get(pos)
			if err != nil {
				return nil, err
			}
			row[name] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// GetExpr is the "string expression -> filtered record iterator" form of
// spec.md §4.5's __getitem__; it projects every column.
func (t *BTable) GetExpr(expr string) ([]Row, error) {
	return t.Where(expr, nil, 0, -1)
}

// Eval evaluates expr against the column bindings and returns a fresh
// BArray, streaming one chunk-stride at a time and appending each dense
// result (spec.md §4.5's eval, built atop spec.md §4.6's Evaluator
// algorithm). params overrides the codec params of the first referenced
// column when non-nil.
func (t *BTable) Eval(expr string, params *chunkenc.Override) (*barray.BArray, error) {
	e, err := eval.Compile(expr)
	if err != nil {
		return nil, err
	}
	stream, err := e.Run(t.bindings())
	if err != nil {
		return nil, err
	}

	var dst *barray.BArray
	for {
		v, _, ok, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		dense, resultAtom, err := v.EncodeDense()
		if err != nil {
			return nil, err
		}
		if dst == nil {
			opts := barray.Options{}
			if params != nil {
				opts.Params = *params
			} else if len(e.Names()) > 0 {
				if col, ok := t.cols[e.Names()[0]]; ok {
					cp := col.Params()
					opts.Params = chunkenc.Override{Cname: cp.Cname, Clevel: chunkenc.IntPtr(cp.Clevel), Shuffle: chunkenc.BoolPtr(cp.Shuffle)}
					opts.Chunklen = col.Chunklen()
				}
			}
			dst, err = barray.Zeros(0, resultAtom, opts)
			if err != nil {
				return nil, err
			}
		}
		if err := dst.AppendDense(dense); err != nil {
			return nil, err
		}
	}
	if dst == nil {
		return barray.Zeros(0, atom.New(atom.Bool), barray.Options{})
	}
	return dst, nil
}
