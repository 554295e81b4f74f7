package barray

import (
	"os"
	"path/filepath"

	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkstore"
	"github.com/ContinuumIO/blz/pkg/persist"
)

// Open rebinds an existing BArray directory (spec.md §4.4's `open(rootdir,
// mode)` / §4.7's open-mode table): "r" requires the directory to exist
// and rejects mutation; "a" requires it to exist and preserves length,
// appending new data; "w" is handled by the construction factories
// instead (they always create/wipe).
func Open(rootdir string, mode string) (*BArray, error) {
	if mode != "r" && mode != "a" {
		return nil, blzerr.NewValueError("barray: open: mode must be \"r\" or \"a\", got %q", mode)
	}
	metaBytes, err := os.ReadFile(filepath.Join(rootdir, "meta"))
	if err != nil {
		return nil, blzerr.WrapIO(err, "opening %s: missing meta file", rootdir)
	}
	m, err := persist.DecodeMeta(metaBytes)
	if err != nil {
		return nil, err
	}

	var leftover []byte
	leftoverItems := 0
	if lb, err := os.ReadFile(filepath.Join(rootdir, "leftover")); err == nil {
		leftoverItems, leftover, err = persist.DecodeLeftover(lb, m.Dtype.ItemSize())
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, blzerr.WrapIO(err, "reading leftover file")
	}

	nChunks := 0
	if m.Chunklen > 0 {
		nChunks = (m.Len - leftoverItems) / m.Chunklen
	}
	store, err := chunkstore.OpenDisk(filepath.Join(rootdir, "data"), mode, nChunks)
	if err != nil {
		return nil, err
	}
	attrs, err := persist.OpenAttrs(filepath.Join(rootdir, "__attrs__"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &BArray{
		dtype:         m.Dtype,
		itemsize:      m.Dtype.ItemSize(),
		chunklen:      m.Chunklen,
		dfltBytes:     m.Dflt,
		dfltScalar:    mustDecodeDflt(m),
		params:        m.Params,
		store:         store,
		leftover:      leftover,
		leftoverItems: leftoverItems,
		length:        m.Len,
		mode:          mode,
		rootdir:       rootdir,
		attrs:         attrs,
	}, nil
}

func mustDecodeDflt(m persist.Meta) interface{} {
	v, err := m.Dtype.Decode(m.Dflt)
	if err != nil {
		return m.Dtype.Zero()
	}
	return v
}
