package atom

import (
	"encoding/binary"
	"fmt"
)

// MarshalBinary serializes an Atom's shape (Kind, Width, nested Fields) —
// not a value of it — so BLZ's meta file can record a BArray's dtype.
func (a Atom) MarshalBinary() []byte {
	var out []byte
	out = appendUvarint(out, uint64(a.Kind))
	switch a.Kind {
	case Bytes, Rune:
		out = appendUvarint(out, uint64(a.Width))
	case Compound:
		out = appendUvarint(out, uint64(len(a.Fields)))
		for _, f := range a.Fields {
			out = appendUvarint(out, uint64(len(f.Name)))
			out = append(out, f.Name...)
			out = append(out, f.Atom.MarshalBinary()...)
		}
	}
	return out
}

// UnmarshalAtom decodes an Atom shape written by MarshalBinary, returning
// the number of bytes consumed.
func UnmarshalAtom(b []byte) (Atom, int, error) {
	kindU, n := binary.Uvarint(b)
	if n <= 0 {
		return Atom{}, 0, fmt.Errorf("atom: UnmarshalAtom: bad kind varint")
	}
	off := n
	kind := Kind(kindU)
	switch kind {
	case Bytes, Rune:
		w, n := binary.Uvarint(b[off:])
		if n <= 0 {
			return Atom{}, 0, fmt.Errorf("atom: UnmarshalAtom: bad width varint")
		}
		off += n
		a := Atom{Kind: kind, Width: int(w)}
		return a, off, nil
	case Compound:
		nf, n := binary.Uvarint(b[off:])
		if n <= 0 {
			return Atom{}, 0, fmt.Errorf("atom: UnmarshalAtom: bad field-count varint")
		}
		off += n
		fields := make([]Field, 0, nf)
		for i := uint64(0); i < nf; i++ {
			nameLen, n := binary.Uvarint(b[off:])
			if n <= 0 {
				return Atom{}, 0, fmt.Errorf("atom: UnmarshalAtom: bad name-length varint")
			}
			off += n
			name := string(b[off : off+int(nameLen)])
			off += int(nameLen)
			fa, fn, err := UnmarshalAtom(b[off:])
			if err != nil {
				return Atom{}, 0, err
			}
			off += fn
			fields = append(fields, Field{Name: name, Atom: fa})
		}
		return Atom{Kind: Compound, Fields: fields}, off, nil
	default:
		return Atom{Kind: kind}, off, nil
	}
}

func appendUvarint(b []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(b, tmp[:n]...)
}
