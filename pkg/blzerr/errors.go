// Package blzerr defines the error kinds BLZ surfaces to callers (spec §7).
//
// Each kind is a distinct type so callers can discriminate with errors.As,
// and each wraps an optional cause with github.com/pkg/errors so the
// underlying I/O or codec failure is never lost, mirroring memchunk.go's
// errors.Wrap(cause, "context") idiom.
package blzerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// IndexError reports an out-of-range integer index or a non-integer index
// element. A negative step is reported as UnimplementedError instead.
type IndexError struct {
	Msg   string
	cause error
}

func (e *IndexError) Error() string { return "blz: index error: " + e.Msg }
func (e *IndexError) Unwrap() error { return e.cause }

// NewIndexError builds an IndexError.
func NewIndexError(format string, args ...interface{}) *IndexError {
	return &IndexError{Msg: fmt.Sprintf(format, args...)}
}

// DtypeError reports an append/assign buffer whose dtype doesn't match.
type DtypeError struct {
	Msg   string
	cause error
}

func (e *DtypeError) Error() string { return "blz: dtype error: " + e.Msg }
func (e *DtypeError) Unwrap() error { return e.cause }

// NewDtypeError builds a DtypeError.
func NewDtypeError(format string, args ...interface{}) *DtypeError {
	return &DtypeError{Msg: fmt.Sprintf(format, args...)}
}

// ReadOnlyError reports a mutation attempted against a mode=r array/table.
type ReadOnlyError struct {
	Msg string
}

func (e *ReadOnlyError) Error() string { return "blz: read-only: " + e.Msg }

// NewReadOnlyError builds a ReadOnlyError.
func NewReadOnlyError(format string, args ...interface{}) *ReadOnlyError {
	return &ReadOnlyError{Msg: fmt.Sprintf(format, args...)}
}

// ValueError reports invalid parameters or trim(n>len). A chunklen <= 0 is
// not reported: BArray construction replaces it with the default chunklen.
type ValueError struct {
	Msg   string
	cause error
}

func (e *ValueError) Error() string { return "blz: value error: " + e.Msg }
func (e *ValueError) Unwrap() error { return e.cause }

// NewValueError builds a ValueError.
func NewValueError(format string, args ...interface{}) *ValueError {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// UnimplementedError reports negative-step indexing/iteration.
type UnimplementedError struct {
	Msg string
}

func (e *UnimplementedError) Error() string { return "blz: unimplemented: " + e.Msg }

// NewUnimplementedError builds an UnimplementedError.
func NewUnimplementedError(format string, args ...interface{}) *UnimplementedError {
	return &UnimplementedError{Msg: fmt.Sprintf(format, args...)}
}

// CorruptedDataError reports a codec decode failure, short file, or size
// mismatch. Fatal for the failing operation.
type CorruptedDataError struct {
	Msg   string
	cause error
}

func (e *CorruptedDataError) Error() string { return "blz: corrupted data: " + e.Msg }
func (e *CorruptedDataError) Unwrap() error { return e.cause }

// WrapCorrupted builds a CorruptedDataError wrapping cause.
func WrapCorrupted(cause error, format string, args ...interface{}) *CorruptedDataError {
	return &CorruptedDataError{Msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// NewCorruptedDataError builds a CorruptedDataError with no underlying cause.
func NewCorruptedDataError(format string, args ...interface{}) *CorruptedDataError {
	return &CorruptedDataError{Msg: fmt.Sprintf(format, args...)}
}

// IOError reports a filesystem error during flush/open/append.
type IOError struct {
	Msg   string
	cause error
}

func (e *IOError) Error() string { return "blz: io error: " + e.Msg }
func (e *IOError) Unwrap() error { return e.cause }

// WrapIO builds an IOError wrapping cause.
func WrapIO(cause error, format string, args ...interface{}) *IOError {
	return &IOError{Msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}
