package tlv

import (
	"errors"
	"strconv"
)

var (
	// ErrTruncated indicates that the input ended before a header or value was
	// complete.
	ErrTruncated = errors.New("truncated data value")
	// ErrTagOverflow indicates a tag number that exceeds [kasn1.MaxTagNumber].
	//
	// [kasn1.MaxTagNumber]: https://pkg.go.dev/codello.dev/kasn1#MaxTagNumber
	ErrTagOverflow = errors.New("tag number too large")
	// ErrLengthOverflow indicates a long-form length that cannot be represented.
	ErrLengthOverflow = errors.New("length too large")
	// ErrIndefinitePrimitive indicates the indefinite-length form on a
	// primitive encoding.
	ErrIndefinitePrimitive = errors.New("indefinite length on primitive encoding")
	// ErrInvalidEOC indicates an end-of-contents marker that is constructed or
	// has a nonzero length.
	ErrInvalidEOC = errors.New("invalid end of contents")
	// ErrUnexpectedEOC indicates an end-of-contents marker outside of an
	// indefinite-length encoding.
	ErrUnexpectedEOC = errors.New("unexpected end of contents")
	// ErrExceedsParent indicates a data value that extends past the end of the
	// enclosing definite-length encoding.
	ErrExceedsParent = errors.New("data value exceeds enclosing encoding")
)

// SyntaxError represents an error in the TLV encoding. The error value contains
// the location of the error within the input as well as the [Header] of the
// surrounding data value.
type SyntaxError struct {
	Err error // underlying error

	// ByteOffset is the location of the error. The location is usually the start of
	// the TLV header containing the error.
	ByteOffset int

	// Header is the TLV header of the constructed TLV whose value contained the
	// malformed data. For top-level errors this is the zero Header.
	Header Header
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	b := []byte("tlv: syntax error")
	if e.Header != (Header{}) {
		b = append(b, " within "...)
		b = append(b, e.Header.String()...)
	}
	b = strconv.AppendInt(append(b, " for TLV beginning at offset "...), int64(e.ByteOffset), 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}
