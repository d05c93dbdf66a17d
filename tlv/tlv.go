// Package tlv implements the tag-length-value (TLV) format used by the Basic
// Encoding Rules (BER) and related encoding rules as specified in
// [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of TLV-encoding while package
// [codello.dev/kasn1/ber] deals with the semantic layer of BER.
//
// # Headers and Values
//
// In BER each value is encoded using a tag-length-value format. The tag and
// length (we call them a header) are represented by the [Header] type. Values
// can use the primitive or constructed encoding. Values using the constructed
// encoding are followed by more BER-encoded values and can either end
// implicitly (when using definite-length encoding) or explicitly using an
// end-of-contents marker (indefinite length).
//
// A [Cursor] reads headers from an in-memory buffer and keeps track of the
// enclosing constructed encoding so that length violations are detected as
// early as possible. Every error reported by a Cursor is a [*SyntaxError].
//
// A [Decoder] reads the same headers from an [io.Reader], one data value at a
// time. It is meant for inputs that should not be held in memory as a whole.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"strconv"

	"codello.dev/kasn1"
	"codello.dev/kasn1/internal/vlq"
)

// TagEndOfContents is the tag that signifies the end of a constructed element.
// You can use this constant for clarity, the following are the same:
//
//	tlv.Header{}
//	tlv.Header{Tag: tlv.TagEndOfContents}
//	tlv.EndOfContents
var TagEndOfContents = kasn1.Universal(kasn1.TagReserved)

// EndOfContents is the end-of-contents marker signalling the end of a
// constructed element. The following are equivalent:
//
//	tlv.Header{}
//	tlv.Header{Tag: tlv.TagEndOfContents}
//	tlv.EndOfContents
var EndOfContents = Header{Tag: TagEndOfContents}

// LengthIndefinite when used as a magic number for the length of a [Header]
// indicates that the data value is encoded using the constructed
// indefinite-length format.
const LengthIndefinite = -1

// MaxLength bounds the accumulation of long-form lengths. A length byte is
// only shifted into the length if the length accumulated so far is below this
// value, so decoded lengths always fit into 31 bits.
const MaxLength = 0x800000

// Header represents a TLV header. The [Header.Length] may be [LengthIndefinite]
// if an indefinite-length encoding is used. It is invalid to use the
// indefinite-length encoding when [Header.Constructed] = false.
type Header struct {
	Tag         kasn1.Tag
	Constructed bool
	Length      int
}

// IsEndOfContents reports whether h is a (possibly malformed) end-of-contents
// marker, i.e. whether it uses the reserved universal tag 0.
func (h Header) IsEndOfContents() bool {
	return h.Tag == TagEndOfContents
}

// String returns a string representation of h.
func (h Header) String() string {
	if h == (Header{}) {
		return "EndOfContents"
	}
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	if h.Length == LengthIndefinite {
		return s + ":indefinite"
	}
	return s + ":" + strconv.Itoa(h.Length)
}

// Len computes the number of bytes required to encode h. The tag number and
// the length use their minimal encodings. [Header.Append] will write this exact
// number of bytes.
func (h Header) Len() int {
	l := 1 // class, constructed, tag
	if h.Tag.Number >= 31 {
		// tag does not fit
		l += vlq.Len(h.Tag.Number)
	}
	l++ // length
	if h.Length == LengthIndefinite || h.Length < 128 {
		return l
	}
	// multi-byte length
	for hl := h.Length; hl > 0; hl >>= 8 {
		l++
	}
	return l
}

// Append appends the encoding of h to dst and returns the extended slice.
func (h Header) Append(dst []byte) []byte {
	b := byte(h.Tag.Class&0b11) << 6
	if h.Constructed {
		b |= 0x20
	}
	if h.Tag.Number < 31 {
		dst = append(dst, b|byte(h.Tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, h.Tag.Number)
	}

	switch {
	case h.Length == LengthIndefinite:
		return append(dst, 0x80)
	case h.Length < 128:
		return append(dst, byte(h.Length))
	}
	numBytes := 0
	for l := h.Length; l > 0; l >>= 8 {
		numBytes++
	}
	dst = append(dst, 0x80|byte(numBytes))
	for ; numBytes > 0; numBytes-- {
		dst = append(dst, byte(h.Length>>uint((numBytes-1)*8)))
	}
	return dst
}

// ParseHeader decodes the identifier and length octets at the beginning of b.
// It returns the header and the number of bytes it occupies. ParseHeader does
// not check whether the value fits into b, use a [Cursor] for that.
//
// The returned error is one of the sentinel errors of this package. It is not
// wrapped in a [SyntaxError].
func ParseHeader(b []byte) (h Header, n int, err error) {
	if len(b) == 0 {
		return h, 0, ErrTruncated
	}
	c := b[0]
	n = 1
	h.Tag = kasn1.Tag{Class: kasn1.Class(c >> 6), Number: uint(c & 0x1f)}
	h.Constructed = c&0x20 == 0x20

	// If the bottom five bits are set, then the tag number is actually base 128
	// encoded afterward
	if c&0x1f == 0x1f {
		num, m, err := vlq.Decode[uint](b[n:], 24)
		n += m
		switch err {
		case nil:
		case vlq.ErrOverflow:
			return h, n, ErrTagOverflow
		default:
			return h, n, ErrTruncated
		}
		h.Tag.Number = num
	}

	if n >= len(b) {
		return h, n, ErrTruncated
	}
	c = b[n]
	n++
	switch {
	case c&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.Length = int(c)
	case c == 0x80:
		h.Length = LengthIndefinite
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		numBytes := int(c & 0x7f)
		if n+numBytes > len(b) {
			return h, len(b), ErrTruncated
		}
		for _, c := range b[n : n+numBytes] {
			if h.Length >= MaxLength {
				// We can't shift h.Length up without overflowing.
				return h, n + numBytes, ErrLengthOverflow
			}
			h.Length = h.Length<<8 | int(c)
		}
		n += numBytes
	}

	if h.IsEndOfContents() && (h.Constructed || h.Length != 0) {
		return h, n, ErrInvalidEOC
	}
	if h.Length == LengthIndefinite && !h.Constructed {
		return h, n, ErrIndefinitePrimitive
	}
	return h, n, nil
}
