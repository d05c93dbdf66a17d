// Package vlq implements [Variable-length quantity] encoding as used in MIDI or
// BER. A VLQ is essentially a base-128 representation of an unsigned integer
// with the addition of the eighth bit to mark continuation of bytes. VLQ is
// identical to [LEB128] except in endianness.
//
// BER uses VLQs for high tag numbers and for the subidentifiers of object
// identifiers. This package works on byte slices because the codec always
// holds the complete encoding in memory.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
// [LEB128]: https://en.wikipedia.org/wiki/LEB128
package vlq

import (
	"errors"
	"math/bits"
	"unsafe"
)

var (
	// ErrTruncated indicates that the input ended while the continuation bit of
	// the last byte was still set.
	ErrTruncated = errors.New("vlq is truncated")
	// ErrOverflow indicates that the value does not fit into the allowed number
	// of bits.
	ErrOverflow = errors.New("vlq too large for target type")
)

// Unsigned is the set of types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Decode parses an unsigned VLQ from the beginning of b and returns the value
// and the number of bytes consumed. The value may use at most maxBits
// significant bits. If maxBits is zero or exceeds the size of T, the size of T
// is used instead.
//
// Decode ignores an arbitrary amount of leading zeros (encoded as 0x80 bytes).
func Decode[T Unsigned](b []byte, maxBits int) (ret T, n int, err error) {
	if size := int(unsafe.Sizeof(ret) * 8); maxBits <= 0 || maxBits > size {
		maxBits = size
	}
	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > maxBits {
			return 0, n, ErrOverflow
		}
		ret = ret<<7 | T(c&0x7f)
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, n, ErrTruncated
}

// Len returns the number of bytes needed to encode n as a VLQ.
func Len[T Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the minimal VLQ encoding of i to dst and returns the extended
// slice.
func Append[T Unsigned](dst []byte, i T) []byte {
	for j := Len(i) - 1; j >= 0; j-- {
		b := byte(i>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
