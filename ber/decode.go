// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"fmt"

	"codello.dev/kasn1"
	"codello.dev/kasn1/tlv"
)

// Decode parses the first complete BER-encoded data value in
// b[offset:offset+length] and returns it as an [Element]. The range is copied
// before decoding so the returned element does not alias b. If exact is true,
// the data value must span the entire range, otherwise Decode fails with
// [ErrTrailingData].
//
// Decode accepts both definite and indefinite-length encodings. Decode is
// equivalent to
//
//	Decoder{Exact: exact}.DecodeRange(b, offset, length)
func Decode(b []byte, offset, length int, exact bool) (*Element, error) {
	return Decoder{Exact: exact}.DecodeRange(b, offset, length)
}

// A Decoder decodes BER data values. The zero value is a valid Decoder that
// does not limit the nesting depth and ignores trailing data.
type Decoder struct {
	// MaxDepth limits the number of nested constructed encodings. A value of
	// zero means no limit. Decoding untrusted input should set a limit.
	MaxDepth int

	// Exact requires the data value to span the entire input.
	Exact bool
}

// Decode parses the first data value in b. See [Decoder.DecodeRange].
func (d Decoder) Decode(b []byte) (*Element, error) {
	return d.DecodeRange(b, 0, len(b))
}

// DecodeRange parses the first data value in b[offset:offset+length]. The range
// is copied, the returned element shares a single backing buffer with all of
// its children.
//
// All errors are of type [*Error]. Errors caused by malformed encodings wrap a
// [*tlv.SyntaxError] that reports the location of the error relative to the
// beginning of b.
func (d Decoder) DecodeRange(b []byte, offset, length int) (*Element, error) {
	if offset < 0 || length < 0 || offset > len(b) || length > len(b)-offset {
		return nil, structureError(kasn1.Tag{}, &tlv.SyntaxError{Err: tlv.ErrTruncated, ByteOffset: offset})
	}
	buf := bytes.Clone(b[offset : offset+length])
	c := tlv.NewCursor(buf, offset)
	e, err := d.decode(c, 0)
	if err != nil {
		return nil, err
	}
	if d.Exact && c.Len() > 0 {
		return nil, structureError(e.tag, fmt.Errorf("%w: %d bytes at offset %d", ErrTrailingData, c.Len(), offset+c.Offset()))
	}
	return e, nil
}

// decode parses the data value at the current position of c. Constructed
// encodings are decoded recursively.
func (d Decoder) decode(c *tlv.Cursor, depth int) (*Element, error) {
	start := c.Offset()
	h, err := c.ReadHeader()
	if err != nil {
		return nil, structureError(kasn1.Tag{}, err)
	}
	if h.IsEndOfContents() {
		// end-of-contents is only valid at the end of an indefinite-length encoding
		return nil, structureError(h.Tag, c.Errorf(start, tlv.ErrUnexpectedEOC))
	}
	hdrLen := c.Offset() - start

	if !h.Constructed {
		value, err := c.ReadValue(h.Length)
		if err != nil {
			return nil, structureError(h.Tag, err)
		}
		e := newDecoded(h.Tag, c.Bytes(start), hdrLen, h.Length, false)
		e.value = value
		return e, nil
	}

	if d.MaxDepth > 0 && depth >= d.MaxDepth {
		return nil, structureError(h.Tag, c.Errorf(start, ErrMaxDepth))
	}
	children := make([]*Element, 0, 4)
	sub := c.Enter(h)
	valLen := h.Length
	if h.Length == tlv.LengthIndefinite {
		for !sub.AtEndOfContents() {
			if sub.Len() == 0 {
				// missing end-of-contents
				return nil, structureError(h.Tag, sub.Errorf(sub.Offset(), tlv.ErrTruncated))
			}
			child, err := d.decode(sub, depth+1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		valLen = sub.Offset() - start - hdrLen
		if _, err = sub.ReadHeader(); err != nil {
			return nil, structureError(h.Tag, err)
		}
	} else {
		for sub.Len() > 0 {
			child, err := d.decode(sub, depth+1)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}
	c.Leave(sub)

	e := newDecoded(h.Tag, c.Bytes(start), hdrLen, valLen, h.Length == tlv.LengthIndefinite)
	e.children = children
	return e, nil
}
