// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"fmt"

	"codello.dev/kasn1"
	"codello.dev/kasn1/internal/vlq"
)

// segments calls fn for every primitive segment of a string type. A primitive
// element is its own only segment. The children of a constructed element must
// all be tagged with tag. They are visited recursively in order.
func (e *Element) segments(tag kasn1.Tag, fn func(s *Element) error) error {
	if e.children == nil {
		return fn(e)
	}
	for _, c := range e.children {
		if c.tag != tag {
			return &Error{KindType, e.tag, fmt.Errorf("segment %s in constructed %s", c.tag, tag)}
		}
		if err := c.segments(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

//region [UNIVERSAL 3] BIT STRING

// BitString interprets the contents of e as a BIT STRING. The first content
// byte holds the number of unused bits in the last byte, which must be between
// 0 and 7 and must be 0 if there are no other bytes. Unused bits are returned
// as zero.
//
// If e is constructed its children must be BIT STRING segments. Only the last
// segment may have unused bits.
func (e *Element) BitString() (kasn1.BitString, error) {
	var buf []byte
	unused := byte(0)
	err := e.segments(tagBitString, func(s *Element) error {
		if len(s.value) == 0 {
			return valueError(s.tag, "empty BIT STRING")
		}
		if unused != 0 {
			return valueError(e.tag, "unused bits in non-final BIT STRING segment")
		}
		unused = s.value[0]
		if unused > 7 || len(s.value) == 1 && unused != 0 {
			return valueError(s.tag, "invalid number of unused bits in BIT STRING")
		}
		buf = append(buf, s.value[1:]...)
		return nil
	})
	if err != nil {
		return kasn1.BitString{}, err
	}
	if len(buf) > 0 {
		// zero out padding bits
		buf[len(buf)-1] &^= 1<<unused - 1
	}
	return kasn1.BitString{Bytes: buf, BitLength: len(buf)*8 - int(unused)}, nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString returns the contents of an OCTET STRING. If e is constructed, its
// children must be OCTET STRING segments whose contents are concatenated.
func (e *Element) OctetString() ([]byte, error) {
	if e.children == nil {
		return e.Value(), nil
	}
	var buf []byte
	err := e.segments(tagOctetString, func(s *Element) error {
		buf = append(buf, s.value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if buf == nil {
		buf = []byte{}
	}
	return buf, nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// ObjectIdentifier interprets the contents of e as an OBJECT IDENTIFIER. The
// first byte encodes the first two arcs and must be less than 120. The remaining
// arcs are base-128 encoded.
func (e *Element) ObjectIdentifier() (kasn1.ObjectIdentifier, error) {
	if err := e.ExpectPrimitive(); err != nil {
		return nil, err
	}
	if len(e.value) == 0 {
		return nil, valueError(e.tag, "empty OBJECT IDENTIFIER")
	}
	if e.value[0] >= 120 {
		return nil, valueError(e.tag, "invalid first subidentifier in OBJECT IDENTIFIER")
	}

	// In the worst case, we get two elements from the first byte (which is
	// encoded differently) and then every varint is a single byte long.
	oid := make(kasn1.ObjectIdentifier, 2, len(e.value)+1)
	oid[0] = uint(e.value[0] / 40)
	oid[1] = uint(e.value[0] % 40)
	for rest := e.value[1:]; len(rest) > 0; {
		arc, n, err := vlq.Decode[uint](rest, 0)
		switch err {
		case nil:
		case vlq.ErrTruncated:
			return nil, valueError(e.tag, "unterminated subidentifier in OBJECT IDENTIFIER")
		default:
			return nil, &Error{KindValue, e.tag, err}
		}
		oid = append(oid, arc)
		rest = rest[n:]
	}
	return oid, nil
}

// OID returns the dot-separated notation of the OBJECT IDENTIFIER in e.
func (e *Element) OID() (string, error) {
	oid, err := e.ObjectIdentifier()
	if err != nil {
		return "", err
	}
	return oid.String(), nil
}

//endregion
