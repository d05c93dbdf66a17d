// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"fmt"
	"math/big"
	"slices"
	"time"

	"codello.dev/kasn1"
	"codello.dev/kasn1/internal/vlq"
)

// The Make functions construct new elements in memory. Primitive constructors
// copy their input. Constructors that create universal types use the universal
// tag of the type. Use [MakeImplicit] to change the tag.

//region primitive elements

// MakePrimitive returns a primitive element with the specified tag and a copy
// of value as its contents. It panics if tag is not valid.
func MakePrimitive(tag kasn1.Tag, value []byte) *Element {
	mustBeValid(tag)
	return newPrimitive(tag, bytes.Clone(value))
}

// mustBeValid panics if tag cannot be encoded. Encoding such a tag would
// produce data that [Decode] rejects.
func mustBeValid(tag kasn1.Tag) {
	if !tag.IsValid() {
		panic(fmt.Sprintf("ber: invalid tag %v (tag numbers are limited to %d)", tag, kasn1.MaxTagNumber))
	}
}

// newPrimitive returns a primitive element that takes ownership of value.
func newPrimitive(tag kasn1.Tag, value []byte) *Element {
	if value == nil {
		value = []byte{}
	}
	return &Element{tag: tag, value: value}
}

// MakeBool returns a BOOLEAN element. True is encoded as 0xFF.
func MakeBool(v bool) *Element {
	if v {
		return newPrimitive(tagBoolean, []byte{0xFF})
	}
	return newPrimitive(tagBoolean, []byte{0x00})
}

// MakeNull returns a NULL element.
func MakeNull() *Element {
	return newPrimitive(tagNull, nil)
}

// MakeInt returns an INTEGER element using the minimal two's complement
// encoding of v.
func MakeInt(v int64) *Element {
	return newPrimitive(tagInteger, appendInt(make([]byte, 0, 8), v))
}

// MakeBigInt returns an INTEGER element using the minimal two's complement
// encoding of v.
func MakeBigInt(v *big.Int) *Element {
	return newPrimitive(tagInteger, bigIntBytes(v))
}

// MakeIntBytes returns an INTEGER element whose contents are a copy of b,
// which must be the big-endian two's complement representation of an integer.
// An empty b is encoded as zero.
func MakeIntBytes(b []byte) *Element {
	if len(b) == 0 {
		return newPrimitive(tagInteger, []byte{0x00})
	}
	return MakePrimitive(tagInteger, b)
}

// MakeBitString returns a BIT STRING element holding the bits of s. Padding
// bits are encoded as zero. MakeBitString returns an error if s is not valid.
func MakeBitString(s kasn1.BitString) (*Element, error) {
	if !s.IsValid() {
		return nil, valueError(tagBitString, "invalid BIT STRING length")
	}
	return MakeBitStringUnused(s.Bytes, s.Unused())
}

// MakeBitStringUnused returns a BIT STRING element with the specified data
// whose last unused bits are not part of the value. Unused bits are encoded as
// zero. The number of unused bits must be between 0 and 7 and must be 0 if data
// is empty.
//
// Kerberos flag fields are usually encoded as 32-bit strings without unused
// bits.
func MakeBitStringUnused(data []byte, unused int) (*Element, error) {
	if unused < 0 || unused > 7 || len(data) == 0 && unused != 0 {
		return nil, valueError(tagBitString, "invalid number of unused bits in BIT STRING")
	}
	value := make([]byte, 1+len(data))
	value[0] = byte(unused)
	copy(value[1:], data)
	if len(data) > 0 {
		value[len(value)-1] &^= 1<<unused - 1
	}
	return newPrimitive(tagBitString, value), nil
}

// MakeOctetString returns an OCTET STRING element containing a copy of b.
func MakeOctetString(b []byte) *Element {
	return MakePrimitive(tagOctetString, b)
}

// MakeOID returns an OBJECT IDENTIFIER element from its dot-separated notation.
// Arcs may contain leading zeros. The first arc must be 0, 1 or 2 and the
// second arc must be less than 40.
func MakeOID(s string) (*Element, error) {
	oid, err := kasn1.ParseObjectIdentifier(s)
	if err != nil {
		return nil, &Error{KindValue, tagOID, err}
	}
	return MakeObjectIdentifier(oid)
}

// MakeObjectIdentifier returns an OBJECT IDENTIFIER element.
func MakeObjectIdentifier(oid kasn1.ObjectIdentifier) (*Element, error) {
	if !oid.IsValid() {
		return nil, &Error{KindValue, tagOID, kasn1.ErrInvalidOID}
	}
	value := make([]byte, 1, len(oid)+4)
	value[0] = byte(oid[0]*40 + oid[1])
	for _, arc := range oid[2:] {
		value = vlq.Append(value, arc)
	}
	return newPrimitive(tagOID, value), nil
}

// MakeString returns a string element of the universal string type kind. The
// string is validated against the character set of kind and encoded as
// described in [Element.TextAs]. BMPString and UniversalString are encoded as
// big endian without a byte order mark.
func MakeString(kind uint, s string) (*Element, error) {
	tag := kasn1.Universal(kind)
	if !IsStringType(kind) {
		return nil, &Error{KindType, tag, fmt.Errorf("unsupported string type %d", kind)}
	}
	value, err := encodeString(kind, s)
	if err != nil {
		return nil, &Error{KindValue, tag, err}
	}
	return newPrimitive(tag, value), nil
}

// MakeTime returns a time element of type kind, which must be
// [kasn1.TagUTCTime] or [kasn1.TagGeneralizedTime]. The time is converted to
// UTC. A UTCTime can only represent the years 1950 through 2049 and is encoded
// with seconds. A GeneralizedTime can represent the years 1 through 9999 and
// is encoded with millisecond precision. Fractional seconds are only written
// if they are nonzero.
func MakeTime(kind uint, t time.Time) (*Element, error) {
	t = t.UTC()
	tag := kasn1.Universal(kind)
	var s string
	switch kind {
	case kasn1.TagUTCTime:
		if !kasn1.UTCTime(t).IsValid() {
			return nil, &Error{KindValue, tag, fmt.Errorf("year %d out of range for UTCTime", t.Year())}
		}
		s = kasn1.UTCTime(t).String()
	case kasn1.TagGeneralizedTime:
		t = t.Truncate(time.Millisecond)
		if !kasn1.GeneralizedTime(t).IsValid() {
			return nil, &Error{KindValue, tag, fmt.Errorf("year %d out of range for GeneralizedTime", t.Year())}
		}
		s = kasn1.GeneralizedTime(t).String()
	default:
		return nil, &Error{KindType, tag, fmt.Errorf("unsupported time type %d", kind)}
	}
	return newPrimitive(tag, []byte(s)), nil
}

// MakeTimeAuto returns a UTCTime element if the year of t in UTC is between
// 1950 and 2049 and a GeneralizedTime element otherwise.
func MakeTimeAuto(t time.Time) (*Element, error) {
	if kasn1.UTCTime(t.UTC()).IsValid() {
		return MakeTime(kasn1.TagUTCTime, t)
	}
	return MakeTime(kasn1.TagGeneralizedTime, t)
}

//endregion

//region constructed elements

// MakeConstructed returns a constructed element with the specified tag and
// children. The children are used in order. It panics if tag is not valid.
func MakeConstructed(tag kasn1.Tag, children ...*Element) *Element {
	mustBeValid(tag)
	c := make([]*Element, len(children))
	copy(c, children)
	return &Element{tag: tag, children: c}
}

// MakeSequence returns a SEQUENCE element with the specified children.
func MakeSequence(children ...*Element) *Element {
	return MakeConstructed(tagSequence, children...)
}

// MakeSet returns a SET element with the specified children in the specified
// order.
func MakeSet(children ...*Element) *Element {
	return MakeConstructed(tagSet, children...)
}

// MakeSetOf returns a SET OF element in canonical form: the children are
// converted to definite lengths (see [Element.Definite]), ordered by their
// encodings and children with identical encodings are only included once. If
// one encoding is a prefix of another, the shorter encoding comes first. The
// result does not depend on the order of children.
func MakeSetOf(children ...*Element) *Element {
	type encoded struct {
		e *Element
		b []byte
	}
	encs := make([]encoded, len(children))
	for i, c := range children {
		d := c.Definite()
		encs[i] = encoded{d, Encode(d)}
	}
	slices.SortFunc(encs, func(a, b encoded) int {
		return bytes.Compare(a.b, b.b)
	})
	encs = slices.CompactFunc(encs, func(a, b encoded) bool {
		return bytes.Equal(a.b, b.b)
	})
	c := make([]*Element, len(encs))
	for i, enc := range encs {
		c[i] = enc.e
	}
	return &Element{tag: tagSet, children: c}
}

// MakeExplicit returns a constructed element with the specified tag whose only
// child is e. This implements explicit tagging. It panics if tag is not valid.
func MakeExplicit(tag kasn1.Tag, e *Element) *Element {
	mustBeValid(tag)
	return &Element{tag: tag, children: []*Element{e}}
}

// MakeImplicit returns an element with the specified tag and the contents of e.
// This implements implicit tagging. The contents are not copied: a primitive
// result shares its contents with e and a constructed result has the same
// children as e. It panics if tag is not valid.
func MakeImplicit(tag kasn1.Tag, e *Element) *Element {
	mustBeValid(tag)
	if e.children == nil {
		return &Element{tag: tag, value: e.value}
	}
	return &Element{tag: tag, children: e.children}
}

//endregion
