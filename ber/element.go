// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"codello.dev/kasn1"
	"codello.dev/kasn1/tlv"
)

// Element is a single BER data value: a tag, and either primitive contents or
// an ordered list of child elements. Elements are immutable. Methods that
// appear to modify an element, such as [MakeImplicit], return a new Element
// that may share memory with the original.
//
// Elements are created by [Decode] or one of the Make functions. The zero
// value is not a valid Element. An Element is safe for concurrent use by
// multiple goroutines.
type Element struct {
	tag      kasn1.Tag
	children []*Element // nil iff primitive
	value    []byte     // contents of a primitive element

	// raw is the complete encoding of a decoded element. Encoding a decoded
	// element copies raw instead of re-deriving the encoding.
	raw        []byte
	hdrLen     int
	indefinite bool

	once   sync.Once
	valLen int
	objLen int
}

// newDecoded returns an element whose lengths are known. The once of the
// returned element has already fired.
func newDecoded(tag kasn1.Tag, raw []byte, hdrLen, valLen int, indefinite bool) *Element {
	e := &Element{tag: tag, raw: raw, hdrLen: hdrLen, valLen: valLen, objLen: len(raw), indefinite: indefinite}
	e.once.Do(func() {})
	return e
}

// lengths computes valLen and objLen of an in-memory element once.
func (e *Element) lengths() {
	e.once.Do(func() {
		if e.children == nil {
			e.valLen = len(e.value)
		} else {
			for _, c := range e.children {
				e.valLen += c.EncodedLen()
			}
		}
		e.objLen = e.header().Len() + e.valLen
	})
}

// header returns the header used to encode an in-memory element.
func (e *Element) header() tlv.Header {
	return tlv.Header{Tag: e.tag, Constructed: e.children != nil, Length: e.valLen}
}

// Tag returns the tag of e.
func (e *Element) Tag() kasn1.Tag { return e.tag }

// Class returns the class of the tag of e.
func (e *Element) Class() kasn1.Class { return e.tag.Class }

// Number returns the number of the tag of e.
func (e *Element) Number() uint { return e.tag.Number }

// Constructed reports whether e uses the constructed encoding.
func (e *Element) Constructed() bool { return e.children != nil }

// Indefinite reports whether e was decoded from an indefinite-length encoding.
// Encoding e reproduces the indefinite-length form. Use [Element.Definite] to
// obtain an equivalent element that is encoded using definite lengths.
func (e *Element) Indefinite() bool { return e.indefinite }

// Children returns the child elements of a constructed element. The returned
// slice is a copy and may be modified by the caller. For primitive elements
// Children returns nil.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// NumChildren returns the number of child elements of e.
func (e *Element) NumChildren() int { return len(e.children) }

// Child returns the child element at index i or nil if there is no such child.
func (e *Element) Child(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Value returns a copy of the contents of a primitive element. For constructed
// elements Value returns nil.
func (e *Element) Value() []byte {
	if e.children != nil {
		return nil
	}
	return bytes.Clone(e.value)
}

// EncodedLen returns the number of bytes of the encoding of e, including its
// header and, for indefinite-length encodings, the end-of-contents marker.
func (e *Element) EncodedLen() int {
	e.lengths()
	return e.objLen
}

// ValueLen returns the length of the contents of e. For indefinite-length
// encodings this does not include the end-of-contents marker.
func (e *Element) ValueLen() int {
	e.lengths()
	return e.valLen
}

// HeaderLen returns the number of bytes of the identifier and length octets of
// e.
func (e *Element) HeaderLen() int {
	if e.raw != nil {
		return e.hdrLen
	}
	e.lengths()
	return e.objLen - e.valLen
}

// Is reports whether e has the specified tag.
func (e *Element) Is(tag kasn1.Tag) bool {
	return e.tag == tag
}

// ExpectTag returns an error of kind [KindType] if e does not have the
// specified tag.
func (e *Element) ExpectTag(tag kasn1.Tag) error {
	if e.tag != tag {
		return &Error{KindType, e.tag, fmt.Errorf("expected %s", tag)}
	}
	return nil
}

// ExpectConstructed returns an error of kind [KindType] if e is primitive.
func (e *Element) ExpectConstructed() error {
	if e.children == nil {
		return typeError(e.tag, "expected constructed encoding")
	}
	return nil
}

// ExpectPrimitive returns an error of kind [KindType] if e is constructed.
func (e *Element) ExpectPrimitive() error {
	if e.children != nil {
		return typeError(e.tag, "expected primitive encoding")
	}
	return nil
}

// Unwrap opens an explicit tag. It validates that e has the specified tag and
// consists of exactly one child and returns that child. This is the inverse of
// [MakeExplicit].
func (e *Element) Unwrap(tag kasn1.Tag) (*Element, error) {
	if err := e.ExpectTag(tag); err != nil {
		return nil, err
	}
	if err := e.ExpectConstructed(); err != nil {
		return nil, err
	}
	if len(e.children) != 1 {
		return nil, &Error{KindType, e.tag, fmt.Errorf("explicit tag with %d elements", len(e.children))}
	}
	return e.children[0], nil
}

// Equal reports whether e and other have the same tag and the same contents.
// Primitive contents are compared byte by byte, children are compared
// recursively. The length form used by an encoding is not significant.
func (e *Element) Equal(other *Element) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil || e.tag != other.tag {
		return false
	}
	if (e.children == nil) != (other.children == nil) {
		return false
	}
	if e.children == nil {
		return bytes.Equal(e.value, other.value)
	}
	return slices.EqualFunc(e.children, other.children, (*Element).Equal)
}

// String returns a single-line representation of e for debugging. Primitive
// contents are only included if they are short enough.
func (e *Element) String() string {
	var s strings.Builder
	e.writeString(&s)
	return s.String()
}

func (e *Element) writeString(s *strings.Builder) {
	s.WriteString(e.tag.String())
	if e.children == nil {
		if len(e.value) > 24 {
			fmt.Fprintf(s, " {%d bytes}", len(e.value))
		} else {
			fmt.Fprintf(s, " {% X}", e.value)
		}
		return
	}
	s.WriteString(" {")
	for i, c := range e.children {
		if i > 0 {
			s.WriteString(", ")
		}
		c.writeString(s)
	}
	s.WriteByte('}')
}
