// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

// Definite returns an element equal to e that is encoded using definite lengths
// and minimal headers throughout. Decoded elements are otherwise encoded
// exactly as they were decoded, which may include indefinite lengths and
// non-minimal length encodings. Primitive contents are shared with e.
//
// Definite does not otherwise canonicalize e. In particular constructed string
// encodings and the order of SET elements are preserved.
func (e *Element) Definite() *Element {
	if e.raw == nil && !e.hasRaw() {
		return e
	}
	if e.children == nil {
		return &Element{tag: e.tag, value: e.value}
	}
	children := make([]*Element, len(e.children))
	for i, c := range e.children {
		children[i] = c.Definite()
	}
	return &Element{tag: e.tag, children: children}
}

// hasRaw reports whether any descendant of e was decoded.
func (e *Element) hasRaw() bool {
	for _, c := range e.children {
		if c.raw != nil || c.hasRaw() {
			return true
		}
	}
	return false
}

// ToDefinite decodes the first data value in b and re-encodes it using
// definite lengths and minimal headers. Trailing data is an error.
func ToDefinite(b []byte) ([]byte, error) {
	e, err := Decoder{Exact: true}.Decode(b)
	if err != nil {
		return nil, err
	}
	return Encode(e.Definite()), nil
}
