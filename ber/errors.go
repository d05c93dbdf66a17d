// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"strings"

	"codello.dev/kasn1"
)

// ErrorKind classifies an [Error].
//
//go:generate go tool stringer -type=ErrorKind -trimprefix=Kind
type ErrorKind uint8

const (
	// KindStructure indicates malformed TLV structure: truncated input, tag or
	// length overflow, invalid end-of-contents markers or trailing data.
	KindStructure ErrorKind = iota + 1
	// KindType indicates that an element does not have the expected tag or the
	// expected primitive or constructed encoding.
	KindType
	// KindValue indicates that the contents of an element are not a valid
	// encoding of the requested type.
	KindValue
)

var (
	// ErrStructure matches every [Error] of kind [KindStructure] using
	// [errors.Is].
	ErrStructure = errors.New("malformed encoding")
	// ErrType matches every [Error] of kind [KindType] using [errors.Is].
	ErrType = errors.New("unexpected element")
	// ErrValue matches every [Error] of kind [KindValue] using [errors.Is].
	ErrValue = errors.New("invalid value")

	// ErrTrailingData indicates bytes after the first complete element when an
	// exact-length decode was requested.
	ErrTrailingData = errors.New("trailing data after element")
	// ErrIntegerOverflow indicates an INTEGER whose magnitude exceeds the
	// range of the requested Go value.
	ErrIntegerOverflow = errors.New("integer overflow")
	// ErrMaxDepth indicates that constructed encodings are nested deeper than
	// [Decoder.MaxDepth] allows.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// Error is the error type of this package. Decoding, interpreting and
// constructing elements all report failures as an *Error. Use the Kind or
// [errors.Is] with [ErrStructure], [ErrType] and [ErrValue] to classify an
// error. The underlying cause is available through [errors.Unwrap].
type Error struct {
	Kind ErrorKind
	Tag  kasn1.Tag // tag of the element that caused the error, if known
	Err  error
}

func (e *Error) Error() string {
	var s strings.Builder
	s.WriteString("ber: ")
	if e.Kind == 0 {
		s.WriteString("error")
	} else {
		s.WriteString(strings.ToLower(e.Kind.String()))
		s.WriteString(" error")
	}
	if e.Tag != (kasn1.Tag{}) {
		s.WriteString(" in ")
		s.WriteString(e.Tag.String())
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the kind of e.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStructure:
		return e.Kind == KindStructure
	case ErrType:
		return e.Kind == KindType
	case ErrValue:
		return e.Kind == KindValue
	}
	return false
}

func structureError(tag kasn1.Tag, err error) *Error {
	return &Error{KindStructure, tag, err}
}

func typeError(tag kasn1.Tag, msg string) *Error {
	return &Error{KindType, tag, errors.New(msg)}
}

func valueError(tag kasn1.Tag, msg string) *Error {
	return &Error{KindValue, tag, errors.New(msg)}
}
