// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"codello.dev/kasn1"
)

var stringTypeNames = map[uint]string{
	kasn1.TagUTF8String:      "UTF8String",
	kasn1.TagNumericString:   "NumericString",
	kasn1.TagPrintableString: "PrintableString",
	kasn1.TagTeletexString:   "TeletexString",
	kasn1.TagIA5String:       "IA5String",
	kasn1.TagUTCTime:         "UTCTime",
	kasn1.TagGeneralizedTime: "GeneralizedTime",
	kasn1.TagVisibleString:   "VisibleString",
	kasn1.TagGeneralString:   "GeneralString",
	kasn1.TagUniversalString: "UniversalString",
	kasn1.TagBMPString:       "BMPString",
}

// IsStringType reports whether kind is the number of a universal string type
// supported by [Element.TextAs] and [MakeString].
func IsStringType(kind uint) bool {
	_, ok := stringTypeNames[kind]
	return ok
}

// Text interprets the contents of e as a string of the universal string type
// identified by the tag of e. Use [Element.TextAs] for implicitly tagged
// strings.
func (e *Element) Text() (string, error) {
	if e.tag.Class != kasn1.ClassUniversal || !IsStringType(e.tag.Number) {
		return "", typeError(e.tag, "not a string type")
	}
	return e.TextAs(e.tag.Number)
}

// TextAs interprets the contents of e as a string of the universal string type
// kind, regardless of the tag of e. If e is constructed, its children must be
// segments tagged with the universal tag kind.
//
// Single-byte string types are validated against their character sets.
// TeletexString is decoded as ISO 8859-1. UTF8String, BMPString and
// UniversalString may start with a byte order mark. For BMPString and
// UniversalString the byte order mark selects the byte order, big endian is
// used otherwise. Unpaired surrogates and Unicode noncharacters are rejected.
func (e *Element) TextAs(kind uint) (string, error) {
	if !IsStringType(kind) {
		return "", &Error{KindType, e.tag, fmt.Errorf("unsupported string type %d", kind)}
	}
	b := e.value
	if e.children != nil {
		b = nil
		err := e.segments(kasn1.Universal(kind), func(s *Element) error {
			b = append(b, s.value...)
			return nil
		})
		if err != nil {
			return "", err
		}
	}
	s, err := decodeString(kind, b)
	if err != nil {
		return "", &Error{KindValue, e.tag, err}
	}
	return s, nil
}

// decodeString decodes the contents b of a string of type kind into UTF-8.
func decodeString(kind uint, b []byte) (string, error) {
	var valid func(byte) bool
	switch kind {
	case kasn1.TagNumericString:
		valid = kasn1.IsNumeric
	case kasn1.TagPrintableString:
		valid = kasn1.IsPrintable
	case kasn1.TagIA5String, kasn1.TagGeneralString:
		valid = kasn1.IsIA5
	case kasn1.TagVisibleString:
		valid = kasn1.IsVisible
	case kasn1.TagUTCTime, kasn1.TagGeneralizedTime:
		valid = kasn1.IsTimeChar
	case kasn1.TagTeletexString:
		s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(s), err
	case kasn1.TagUTF8String:
		b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
		if s := kasn1.UTF8String(b); !s.IsValid() {
			return "", fmt.Errorf("invalid UTF8String %q", b)
		}
		return string(b), nil
	case kasn1.TagBMPString:
		return decodeUTF16(b)
	case kasn1.TagUniversalString:
		return decodeUTF32(b)
	}
	for i := 0; i < len(b); i++ {
		if !valid(b[i]) {
			return "", fmt.Errorf("invalid character %q at index %d in %q", b[i], i, b)
		}
	}
	return string(b), nil
}

// decodeUTF16 decodes a BMPString. A byte order mark is removed.
func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("BMPString length %d not a multiple of 2", len(b))
	}
	var order binary.ByteOrder = binary.BigEndian
	endianness := unicode.BigEndian
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE {
		order, endianness = binary.LittleEndian, unicode.LittleEndian
		b = b[2:]
	} else if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
	}
	for i := 0; i < len(b); i += 2 {
		u := rune(order.Uint16(b[i:]))
		switch {
		case 0xD800 <= u && u < 0xDC00:
			if i+4 > len(b) {
				return "", fmt.Errorf("unpaired surrogate at index %d", i)
			}
			lo := rune(order.Uint16(b[i+2:]))
			if lo < 0xDC00 || 0xE000 <= lo {
				return "", fmt.Errorf("unpaired surrogate at index %d", i)
			}
			u = 0x10000 + (u-0xD800)<<10 + (lo - 0xDC00)
			i += 2
		case 0xDC00 <= u && u < 0xE000:
			return "", fmt.Errorf("unpaired surrogate at index %d", i)
		}
		if kasn1.IsNoncharacter(u) {
			return "", fmt.Errorf("noncharacter %U at index %d", u, i)
		}
	}
	s, err := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	return string(s), err
}

// decodeUTF32 decodes a UniversalString. A byte order mark is removed.
func decodeUTF32(b []byte) (string, error) {
	if len(b)%4 != 0 {
		return "", fmt.Errorf("UniversalString length %d not a multiple of 4", len(b))
	}
	var order binary.ByteOrder = binary.BigEndian
	endianness := utf32.BigEndian
	if bytes.HasPrefix(b, []byte{0xFF, 0xFE, 0x00, 0x00}) {
		order, endianness = binary.LittleEndian, utf32.LittleEndian
		b = b[4:]
	} else if bytes.HasPrefix(b, []byte{0x00, 0x00, 0xFE, 0xFF}) {
		b = b[4:]
	}
	for i := 0; i < len(b); i += 4 {
		u := order.Uint32(b[i:])
		if u > utf8.MaxRune || 0xD800 <= u && u < 0xE000 {
			return "", fmt.Errorf("invalid code point %#x at index %d", u, i)
		}
		if kasn1.IsNoncharacter(rune(u)) {
			return "", fmt.Errorf("noncharacter %U at index %d", rune(u), i)
		}
	}
	s, err := utf32.UTF32(endianness, utf32.IgnoreBOM).NewDecoder().Bytes(b)
	return string(s), err
}

// encodeString validates s for the string type kind and returns its contents
// encoding. BMPString and UniversalString use big endian without a byte order
// mark.
func encodeString(kind uint, s string) ([]byte, error) {
	var valid bool
	switch kind {
	case kasn1.TagNumericString:
		valid = kasn1.NumericString(s).IsValid()
	case kasn1.TagPrintableString:
		valid = kasn1.PrintableString(s).IsValid()
	case kasn1.TagIA5String:
		valid = kasn1.IA5String(s).IsValid()
	case kasn1.TagGeneralString:
		valid = kasn1.GeneralString(s).IsValid()
	case kasn1.TagVisibleString:
		valid = kasn1.VisibleString(s).IsValid()
	case kasn1.TagUTCTime, kasn1.TagGeneralizedTime:
		_, err := decodeString(kind, []byte(s))
		valid = err == nil
	case kasn1.TagUTF8String:
		valid = kasn1.UTF8String(s).IsValid()
	case kasn1.TagTeletexString:
		if !kasn1.TeletexString(s).IsValid() {
			break
		}
		b, err := charmap.ISO8859_1.NewEncoder().String(s)
		return []byte(b), err
	case kasn1.TagBMPString:
		if !kasn1.BMPString(s).IsValid() {
			break
		}
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	case kasn1.TagUniversalString:
		if !kasn1.UniversalString(s).IsValid() {
			break
		}
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	}
	if !valid {
		return nil, fmt.Errorf("invalid %s %q", stringTypeNames[kind], s)
	}
	return []byte(s), nil
}
