// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kasn1 defines the vocabulary shared by the packages of this module:
// ASN.1 tags and classes, the universal tag numbers, and Go representations of
// the ASN.1 values that need more than a byte slice, such as BIT STRING and
// OBJECT IDENTIFIER. The ASN.1 types are defined in [Rec. ITU-T X.680].
//
// The actual codec lives in subpackages. Package [codello.dev/kasn1/tlv]
// implements the syntactic tag-length-value layer and package
// [codello.dev/kasn1/ber] implements an immutable element tree on top of it,
// together with typed readers and constructors for the values used by the
// Kerberos protocol.
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package kasn1

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class and number. For
// details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint
}

// Universal returns the tag with number n in the [ClassUniversal] namespace.
func Universal(n uint) Tag { return Tag{ClassUniversal, n} }

// Application returns the tag with number n in the [ClassApplication]
// namespace. Kerberos messages use application tags for their outermost
// element, e.g. [APPLICATION 10] for AS-REQ.
func Application(n uint) Tag { return Tag{ClassApplication, n} }

// ContextSpecific returns the tag with number n in the [ClassContextSpecific]
// namespace.
func ContextSpecific(n uint) Tag { return Tag{ClassContextSpecific, n} }

// Private returns the tag with number n in the [ClassPrivate] namespace.
func Private(n uint) Tag { return Tag{ClassPrivate, n} }

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate go tool stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// IsValid reports whether t can be encoded: its class is valid and its number
// does not exceed [MaxTagNumber].
func (t Tag) IsValid() bool {
	return t.Class.IsValid() && t.Number <= MaxTagNumber
}

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// TagReserved is a reserved tag number in the [ClassUniversal] namespace to be
// used by encoding rules. BER uses it for the end-of-contents marker. This
// assignment is defined in Rec. ITU-T X.680, Section 8, Table 1.
const TagReserved = 0

// These are some ASN.1 tag numbers are defined in the [ClassUniversal]
// namespace. These assignments are defined in Rec. ITU-T X.680, Section 8, Table
// 1.
const (
	TagBoolean          uint = 1
	TagInteger          uint = 2
	TagBitString        uint = 3
	TagOctetString      uint = 4
	TagNull             uint = 5
	TagOID              uint = 6
	TagObjectDescriptor uint = 7
	TagExternal         uint = 8
	TagReal             uint = 9
	TagEnumerated       uint = 10
	TagEmbeddedPDV      uint = 11
	TagUTF8String       uint = 12
	TagRelativeOID      uint = 13
	TagTime             uint = 14
	TagSequence         uint = 16
	TagSet              uint = 17
	TagNumericString    uint = 18
	TagPrintableString  uint = 19
	TagTeletexString    uint = 20
	TagT61String             = TagTeletexString
	TagVideotexString   uint = 21
	TagIA5String        uint = 22
	TagUTCTime          uint = 23
	TagGeneralizedTime  uint = 24
	TagGraphicString    uint = 25
	TagVisibleString    uint = 26
	TagISO646String          = TagVisibleString
	TagGeneralString    uint = 27
	TagUniversalString  uint = 28
	TagCharacterString  uint = 29
	TagBMPString        uint = 30
)

// MaxTagNumber is the largest tag number this module accepts. Tag numbers are
// encoded in base 128 and are limited to 24 bits so that a malformed header
// cannot make a decoder accumulate an unbounded number.
const MaxTagNumber uint = 1<<24 - 1
