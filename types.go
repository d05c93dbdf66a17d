// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kasn1

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
	"unsafe"
)

//region [UNIVERSAL 3] BIT STRING

// BitString implements the ASN.1 BIT STRING type. A bit string is padded up to
// the nearest byte in memory and the number of valid bits is recorded. Padding
// bits will be encoded and decoded as zero bits.
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	Bytes     []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// IsValid reports whether there are enough bytes in s for the indicated
// BitLength and no surplus bytes.
func (s BitString) IsValid() bool {
	return s.BitLength >= 0 && len(s.Bytes) == (s.BitLength+8-1)/8
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// Unused returns the number of padding bits in the last byte of s.
func (s BitString) Unused() int {
	return len(s.Bytes)*8 - s.BitLength
}

// At returns the bit at the given index. If the index is out of range At panics.
//
// Kerberos uses bit strings for ticket and KDC option flags. Bit 0 is the most
// significant bit of the first byte.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(s.Bytes[x]>>y) & 1
}

// String formats s into a readable binary representation. Bits will be grouped
// into bytes. The last group may have fewer than 8 characters.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.BitLength + s.BitLength/8)
	for i := 0; i < s.BitLength; i++ {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of an
// object identifier are specified in [Rec. ITU-T X.660].
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier []uint

// ErrInvalidOID indicates that a dotted string does not denote an object
// identifier that can be encoded.
var ErrInvalidOID = errors.New("invalid object identifier")

// ParseObjectIdentifier parses the dot-separated notation of an object
// identifier. Arcs may contain leading zeros. The first arc must be 0, 1 or 2
// and the second arc must be less than 40 so that both fit into the first
// encoded subidentifier.
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, &OIDError{s, ErrInvalidOID}
	}
	oid := make(ObjectIdentifier, len(parts))
	for i, p := range parts {
		if p == "" || p[0] == '+' || p[0] == '-' {
			return nil, &OIDError{s, ErrInvalidOID}
		}
		v, err := strconv.ParseUint(p, 10, bits.UintSize)
		if err != nil {
			return nil, &OIDError{s, fmt.Errorf("%w: %w", ErrInvalidOID, err)}
		}
		oid[i] = uint(v)
	}
	if !oid.IsValid() {
		return nil, &OIDError{s, ErrInvalidOID}
	}
	return oid, nil
}

// OIDError describes a failure to parse the string form of an object
// identifier.
type OIDError struct {
	Value string
	Err   error
}

func (e *OIDError) Error() string {
	return "asn1: cannot parse OID " + strconv.Quote(e.Value) + ": " + e.Err.Error()
}

func (e *OIDError) Unwrap() error {
	return e.Err
}

// IsValid reports whether oid has at least two arcs and its first two arcs can
// be combined into a single subidentifier.
func (oid ObjectIdentifier) IsValid() bool {
	return len(oid) >= 2 && oid[0] <= 2 && oid[1] < 40
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid, other)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 20)
	for i, v := range oid {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendUint(buf, uint64(v), 10))
	}

	return s.String()
}

//endregion

//region [UNIVERSAL 12] UTF8String

// UTF8String represents the ASN.1 UTF8String type. It can only hold valid UTF-8
// values that do not contain Unicode noncharacters.
//
// See also section 41 of Rec. ITU-T X.680.
type UTF8String string

// IsValid reports whether s is a valid UTF-8 string without noncharacters.
func (s UTF8String) IsValid() bool {
	if !utf8.ValidString(string(s)) {
		return false
	}
	for _, r := range s {
		if IsNoncharacter(r) {
			return false
		}
	}
	return true
}

// IsNoncharacter reports whether r is one of the 66 Unicode noncharacters:
// U+FDD0 through U+FDEF and the last two code points of every plane.
func IsNoncharacter(r rune) bool {
	return r >= 0xFDD0 && r <= 0xFDEF || r&0xFFFE == 0xFFFE
}

//endregion

//region [UNIVERSAL 18] NumericString

// NumericString corresponds to the ASN.1 NumericString type. A NumericString
// can only consist of the digits 0-9 and space. Note that it is possible to
// create NumericString values in Go that violate this constraint. Use the
// IsValid method to check whether a string's contents are numeric.
//
// See also section 41 of Rec. ITU-T X.680.
type NumericString string

// IsValid reports whether s consists only of allowed numeric characters.
func (s NumericString) IsValid() bool {
	return allBytes(string(s), IsNumeric)
}

// IsNumeric reports whether b can appear in an ASN.1 NumericString.
func IsNumeric(b byte) bool {
	return '0' <= b && b <= '9' || b == ' '
}

//endregion

//region [UNIVERSAL 19] PrintableString

// PrintableString represents the ASN.1 type PrintableString. A printable string
// can only contain the following ASCII characters:
//
//	A-Z	// upper case letters
//	a-z	// lower case letters
//	0-9	// digits
//	 	// space
//	'	// apostrophe
//	()	// Parenthesis
//	+-/	// plus, hyphen, solidus
//	.,:	// fill stop, comma, colon
//	=	// equals sign
//	?	// question mark
//
// Unlike some other implementations the asterisk and the ampersand are not
// accepted.
//
// See also section 41 of Rec. ITU-T X.680.
type PrintableString string

// IsValid reports whether s consists only of printable characters.
func (s PrintableString) IsValid() bool {
	return allBytes(string(s), IsPrintable)
}

// IsPrintable reports whether the given b is in the ASN.1 PrintableString set.
func IsPrintable(b byte) bool {
	return 'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		'\'' <= b && b <= ')' ||
		'+' <= b && b <= '/' ||
		b == ' ' ||
		b == ':' ||
		b == '=' ||
		b == '?'
}

//endregion

//region [UNIVERSAL 20] TeletexString (T61String)

// TeletexString represents the ASN.1 TeletexString type. The T.61 character
// repertoire is not implemented. Instead the string is treated as ISO 8859-1,
// which is what the overwhelming majority of encoders actually produce.
//
// See also section 41 of Rec. ITU-T X.680.
type TeletexString string

// IsValid reports whether every character of s is in the Latin-1 range.
func (s TeletexString) IsValid() bool {
	if !utf8.ValidString(string(s)) {
		return false
	}
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

//endregion

//region [UNIVERSAL 22] IA5String

// IA5String represents the ASN.1 type IA5String. An IA5String must consist on
// ASCII characters only. Note that it is possible to create IA5String values in
// Go that violate this constraint. Use the IsValid method to check whether a
// string's contents are ASCII only.
//
// See also section 41 of Rec. ITU-T X.680.
type IA5String string

// IsValid reports whether the contents of s consist only of ASCII characters.
func (s IA5String) IsValid() bool {
	return allBytes(string(s), IsIA5)
}

// IsIA5 reports whether b is an ASCII character.
func IsIA5(b byte) bool {
	return b < utf8.RuneSelf
}

//endregion

//region [UNIVERSAL 23] UTCTime

// UTCTime represents the corresponding ASN.1 type. Only dates between
// 1950 and 2049 can be represented by this type.
//
// See also section 47 of Rec. ITU-T X.680.
type UTCTime time.Time

// IsValid reports whether the year of t is between 1950 and 2049.
func (t UTCTime) IsValid() bool {
	year := time.Time(t).Year()
	return year >= 1950 && year < 2050
}

// String returns the time of t in the format YYMMDDhhmmssZ or YYMMDDhhmmss+hhmm.
func (t UTCTime) String() string {
	tt := time.Time(t)
	b := strings.Builder{}
	b.Grow(17)
	b.WriteString(itoaN(tt.Year()%100, 2))
	b.WriteString(itoaN(int(tt.Month()), 2))
	b.WriteString(itoaN(tt.Day(), 2))
	b.WriteString(itoaN(tt.Hour(), 2))
	b.WriteString(itoaN(tt.Minute(), 2))
	b.WriteString(itoaN(tt.Second(), 2))
	writeZone(&b, tt)
	return b.String()
}

// IsTimeChar reports whether b can appear in the string encoding of a UTCTime
// or GeneralizedTime value.
func IsTimeChar(b byte) bool {
	return '0' <= b && b <= '9' || b == 'Z' || b == '+' || b == '-' || b == '.' || b == ','
}

// itoaN returns the base 10 string representation of the absolute value of i,
// truncated or zero padded to exactly n digits.
func itoaN(i int, n int) string {
	if i < 0 {
		i = -i
	}
	bs := make([]byte, n)
	for ; n > 0; n-- {
		bs[n-1] = '0' + byte(i%10)
		i /= 10
	}
	return unsafe.String(unsafe.SliceData(bs), len(bs))
}

// writeZone appends the zone designator of t to b. Times in the local time zone
// are written without a designator.
func writeZone(b *strings.Builder, t time.Time) {
	if t.Location() == time.Local {
		return
	}
	_, offset := t.Zone()
	offset /= 60
	if offset == 0 {
		b.WriteByte('Z')
		return
	}
	if offset < 0 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	b.WriteString(itoaN(offset/60, 2))
	b.WriteString(itoaN(offset%60, 2))
}

//endregion

//region [UNIVERSAL 24] GeneralizedTime

// GeneralizedTime represents the corresponding ASN.1 type. This type can
// represent dates between years 1 and 9999.
//
// See also section 46 of Rec. ITU-T X.680.
type GeneralizedTime time.Time

// IsValid reports if the year of t is between 1 and 9999.
func (t GeneralizedTime) IsValid() bool {
	year := time.Time(t).Year()
	return year >= 1 && year <= 9999
}

// String returns a string representation of t that matches its representation
// in ASN.1 notation. A fractional part is only written if t has a nonzero
// sub-second component.
func (t GeneralizedTime) String() string {
	tt := time.Time(t)
	b := strings.Builder{}
	b.Grow(29) // allocate enough space for nanosecond precision
	b.WriteString(itoaN(tt.Year()%10000, 4))
	b.WriteString(itoaN(int(tt.Month()), 2))
	b.WriteString(itoaN(tt.Day(), 2))
	b.WriteString(itoaN(tt.Hour(), 2))
	b.WriteString(itoaN(tt.Minute(), 2))
	b.WriteString(itoaN(tt.Second(), 2))
	if tt.Nanosecond() > 0 {
		s := strconv.FormatFloat(float64(tt.Nanosecond())/float64(time.Second), 'f', -1, 64)
		b.WriteString(s[1:])
	}
	writeZone(&b, tt)
	return b.String()
}

//endregion

//region [UNIVERSAL 26] VisibleString

// VisibleString represents the corresponding ASN.1 type. It is limited to
// visible ASCII characters. In particular this does not include ASCII control
// characters. Note that it is possible to create VisibleString values in
// Go that violate this constraint. Use the IsValid method to check whether a
// string's contents are visible ASCII only.
//
// See also section 41 of Rec. ITU-T X.680.
type VisibleString string

// IsValid reports whether s only consists of visible ASCII characters.
func (s VisibleString) IsValid() bool {
	return allBytes(string(s), IsVisible)
}

// IsVisible reports whether b is a visible ASCII character or space.
func IsVisible(b byte) bool {
	return b >= ' ' && b < 0x7F
}

//endregion

//region [UNIVERSAL 27] GeneralString

// GeneralString represents the ASN.1 GeneralString type. The full ISO 2022
// escape machinery is not implemented. Kerberos restricts its GeneralString
// values to IA5String characters (RFC 4120, section 5.2.1) and so does this
// type.
type GeneralString string

// IsValid reports whether s consists only of ASCII characters.
func (s GeneralString) IsValid() bool {
	return allBytes(string(s), IsIA5)
}

//endregion

//region [UNIVERSAL 28] UniversalString

// UniversalString represents the corresponding ASN.1 type. A UniversalString
// can contain any Unicode character. Note that the Go type uses standard Go
// strings which are UTF-8 encoded. The encoding of a UniversalString in BER for
// example uses big endian UTF-32.
//
// In most cases [UTF8String] is a more appropriate type.
//
// See also section 41 of Rec. ITU-T X.680.
type UniversalString string

// IsValid reports whether s is valid UTF-8 without noncharacters. Note that
// this does not validate the encoding of a UniversalString but its Go
// representation.
func (s UniversalString) IsValid() bool {
	return UTF8String(s).IsValid()
}

//endregion

//region [UNIVERSAL 30] BMPString

// BMPString represents the corresponding ASN.1 type. A BMPString can hold any
// character of the Unicode Basic Multilingual Plane. Note that this type uses
// standard Go strings which are UTF-8 encoded. The encoding of a BMPString in
// BER for example uses big endian UTF-16.
//
// In most cases [UTF8String] is a more appropriate type.
//
// See also section 41 of Rec. ITU-T X.680.
type BMPString string

// IsValid reports whether s only contains characters of the Basic Multilingual
// Plane that are not noncharacters.
func (s BMPString) IsValid() bool {
	if !utf8.ValidString(string(s)) {
		return false
	}
	for _, r := range s {
		if r > 0xFFFF || IsNoncharacter(r) {
			return false
		}
	}
	return true
}

//endregion

func allBytes(s string, f func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if !f(s[i]) {
			return false
		}
	}
	return true
}
