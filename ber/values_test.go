// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"codello.dev/kasn1"
)

// testCase represents an encoding or decoding test case. For encoding cases
// constructing an element from val should result in data. For decoding cases
// interpreting the element decoded from data should result in val.
type testCase[T any] struct {
	val     T
	data    []byte
	wantErr error
}

// codec bundles the functions under test for a value type T.
type codec[T any] struct {
	make  func(T) (*Element, error)
	read  func(*Element) (T, error)
	equal func(a, b T) bool // optional, defaults to reflect.DeepEqual
}

// testCodec runs the tests specified as arguments. Common tests are tested for
// both construction and interpretation. The marshal and unmarshal tests are
// only run for the respective direction.
func testCodec[T any](t *testing.T, c codec[T], common, marshal, unmarshal map[string]testCase[T]) {
	t.Helper()
	t.Run("Make", func(t *testing.T) {
		t.Helper()
		testMake(t, c, common)
		testMake(t, c, marshal)
	})
	t.Run("Read", func(t *testing.T) {
		t.Helper()
		testRead(t, c, common)
		testRead(t, c, unmarshal)
	})
}

// testMake constructs an element from tc.val and validates that its encoding
// matches tc.data. If tc.wantErr is not nil, construction is expected to fail
// with an error matching tc.wantErr.
func testMake[T any](t *testing.T, c codec[T], tests map[string]testCase[T]) {
	t.Helper()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Helper()
			e, err := c.make(tc.val)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("Make(%v) error = %v, wantErr %v", tc.val, err, tc.wantErr)
				}
				return
			} else if err != nil {
				t.Fatalf("Make(%v) error = %v, wantErr nil", tc.val, err)
			}
			if got := Encode(e); !bytes.Equal(got, tc.data) {
				t.Errorf("Encode(Make(%v)) = % X, want % X", tc.val, got, tc.data)
			}
		})
	}
}

// testRead decodes tc.data and interprets the resulting element. The result
// is then asserted against tc.val. If tc.wantErr is non-nil decoding or
// interpreting is expected to return an error matching tc.wantErr.
func testRead[T any](t *testing.T, c codec[T], tests map[string]testCase[T]) {
	t.Helper()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Helper()
			e, err := Decode(tc.data, 0, len(tc.data), true)
			var got T
			if err == nil {
				got, err = c.read(e)
			}
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("read(% X) error = %v, wantErr %v", tc.data, err, tc.wantErr)
				}
				return
			} else if err != nil {
				t.Fatalf("read(% X) error = %v, wantErr nil", tc.data, err)
			}
			equal := c.equal
			if equal == nil {
				equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
			}
			if !equal(got, tc.val) {
				t.Errorf("read(% X) = %v, want %v", tc.data, got, tc.val)
			}
		})
	}
}

// infallible adapts a constructor that cannot fail.
func infallible[T any](f func(T) *Element) func(T) (*Element, error) {
	return func(v T) (*Element, error) {
		return f(v), nil
	}
}

//region [UNIVERSAL 1] BOOLEAN

func TestElement_Bool(t *testing.T) {
	testCodec(t, codec[bool]{infallible(MakeBool), (*Element).Bool, nil}, map[string]testCase[bool]{
		// Make & Read
		"True":  {val: true, data: []byte{0x01, 0x01, 0xFF}},
		"False": {val: false, data: []byte{0x01, 0x01, 0x00}},
	}, nil, map[string]testCase[bool]{
		// Read
		"NonZero":     {val: true, data: []byte{0x01, 0x01, 0x01}},
		"Empty":       {data: []byte{0x01, 0x00}, wantErr: ErrValue},
		"TooLong":     {data: []byte{0x01, 0x02, 0x00, 0x00}, wantErr: ErrValue},
		"Constructed": {data: []byte{0x21, 0x03, 0x01, 0x01, 0xFF}, wantErr: ErrType},
	})
}

//endregion

//region [UNIVERSAL 2] INTEGER

func TestElement_Int(t *testing.T) {
	testCodec(t, codec[int64]{infallible(MakeInt), (*Element).Int, nil}, map[string]testCase[int64]{
		// Make & Read
		"Zero":        {val: 0, data: []byte{0x02, 0x01, 0x00}},
		"MinusOne":    {val: -1, data: []byte{0x02, 0x01, 0xFF}},
		"127":         {val: 127, data: []byte{0x02, 0x01, 0x7F}},
		"128":         {val: 128, data: []byte{0x02, 0x02, 0x00, 0x80}},
		"Minus128":    {val: -128, data: []byte{0x02, 0x01, 0x80}},
		"Minus129":    {val: -129, data: []byte{0x02, 0x02, 0xFF, 0x7F}},
		"256":         {val: 256, data: []byte{0x02, 0x02, 0x01, 0x00}},
		"MaxInt":      {val: MaxInt, data: []byte{0x02, 0x08, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		"MinInt":      {val: MinInt, data: []byte{0x02, 0x08, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}},
		"Below48Bits": {val: -1 << 48, data: []byte{0x02, 0x07, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}, nil, map[string]testCase[int64]{
		// Read
		"NonMinimal":       {val: 1, data: []byte{0x02, 0x02, 0x00, 0x01}},
		"Overflow":         {data: []byte{0x02, 0x08, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, wantErr: ErrIntegerOverflow},
		"NegativeOverflow": {data: []byte{0x02, 0x08, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, wantErr: ErrIntegerOverflow},
		"Int64":            {data: []byte{0x02, 0x09, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, wantErr: ErrValue},
		"Empty":            {data: []byte{0x02, 0x00}, wantErr: ErrValue},
		"Constructed":      {data: []byte{0x22, 0x03, 0x02, 0x01, 0x01}, wantErr: ErrType},
	})
}

func TestElement_Int_boundary(t *testing.T) {
	for _, v := range []int64{0, -1, 127, 128, -129, MaxInt, MinInt, MaxInt + 1, MinInt - 1} {
		e, err := Decode(Encode(MakeInt(v)), 0, MakeInt(v).EncodedLen(), true)
		if err != nil {
			t.Fatalf("Decode(Encode(MakeInt(%d))) error = %v", v, err)
		}
		got, err := e.Int()
		if v > MaxInt || v < MinInt {
			if !errors.Is(err, ErrIntegerOverflow) || !errors.Is(err, ErrValue) {
				t.Errorf("Int() error = %v, want ErrIntegerOverflow for %d", err, v)
			}
			continue
		}
		if err != nil || got != v {
			t.Errorf("Int() = %d, %v, want %d", got, err, v)
		}
	}
}

func TestElement_IntRange(t *testing.T) {
	e := MakeInt(18)
	if v, err := e.IntRange(0, 18); err != nil || v != 18 {
		t.Errorf("IntRange(0, 18) = %d, %v", v, err)
	}
	if _, err := e.IntRange(-5, 17); !errors.Is(err, ErrValue) {
		t.Errorf("IntRange(-5, 17) error = %v, want ErrValue", err)
	}
}

func TestElement_IntHex(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want string
	}{
		"Zero":          {[]byte{0x00}, "0x00"},
		"ZeroPadded":    {[]byte{0x00, 0x00}, "0x00"},
		"Positive":      {[]byte{0x7F}, "0x7f"},
		"LeadingZero":   {[]byte{0x00, 0x80}, "0x80"},
		"MinusOne":      {[]byte{0xFF}, "-0x01"},
		"Minus128":      {[]byte{0x80}, "-0x80"},
		"Minus256":      {[]byte{0xFF, 0x00}, "-0x0100"},
		"Large":         {[]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, "0x010000000000000000"},
		"LargeNegative": {[]byte{0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, "-0x800000000000000000"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := MakeIntBytes(tt.data)
			got, err := e.IntHex()
			if err != nil {
				t.Fatalf("IntHex() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IntHex() = %q, want %q", got, tt.want)
			}
			if !bytes.Equal(e.Value(), tt.data) {
				t.Errorf("IntHex() modified the element: % X", e.Value())
			}
		})
	}
}

func TestElement_BigInt(t *testing.T) {
	big2to64, _ := new(big.Int).SetString("18446744073709551616", 10)
	testCodec(t, codec[*big.Int]{infallible(MakeBigInt), (*Element).BigInt, func(a, b *big.Int) bool { return a.Cmp(b) == 0 }}, map[string]testCase[*big.Int]{
		// Make & Read
		"Zero":        {val: big.NewInt(0), data: []byte{0x02, 0x01, 0x00}},
		"128":         {val: big.NewInt(128), data: []byte{0x02, 0x02, 0x00, 0x80}},
		"MinusOne":    {val: big.NewInt(-1), data: []byte{0x02, 0x01, 0xFF}},
		"Minus128":    {val: big.NewInt(-128), data: []byte{0x02, 0x01, 0x80}},
		"Minus129":    {val: big.NewInt(-129), data: []byte{0x02, 0x02, 0xFF, 0x7F}},
		"2To64":       {val: big2to64, data: []byte{0x02, 0x09, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		"Minus2To64":  {val: new(big.Int).Neg(big2to64), data: []byte{0x02, 0x09, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		"BeyondInt64": {val: new(big.Int).Lsh(big.NewInt(1), 63), data: []byte{0x02, 0x09, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}, nil, map[string]testCase[*big.Int]{
		"Empty": {data: []byte{0x02, 0x00}, wantErr: ErrValue},
	})
}

//endregion

//region [UNIVERSAL 3] BIT STRING

func TestElement_BitString(t *testing.T) {
	equal := func(a, b kasn1.BitString) bool {
		return a.BitLength == b.BitLength && bytes.Equal(a.Bytes, b.Bytes)
	}
	testCodec(t, codec[kasn1.BitString]{MakeBitString, (*Element).BitString, equal}, map[string]testCase[kasn1.BitString]{
		// Make & Read
		"Empty":       {val: kasn1.BitString{}, data: []byte{0x03, 0x01, 0x00}},
		"Bits":        {val: kasn1.BitString{Bytes: []byte{0x6E, 0x5D, 0xC0}, BitLength: 18}, data: []byte{0x03, 0x04, 0x06, 0x6E, 0x5D, 0xC0}},
		"TicketFlags": {val: kasn1.BitString{Bytes: []byte{0x40, 0x81, 0x00, 0x00}, BitLength: 32}, data: []byte{0x03, 0x05, 0x00, 0x40, 0x81, 0x00, 0x00}},
	}, map[string]testCase[kasn1.BitString]{
		// Make
		"PaddingZeroed": {val: kasn1.BitString{Bytes: []byte{0xFF}, BitLength: 4}, data: []byte{0x03, 0x02, 0x04, 0xF0}},
		"Invalid":       {val: kasn1.BitString{Bytes: []byte{0xFF, 0xFF}, BitLength: 4}, wantErr: ErrValue},
	}, map[string]testCase[kasn1.BitString]{
		// Read
		"PaddingMasked": {val: kasn1.BitString{Bytes: []byte{0xF0}, BitLength: 4}, data: []byte{0x03, 0x02, 0x04, 0xFF}},
		"Constructed": {val: kasn1.BitString{Bytes: []byte{0x0A, 0xB0}, BitLength: 12}, data: []byte{0x23, 0x80,
			0x03, 0x02, 0x00, 0x0A,
			0x03, 0x02, 0x04, 0xB0,
			0x00, 0x00}},
		"InvalidUnused":   {data: []byte{0x03, 0x02, 0x08, 0x00}, wantErr: ErrValue},
		"UnusedEmpty":     {data: []byte{0x03, 0x01, 0x03}, wantErr: ErrValue},
		"NoContents":      {data: []byte{0x03, 0x00}, wantErr: ErrValue},
		"NonFinalPadding": {data: []byte{0x23, 0x08, 0x03, 0x02, 0x04, 0xF0, 0x03, 0x02, 0x00, 0x0F}, wantErr: ErrValue},
		"WrongSegment":    {data: []byte{0x23, 0x04, 0x04, 0x02, 0x00, 0x0F}, wantErr: ErrType},
	})
}

func TestMakeBitStringUnused(t *testing.T) {
	tests := map[string]struct {
		data   []byte
		unused int
		want   []byte
	}{
		"NoUnused": {[]byte{0xAA}, 0, []byte{0x03, 0x02, 0x00, 0xAA}},
		"Masked":   {[]byte{0xAB}, 3, []byte{0x03, 0x02, 0x03, 0xA8}},
		"Empty":    {nil, 0, []byte{0x03, 0x01, 0x00}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e, err := MakeBitStringUnused(tt.data, tt.unused)
			if err != nil {
				t.Fatalf("MakeBitStringUnused() error = %v", err)
			}
			if got := Encode(e); !bytes.Equal(got, tt.want) {
				t.Errorf("MakeBitStringUnused() = % X, want % X", got, tt.want)
			}
		})
	}
	for _, unused := range []int{-1, 8} {
		if _, err := MakeBitStringUnused([]byte{0x00}, unused); !errors.Is(err, ErrValue) {
			t.Errorf("MakeBitStringUnused(_, %d) error = %v, want ErrValue", unused, err)
		}
	}
	if _, err := MakeBitStringUnused(nil, 1); !errors.Is(err, ErrValue) {
		t.Errorf("MakeBitStringUnused(nil, 1) error = %v, want ErrValue", err)
	}
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

func TestElement_OctetString(t *testing.T) {
	testCodec(t, codec[[]byte]{infallible(MakeOctetString), (*Element).OctetString, bytes.Equal}, map[string]testCase[[]byte]{
		// Make & Read
		"Simple": {val: []byte{0x01, 0x02, 0x03}, data: []byte{0x04, 0x03, 0x01, 0x02, 0x03}},
		"Empty":  {val: []byte{}, data: []byte{0x04, 0x00}},
	}, nil, map[string]testCase[[]byte]{
		// Read
		"Constructed": {val: []byte{0x01, 0x02, 0x03}, data: []byte{0x24, 0x80,
			0x04, 0x02, 0x01, 0x02,
			0x24, 0x03, 0x04, 0x01, 0x03,
			0x00, 0x00}},
		"EmptyConstructed": {val: []byte{}, data: []byte{0x24, 0x00}},
		"WrongSegment":     {data: []byte{0x24, 0x03, 0x0C, 0x01, 0x41}, wantErr: ErrType},
	})
}

//endregion

//region [UNIVERSAL 5] NULL

func TestElement_Null(t *testing.T) {
	if got := Encode(MakeNull()); !bytes.Equal(got, []byte{0x05, 0x00}) {
		t.Errorf("Encode(MakeNull()) = % X", got)
	}
	if err := MakeNull().Null(); err != nil {
		t.Errorf("Null() error = %v", err)
	}
	if err := MakePrimitive(tagNull, []byte{0x00}).Null(); !errors.Is(err, ErrValue) {
		t.Errorf("Null() error = %v, want ErrValue", err)
	}
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

func TestElement_OID(t *testing.T) {
	testCodec(t, codec[string]{MakeOID, (*Element).OID, nil}, map[string]testCase[string]{
		// Make & Read
		"KerberosV5": {val: "1.2.840.113554.1.2.2", data: []byte{0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x12, 0x01, 0x02, 0x02}},
		"Joint":      {val: "2.39.1", data: []byte{0x06, 0x02, 0x77, 0x01}},
		"TwoArcs":    {val: "0.0", data: []byte{0x06, 0x01, 0x00}},
	}, map[string]testCase[string]{
		// Make
		"LeadingZeros":  {val: "1.02.0840", data: []byte{0x06, 0x03, 0x2A, 0x86, 0x48}},
		"InvalidFirst":  {val: "3.1", wantErr: ErrValue},
		"InvalidSecond": {val: "1.40", wantErr: ErrValue},
		"Malformed":     {val: "1.2.x", wantErr: kasn1.ErrInvalidOID},
	}, map[string]testCase[string]{
		// Read
		"Open":         {data: []byte{0x06, 0x02, 0x2A, 0x86}, wantErr: ErrValue},
		"FirstByte120": {data: []byte{0x06, 0x01, 0x78}, wantErr: ErrValue},
		"Empty":        {data: []byte{0x06, 0x00}, wantErr: ErrValue},
		"Constructed":  {data: []byte{0x26, 0x03, 0x06, 0x01, 0x2A}, wantErr: ErrType},
	})
}

//endregion
