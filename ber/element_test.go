// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"testing"

	"codello.dev/kasn1"
)

func TestElement_Accessors(t *testing.T) {
	seq := MakeSequence(MakeInt(5), MakeOctetString([]byte{0x01, 0x02}))
	if seq.Tag() != kasn1.Universal(kasn1.TagSequence) || seq.Class() != kasn1.ClassUniversal || seq.Number() != kasn1.TagSequence {
		t.Errorf("Tag() = %s", seq.Tag())
	}
	if !seq.Constructed() || seq.Indefinite() {
		t.Errorf("Constructed() = %t, Indefinite() = %t", seq.Constructed(), seq.Indefinite())
	}
	if seq.NumChildren() != 2 {
		t.Errorf("NumChildren() = %d, want 2", seq.NumChildren())
	}
	if seq.Child(2) != nil || seq.Child(-1) != nil {
		t.Errorf("Child() out of range returned an element")
	}
	if seq.Value() != nil {
		t.Errorf("Value() of constructed element = % X, want nil", seq.Value())
	}

	children := seq.Children()
	children[0] = MakeNull()
	if !seq.Child(0).Is(kasn1.Universal(kasn1.TagInteger)) {
		t.Errorf("modifying Children() modified the element")
	}

	oct := seq.Child(1)
	v := oct.Value()
	v[0] = 0xFF
	if oct.Value()[0] != 0x01 {
		t.Errorf("modifying Value() modified the element")
	}
	if oct.Constructed() || oct.Children() != nil || oct.NumChildren() != 0 || oct.Child(0) != nil {
		t.Errorf("primitive element reports children")
	}
}

func TestElement_Lengths(t *testing.T) {
	tests := map[string]struct {
		e                    *Element
		hdrLen, valLen, size int
	}{
		"Null":       {MakeNull(), 2, 0, 2},
		"Short":      {MakeOctetString(make([]byte, 127)), 2, 127, 129},
		"Long":       {MakeOctetString(make([]byte, 300)), 4, 300, 304},
		"HighTag":    {MakePrimitive(kasn1.Application(1000), []byte{0x00}), 4, 1, 5},
		"Nested":     {MakeSequence(MakeInt(1), MakeSequence()), 2, 5, 7},
		"Explicit":   {MakeExplicit(kasn1.ContextSpecific(0), MakeOctetString(make([]byte, 200))), 3, 203, 206},
		"EmptyConst": {MakeConstructed(kasn1.ContextSpecific(3)), 2, 0, 2},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.e.HeaderLen(); got != tt.hdrLen {
				t.Errorf("HeaderLen() = %d, want %d", got, tt.hdrLen)
			}
			if got := tt.e.ValueLen(); got != tt.valLen {
				t.Errorf("ValueLen() = %d, want %d", got, tt.valLen)
			}
			if got := tt.e.EncodedLen(); got != tt.size {
				t.Errorf("EncodedLen() = %d, want %d", got, tt.size)
			}
			if got := len(Encode(tt.e)); got != tt.size {
				t.Errorf("len(Encode()) = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestElement_Equal(t *testing.T) {
	definite, _ := Decode([]byte{0x30, 0x03, 0x02, 0x01, 0x05}, 0, 5, true)
	indefinite, _ := Decode([]byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00}, 0, 7, true)
	tests := map[string]struct {
		a, b *Element
		want bool
	}{
		"Same":              {MakeInt(1), MakeInt(1), true},
		"DifferentValue":    {MakeInt(1), MakeInt(2), false},
		"DifferentTag":      {MakeInt(1), MakeImplicit(kasn1.ContextSpecific(2), MakeInt(1)), false},
		"EmptyConstructed":  {MakeConstructed(kasn1.Universal(4)), MakeOctetString(nil), false},
		"LengthForm":        {definite, indefinite, true},
		"InMemory":          {definite, MakeSequence(MakeInt(5)), true},
		"DifferentChildren": {MakeSequence(MakeInt(5)), MakeSequence(MakeInt(5), MakeNull()), false},
		"Nil":               {MakeNull(), nil, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestElement_String(t *testing.T) {
	e := MakeSequence(MakeInt(5), MakeOctetString(nil), MakeExplicit(kasn1.ContextSpecific(0), MakeOctetString(make([]byte, 30))))
	want := "[UNIVERSAL 16] {[UNIVERSAL 2] {05}, [UNIVERSAL 4] {}, [0] {[UNIVERSAL 4] {30 bytes}}}"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestElement_Expect(t *testing.T) {
	e := MakeInt(1)
	if err := e.ExpectTag(kasn1.Universal(kasn1.TagInteger)); err != nil {
		t.Errorf("ExpectTag() error = %v", err)
	}
	err := e.ExpectTag(kasn1.ContextSpecific(0))
	if !errors.Is(err, ErrType) {
		t.Errorf("ExpectTag() error = %v, want ErrType", err)
	}
	if want := "ber: type error in [UNIVERSAL 2]: expected [0]"; err == nil || err.Error() != want {
		t.Errorf("ExpectTag() error = %q, want %q", err, want)
	}
	if err := e.ExpectConstructed(); !errors.Is(err, ErrType) {
		t.Errorf("ExpectConstructed() error = %v, want ErrType", err)
	}
	if err := MakeSequence().ExpectPrimitive(); !errors.Is(err, ErrType) {
		t.Errorf("ExpectPrimitive() error = %v, want ErrType", err)
	}
}

func TestError(t *testing.T) {
	err := &Error{KindValue, kasn1.Universal(kasn1.TagInteger), ErrIntegerOverflow}
	if want := "ber: value error in [UNIVERSAL 2]: integer overflow"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrValue) || errors.Is(err, ErrType) || errors.Is(err, ErrStructure) {
		t.Errorf("errors.Is() does not match the error kind")
	}
	if !errors.Is(err, ErrIntegerOverflow) {
		t.Errorf("errors.Is(err, ErrIntegerOverflow) = false")
	}
	if got := KindStructure.String(); got != "Structure" {
		t.Errorf("KindStructure.String() = %q", got)
	}
	if got := (&Error{Kind: KindStructure, Err: ErrTrailingData}).Error(); got != "ber: structure error: trailing data after element" {
		t.Errorf("Error() = %q", got)
	}
}

func TestElement_Concurrent(t *testing.T) {
	e := MakeSequence(MakeInt(1), MakeSetOf(MakeInt(2), MakeInt(3)), MakeOctetString(make([]byte, 200)))
	want := []byte{0x30, 0x81, 0xD6}
	done := make(chan []byte)
	for range 8 {
		go func() {
			done <- Encode(e)
		}()
	}
	for range 8 {
		if got := <-done; !bytes.HasPrefix(got, want) || len(got) != 217 {
			t.Errorf("Encode() = % X...", got[:3])
		}
	}
}
