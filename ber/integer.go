// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	"codello.dev/kasn1"
)

//region [UNIVERSAL 1] BOOLEAN

// Bool interprets the contents of e as a BOOLEAN. The contents must consist of
// exactly one byte. Any nonzero value is true.
func (e *Element) Bool() (bool, error) {
	if err := e.ExpectPrimitive(); err != nil {
		return false, err
	}
	if len(e.value) != 1 {
		return false, valueError(e.tag, "BOOLEAN must be exactly one byte")
	}
	return e.value[0] != 0, nil
}

//endregion

//region [UNIVERSAL 2] INTEGER

const (
	// MaxInt is the largest value that [Element.Int] accepts.
	MaxInt = 1<<56 - 1
	// MinInt is the smallest value that [Element.Int] accepts.
	MinInt = -MaxInt

	maxShift = 1<<48 - 1
	minShift = -1 << 48
)

// Int interprets the contents of e as a two's complement INTEGER. The magnitude
// of the value is limited to 56 bits, larger values fail with
// [ErrIntegerOverflow]. Use [Element.BigInt] for arbitrarily large values.
//
// Int does not require the contents to be minimally encoded.
func (e *Element) Int() (int64, error) {
	if err := e.ExpectPrimitive(); err != nil {
		return 0, err
	}
	if len(e.value) == 0 {
		return 0, valueError(e.tag, "empty INTEGER")
	}
	v := int64(int8(e.value[0])) // sign extend
	for _, b := range e.value[1:] {
		if v > maxShift || v < minShift {
			return 0, &Error{KindValue, e.tag, ErrIntegerOverflow}
		}
		v = v<<8 | int64(b)
	}
	if v < MinInt {
		return 0, &Error{KindValue, e.tag, ErrIntegerOverflow}
	}
	return v, nil
}

// IntRange works like [Element.Int] and additionally validates that the value
// is within [lo, hi].
func (e *Element) IntRange(lo, hi int64) (int64, error) {
	v, err := e.Int()
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, &Error{KindValue, e.tag, fmt.Errorf("INTEGER %d out of range [%d, %d]", v, lo, hi)}
	}
	return v, nil
}

// IntHex returns the value of an INTEGER of arbitrary size as a hexadecimal
// string. The string uses the minimal even number of digits and a leading minus
// sign for negative values, for example "0x00", "0x7f", "0x0100" or "-0x01".
// Kerberos uses such large integers for example as serial numbers in PKINIT.
func (e *Element) IntHex() (string, error) {
	if err := e.ExpectPrimitive(); err != nil {
		return "", err
	}
	if len(e.value) == 0 {
		return "", valueError(e.tag, "empty INTEGER")
	}
	b := bytes.Clone(e.value)
	sign := ""
	if b[0]&0x80 != 0 {
		sign = "-"
		negate(b)
	}
	b = bytes.TrimLeft(b, "\x00")
	if len(b) == 0 {
		return "0x00", nil
	}
	return sign + "0x" + hex.EncodeToString(b), nil
}

// negate replaces the two's complement number in b by its negation.
func negate(b []byte) {
	carry := true
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = ^b[i]
		if carry {
			b[i]++
			carry = b[i] == 0
		}
	}
}

// BigInt interprets the contents of e as an INTEGER of arbitrary size.
func (e *Element) BigInt() (*big.Int, error) {
	if err := e.ExpectPrimitive(); err != nil {
		return nil, err
	}
	if len(e.value) == 0 {
		return nil, valueError(e.tag, "empty INTEGER")
	}
	ret := new(big.Int)
	if e.value[0]&0x80 == 0 {
		return ret.SetBytes(e.value), nil
	}
	// This is a negative number.
	notBytes := make([]byte, len(e.value))
	for i := range notBytes {
		notBytes[i] = ^e.value[i]
	}
	ret.SetBytes(notBytes)
	ret.Add(ret, bigOne)
	return ret.Neg(ret), nil
}

var bigOne = big.NewInt(1)

// appendInt appends the minimal two's complement encoding of v to dst.
func appendInt(dst []byte, v int64) []byte {
	n := 1
	for i := v; i > 127 || i < -128; i >>= 8 {
		n++
	}
	for ; n > 0; n-- {
		dst = append(dst, byte(v>>uint((n-1)*8)))
	}
	return dst
}

// bigIntBytes returns the minimal two's complement encoding of n.
func bigIntBytes(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		// Zero is written as a single 0 zero rather than no bytes.
		return []byte{0x00}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			// We'll have to pad this with 0x00 in order to stop it looking like a
			// negative number.
			b = append([]byte{0x00}, b...)
		}
		return b
	}
	// A negative number has to be converted to two's-complement form. So we'll
	// invert and subtract 1. If the most-significant-bit isn't set then we'll
	// need to pad the beginning with 0xff in order to keep the number negative.
	nMinus1 := new(big.Int).Neg(n)
	nMinus1.Sub(nMinus1, bigOne)
	b := nMinus1.Bytes()
	for i := range b {
		b[i] ^= 0xff
	}
	if len(b) == 0 || b[0]&0x80 == 0 {
		b = append([]byte{0xff}, b...)
	}
	return b
}

//endregion

//region [UNIVERSAL 5] NULL

// Null validates that e is a primitive element without contents.
func (e *Element) Null() error {
	if err := e.ExpectPrimitive(); err != nil {
		return err
	}
	if len(e.value) != 0 {
		return valueError(e.tag, "NULL with contents")
	}
	return nil
}

//endregion

var (
	tagBoolean     = kasn1.Universal(kasn1.TagBoolean)
	tagInteger     = kasn1.Universal(kasn1.TagInteger)
	tagBitString   = kasn1.Universal(kasn1.TagBitString)
	tagOctetString = kasn1.Universal(kasn1.TagOctetString)
	tagNull        = kasn1.Universal(kasn1.TagNull)
	tagOID         = kasn1.Universal(kasn1.TagOID)
	tagSequence    = kasn1.Universal(kasn1.TagSequence)
	tagSet         = kasn1.Universal(kasn1.TagSet)
)
