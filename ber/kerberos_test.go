// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber_test

import (
	"testing"
	"time"

	"github.com/jcmturner/gofork/encoding/asn1"
	"github.com/jcmturner/gokrb5/v8/iana/nametype"
	"github.com/jcmturner/gokrb5/v8/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codello.dev/kasn1"
	"codello.dev/kasn1/ber"
)

// The tests in this file check interoperability with the ASN.1 encoding used
// by the gokrb5 Kerberos implementation.

func generalStrings(t *testing.T, ss ...string) []*ber.Element {
	t.Helper()
	es := make([]*ber.Element, len(ss))
	for i, s := range ss {
		e, err := ber.MakeString(kasn1.TagGeneralString, s)
		require.NoError(t, err)
		es[i] = e
	}
	return es
}

func TestKerberos_PrincipalName(t *testing.T) {
	pn := ber.MakeSequence(
		ber.MakeExplicit(kasn1.ContextSpecific(0), ber.MakeInt(int64(nametype.KRB_NT_SRV_INST))),
		ber.MakeExplicit(kasn1.ContextSpecific(1), ber.MakeSequence(generalStrings(t, "krbtgt", "EXAMPLE.COM")...)),
	)
	b := ber.Encode(pn)

	want, err := asn1.Marshal(types.NewPrincipalName(nametype.KRB_NT_SRV_INST, "krbtgt/EXAMPLE.COM"))
	require.NoError(t, err)
	assert.Equal(t, want, b)

	var got types.PrincipalName
	rest, err := asn1.Unmarshal(b, &got)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, nametype.KRB_NT_SRV_INST, got.NameType)
	assert.Equal(t, []string{"krbtgt", "EXAMPLE.COM"}, got.NameString)
	assert.Equal(t, "krbtgt/EXAMPLE.COM", got.PrincipalNameString())
}

func TestKerberos_EncryptedData(t *testing.T) {
	ed := types.EncryptedData{
		EType:  18, // aes256-cts-hmac-sha1-96
		KVNO:   2,
		Cipher: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	b, err := asn1.Marshal(ed)
	require.NoError(t, err)

	e, err := ber.Decode(b, 0, len(b), true)
	require.NoError(t, err)
	require.Equal(t, 3, e.NumChildren())

	etype, err := e.Child(0).Unwrap(kasn1.ContextSpecific(0))
	require.NoError(t, err)
	v, err := etype.IntRange(-1<<31, 1<<31-1)
	require.NoError(t, err)
	assert.EqualValues(t, 18, v)

	kvno, err := e.Child(1).Unwrap(kasn1.ContextSpecific(1))
	require.NoError(t, err)
	v, err = kvno.Int()
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	cipher, err := e.Child(2).Unwrap(kasn1.ContextSpecific(2))
	require.NoError(t, err)
	c, err := cipher.OctetString()
	require.NoError(t, err)
	assert.Equal(t, ed.Cipher, c)

	assert.Equal(t, b, ber.Encode(e))
}

func TestKerberos_Flags(t *testing.T) {
	flags := types.NewKrbFlags()
	types.SetFlag(&flags, 1) // forwardable
	types.SetFlag(&flags, 8) // renewable
	b, err := asn1.Marshal(flags)
	require.NoError(t, err)

	e, err := ber.Decode(b, 0, len(b), true)
	require.NoError(t, err)
	bs, err := e.BitString()
	require.NoError(t, err)
	assert.Equal(t, 32, bs.BitLength)
	assert.Equal(t, 1, bs.At(1))
	assert.Equal(t, 1, bs.At(8))
	assert.Equal(t, 0, bs.At(0))

	made, err := ber.MakeBitStringUnused(flags.Bytes, 0)
	require.NoError(t, err)
	assert.Equal(t, b, ber.Encode(made))
}

func TestKerberos_Time(t *testing.T) {
	type kerberosTime struct {
		Time time.Time `asn1:"generalized,explicit,tag:0"`
	}
	now := time.Date(2025, 6, 30, 12, 34, 56, 0, time.UTC)

	ts, err := ber.MakeTime(kasn1.TagGeneralizedTime, now)
	require.NoError(t, err)
	b := ber.Encode(ber.MakeSequence(ber.MakeExplicit(kasn1.ContextSpecific(0), ts)))

	want, err := asn1.Marshal(kerberosTime{now})
	require.NoError(t, err)
	assert.Equal(t, want, b)

	var got kerberosTime
	_, err = asn1.Unmarshal(b, &got)
	require.NoError(t, err)
	assert.True(t, now.Equal(got.Time), "got %v, want %v", got.Time, now)

	e, err := ber.Decode(want, 0, len(want), true)
	require.NoError(t, err)
	inner, err := e.Child(0).Unwrap(kasn1.ContextSpecific(0))
	require.NoError(t, err)
	parsed, err := inner.Time()
	require.NoError(t, err)
	assert.True(t, now.Equal(parsed))
}

func TestKerberos_Indefinite(t *testing.T) {
	// gokrb5 only accepts definite lengths
	b := []byte{0x30, 0x80,
		0xA0, 0x80, 0x02, 0x01, 0x01, 0x00, 0x00,
		0xA1, 0x80,
		0x30, 0x80, 0x1B, 0x05, 'a', 'l', 'i', 'c', 'e', 0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00}
	def, err := ber.ToDefinite(b)
	require.NoError(t, err)

	var got types.PrincipalName
	_, err = asn1.Unmarshal(def, &got)
	require.NoError(t, err)
	assert.Equal(t, types.NewPrincipalName(nametype.KRB_NT_PRINCIPAL, "alice"), got)
}
