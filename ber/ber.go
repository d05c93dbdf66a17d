// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber implements the ASN.1 Basic Encoding Rules (BER). The Basic
// Encoding Rules are defined in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package represents BER data values as a tree of immutable [Element]
// values. [Decode] parses a byte buffer into such a tree. Encoding an element
// with [Encode] or [Element.EncodeTo] produces its bytes again. The contents of
// an element are interpreted using typed methods such as [Element.Int],
// [Element.Text] or [Element.Time]. New elements are built with the Make
// functions, for example [MakeInt], [MakeString] or [MakeSequence].
//
// The package is schema-agnostic. Mapping elements to the fields of a protocol
// message, such as the messages of the Kerberos protocol, is the
// responsibility of the caller:
//
//	seq, err := ber.Decode(msg, 0, len(msg), true)
//	if err != nil {
//		return err
//	}
//	if seq.NumChildren() < 2 {
//		return errors.New("missing realm")
//	}
//	realm, err := seq.Child(1).Unwrap(kasn1.ContextSpecific(1))
//	if err != nil {
//		return err
//	}
//	name, err := realm.Text()
//
// The following limitations apply:
//
//   - Decoding accepts the indefinite-length form for constructed encodings. A
//     decoded element is re-encoded exactly as it was decoded, use
//     [Element.Definite] to convert it to definite lengths.
//   - Tag numbers are limited to 24 bits and lengths are limited to 31 bits.
//   - [Element.Int] is limited to a magnitude of 56 bits. Use [Element.BigInt]
//     or [Element.IntHex] for larger values.
//   - GeneralString is restricted to ASCII and TeletexString is treated as
//     ISO 8859-1.
//   - Times are handled with millisecond precision.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package ber
