// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"io"
)

// Encode returns the encoding of e.
//
// A decoded element is encoded exactly as it was decoded, including the length
// forms. Elements created in memory use the minimal definite-length encoding.
func Encode(e *Element) []byte {
	b := make([]byte, e.EncodedLen())
	e.EncodeTo(b, 0, len(b))
	return b
}

// EncodeTo writes the bytes in the range [start, end) of the encoding of e to
// dst[0:] and returns the number of bytes written. The range is clamped to the
// encoding of e and to the length of dst.
//
// Parts of the encoding that are entirely outside the range are not generated.
// EncodeTo can therefore be used to extract a small part of a large element
// efficiently.
func (e *Element) EncodeTo(dst []byte, start, end int) int {
	start = max(start, 0)
	end = min(end, e.EncodedLen(), start+len(dst))
	if start >= end {
		return 0
	}
	w := window{dst: dst, start: start, end: end}
	e.encode(&w)
	return w.n
}

// MarshalBinary returns the encoding of e. It implements
// [encoding.BinaryMarshaler].
func (e *Element) MarshalBinary() ([]byte, error) {
	return Encode(e), nil
}

// ReadValueAt reads len(p) bytes of the contents of e starting at offset off
// into p. The contents do not include the header or an end-of-contents marker.
// ReadValueAt implements the semantics of [io.ReaderAt.ReadAt]: if fewer than
// len(p) bytes are read, the error is [io.EOF].
func (e *Element) ReadValueAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("ber: negative offset")
	}
	valLen := int64(e.ValueLen())
	if off >= valLen {
		return 0, io.EOF
	}
	hdrLen := int64(e.HeaderLen())
	end := min(valLen, off+int64(len(p)))
	n = e.EncodeTo(p, int(hdrLen+off), int(hdrLen+end))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// ValueReader returns an [io.SectionReader] over the contents of e.
func (e *Element) ValueReader() *io.SectionReader {
	return io.NewSectionReader(valueReaderAt{e}, 0, int64(e.ValueLen()))
}

type valueReaderAt struct{ e *Element }

func (r valueReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.e.ReadValueAt(p, off)
}

// encode writes the encoding of e to w. Elements that are entirely outside the
// window of w are skipped.
func (e *Element) encode(w *window) {
	objLen := e.EncodedLen()
	if w.pos+objLen <= w.start || w.pos >= w.end {
		w.skip(objLen)
		return
	}
	if e.raw != nil {
		w.write(e.raw)
		return
	}
	var buf [24]byte
	w.write(e.header().Append(buf[:0]))
	if e.children == nil {
		w.write(e.value)
		return
	}
	for _, c := range e.children {
		c.encode(w)
	}
}

// window is a writer for the range [start, end) of an encoding. Bytes outside
// the range are counted but not written.
type window struct {
	dst        []byte
	start, end int
	pos        int // position within the encoding
	n          int // number of bytes written to dst
}

// write writes the bytes of p that fall into the window and advances the
// position by len(p).
func (w *window) write(p []byte) {
	lo := max(w.start, w.pos)
	hi := min(w.end, w.pos+len(p))
	if lo < hi {
		w.n += copy(w.dst[lo-w.start:], p[lo-w.pos:hi-w.pos])
	}
	w.pos += len(p)
}

// skip advances the position by n without writing anything.
func (w *window) skip(n int) {
	w.pos += n
}
