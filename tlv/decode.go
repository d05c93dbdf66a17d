package tlv

import (
	"bufio"
	"errors"
	"io"
)

// valueReader reads the contents of a primitive data value from a [Decoder].
type valueReader struct {
	d *Decoder
	n int // number of bytes remaining
}

// Len returns the number of unread bytes of the value.
func (v *valueReader) Len() int {
	return v.n
}

// Read reads up to len(p) bytes of the value.
func (v *valueReader) Read(p []byte) (int, error) {
	if v.n == 0 {
		return 0, io.EOF
	}
	if len(p) > v.n {
		p = p[:v.n]
	}
	n, err := v.d.r.Read(p)
	v.n -= n
	v.d.offset += n
	if err == io.EOF && v.n > 0 {
		return n, v.d.errorf(v.d.offset, ErrTruncated)
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// discard skips the unread bytes of the value.
func (v *valueReader) discard() error {
	if v.n == 0 {
		return nil
	}
	n, err := v.d.r.Discard(v.n)
	v.n -= n
	v.d.offset += n
	if err == io.EOF {
		return v.d.errorf(v.d.offset, ErrTruncated)
	}
	return err
}

//region Decoder

// Decoder is a streaming decoder for the TLV format used by ASN.1 encoding
// rules such as BER, DER or CER. It reads a stream of top-level data values
// header by header without holding the data values in memory.
//
// Decoder validates the TLV structure: lengths of nested data values must not
// exceed the lengths of their parents, and end-of-contents markers must only
// appear in indefinite-length data values.
type Decoder struct {
	state
	r   *bufio.Reader
	buf *bufio.Reader // internal buffering, reused by Reset
	val valueReader   // reused, saves allocations

	offset    int  // input offset of the next unread byte
	start     int  // input offset of the current data value
	primitive bool // the current data value is primitive
}

// NewDecoder creates a new Decoder reading from r. If r is a [*bufio.Reader]
// it is used directly, otherwise Decoder does its own buffering and may read
// past the end of the last data value.
func NewDecoder(r io.Reader) *Decoder {
	d := new(Decoder)
	d.Reset(r)
	return d
}

// Reset resets the state of d to read from r. See [NewDecoder] for details.
//
// Reset reuses the internal buffer of d which may save some allocations
// compared to [NewDecoder].
func (d *Decoder) Reset(r io.Reader) {
	d.state.reset()
	if br, ok := r.(*bufio.Reader); ok {
		d.r = br
	} else {
		if d.buf == nil {
			d.buf = bufio.NewReader(r)
		} else {
			d.buf.Reset(r)
		}
		d.r = d.buf
	}
	d.val = valueReader{d: d}
	d.offset = 0
	d.start = 0
	d.primitive = false
}

// ReadHeader reads the next TLV header from the input. At the end of
// constructed data values a Header with [TagEndOfContents] is returned, for
// both definite and indefinite-length encodings. At the end of the input
// ReadHeader returns [io.EOF].
//
// The second return value is non-nil iff the decoded Header indicates the use
// of the primitive encoding. The [io.Reader] can be used to read the contents
// of the primitive data value. Unread contents are discarded by the next call
// to ReadHeader or [Decoder.Skip].
//
// Errors in the TLV structure are reported as [*SyntaxError]. A failed call
// does not advance d, so the error is returned again by the next call.
func (d *Decoder) ReadHeader() (Header, io.Reader, error) {
	if err := d.val.discard(); err != nil {
		return Header{}, nil, err
	}
	d.primitive = false
	if !d.root() && d.top().End == d.offset {
		d.start = d.offset
		d.pop()
		return EndOfContents, nil, nil
	}

	h, n, err := d.peekHeader()
	if err != nil {
		return h, nil, err
	}
	if h.IsEndOfContents() && (d.root() || d.top().End != LengthIndefinite) {
		return h, nil, d.errorf(d.offset, ErrUnexpectedEOC)
	}
	if lim := d.limit(); h.Length != LengthIndefinite && lim != LengthIndefinite && d.offset+n+h.Length > lim {
		return h, nil, d.errorf(d.offset, ErrExceedsParent)
	}

	// successful parse, consume the header
	d.start = d.offset
	_, _ = d.r.Discard(n)
	d.offset += n

	switch {
	case h.IsEndOfContents():
		d.pop()
		return h, nil, nil
	case h.Constructed:
		d.push(h, d.start, d.offset)
		return h, nil, nil
	}
	d.primitive = true
	d.val.n = h.Length
	return h, &d.val, nil
}

// peekHeader parses the next header without consuming it. It returns the
// header and its encoded length.
func (d *Decoder) peekHeader() (Header, int, error) {
	lim := d.limit()
	size := 8
	for {
		if lim != LengthIndefinite {
			size = min(size, lim-d.offset)
		}
		size = min(size, d.r.Size())
		b, rerr := d.r.Peek(size)
		if rerr == io.EOF && len(b) == 0 && d.root() {
			return Header{}, 0, io.EOF
		}
		if rerr != nil && rerr != io.EOF {
			return Header{}, 0, rerr
		}
		h, n, err := ParseHeader(b)
		if err == nil {
			return h, n, nil
		}
		if !errors.Is(err, ErrTruncated) || len(b) < size || size == d.r.Size() || lim != LengthIndefinite && size == lim-d.offset {
			return h, n, d.errorf(d.offset, err)
		}
		size *= 2
	}
}

// errorf returns a [SyntaxError] at the specified offset within the innermost
// data value.
func (d *Decoder) errorf(offset int, err error) *SyntaxError {
	e := &SyntaxError{Err: err, ByteOffset: offset}
	if !d.root() {
		e.Header = d.top().Header
	}
	return e
}

// Skip discards the remainder of the current data value. If it uses the
// primitive encoding, only its contents are discarded. If it is constructed,
// everything up to and including its end-of-contents is skipped.
func (d *Decoder) Skip() error {
	if d.primitive {
		d.primitive = false
		return d.val.discard()
	}
	if d.root() {
		return errors.New("tlv: no data value to skip")
	}
	if end := d.top().End; end != LengthIndefinite {
		// definite-length contents are skipped without parsing
		n, err := d.r.Discard(end - d.offset)
		d.offset += n
		if err == io.EOF {
			return d.errorf(d.offset, ErrTruncated)
		} else if err != nil {
			return err
		}
		d.pop()
		return nil
	}
	depth := d.StackDepth()
	for d.StackDepth() >= depth {
		if _, _, err := d.ReadHeader(); err != nil {
			return err
		}
	}
	return nil
}

// DataValueOffset returns the input byte offset where the current data value
// starts. This is the first byte of the identifier octets of the value most
// recently returned by [Decoder.ReadHeader].
func (d *Decoder) DataValueOffset() int {
	return d.start
}

// InputOffset returns the current input byte offset. The number of bytes
// actually read from the underlying [io.Reader] may be more than this offset
// due to internal buffering effects.
func (d *Decoder) InputOffset() int {
	return d.offset
}

// StackDepth returns the number of nested constructed data values at the
// current location of d. It is incremented whenever a constructed data value
// is encountered and decremented whenever a constructed data value ends. At the
// top level StackDepth is zero.
func (d *Decoder) StackDepth() int { return len(d.stack) }

// StackIndex returns the header of the constructed data value at the specified
// stack level, which must be between 0 and [Decoder.StackDepth], exclusive.
// Level 0 is the outermost data value.
func (d *Decoder) StackIndex(i int) Header {
	return d.stack[i].Header
}

//endregion
