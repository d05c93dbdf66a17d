package tlv

// Cursor reads TLV headers and values from an in-memory buffer. A Cursor is
// limited to a range of the buffer: the entire buffer for a top-level Cursor,
// or the contents of a constructed encoding for a Cursor obtained from
// [Cursor.Enter].
//
// A Cursor does not copy any data. Values returned by [Cursor.ReadValue] alias
// the underlying buffer.
type Cursor struct {
	buf    []byte
	pos    int
	end    int
	base   int    // added to offsets in errors
	header Header // enclosing header, zero at the top level
}

// NewCursor returns a Cursor that reads from b. The base is added to every
// offset reported in a [SyntaxError] so that errors can refer to a larger
// buffer that b was taken from.
func NewCursor(b []byte, base int) *Cursor {
	return &Cursor{buf: b, end: len(b), base: base}
}

// Offset returns the current position of c within the buffer passed to
// [NewCursor].
func (c *Cursor) Offset() int {
	return c.pos
}

// Len returns the number of bytes left in the range of c.
func (c *Cursor) Len() int {
	return c.end - c.pos
}

// Header returns the header of the constructed encoding c is reading. For a
// top-level Cursor this is the zero Header.
func (c *Cursor) Header() Header {
	return c.header
}

// ReadHeader parses the header at the current position and advances c past it.
// If the header uses a definite length, ReadHeader validates that the value
// fits into the range of c. A value running past the end of the buffer is
// reported as [ErrTruncated], a value running past the end of an enclosing
// definite-length encoding as [ErrExceedsParent].
func (c *Cursor) ReadHeader() (Header, error) {
	start := c.pos
	h, n, err := ParseHeader(c.buf[c.pos:c.end])
	if err != nil {
		return h, c.Errorf(start, err)
	}
	c.pos += n
	if h.Length != LengthIndefinite && h.Length > c.end-c.pos {
		if c.end == len(c.buf) {
			return h, c.Errorf(start, ErrTruncated)
		}
		return h, c.Errorf(start, ErrExceedsParent)
	}
	return h, nil
}

// ReadValue returns the next n bytes and advances c past them. The capacity of
// the returned slice is limited to n.
func (c *Cursor) ReadValue(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, c.Errorf(c.pos, ErrTruncated)
	}
	v := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return v, nil
}

// Enter returns a Cursor for the contents of the constructed encoding with
// header h, whose header c has just read. For a definite length the returned
// Cursor is limited to the value. For an indefinite length it may read until
// the end of c, the caller is responsible for detecting the end-of-contents
// marker. Call [Cursor.Leave] when done.
func (c *Cursor) Enter(h Header) *Cursor {
	sub := &Cursor{buf: c.buf, pos: c.pos, end: c.end, base: c.base, header: h}
	if h.Length != LengthIndefinite {
		sub.end = c.pos + h.Length
	}
	return sub
}

// Leave advances c past the contents read by sub, which must have been
// obtained from c by [Cursor.Enter]. If sub reads a definite-length value and
// has not consumed it entirely, Leave skips the remaining bytes.
func (c *Cursor) Leave(sub *Cursor) {
	if sub.header.Length == LengthIndefinite {
		c.pos = sub.pos
	} else {
		c.pos = sub.end
	}
}

// Errorf returns a [SyntaxError] for a problem at offset that occurred within
// the range of c.
func (c *Cursor) Errorf(offset int, err error) *SyntaxError {
	return &SyntaxError{Err: err, ByteOffset: c.base + offset, Header: c.header}
}

// AtEndOfContents reports whether the next two bytes of c are an
// end-of-contents marker. It does not advance c.
func (c *Cursor) AtEndOfContents() bool {
	return c.Len() >= 2 && c.buf[c.pos] == 0 && c.buf[c.pos+1] == 0
}

// Bytes returns the bytes from offset up to the current position of c. The
// capacity of the returned slice is limited to its length.
func (c *Cursor) Bytes(offset int) []byte {
	return c.buf[offset:c.pos:c.pos]
}
