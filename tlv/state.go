package tlv

// stateEntry represents a constructed data value whose contents are being
// decoded.
type stateEntry struct {
	Header

	// Start is the input offset of the first byte of the header.
	Start int

	// End is the input offset of the first byte after the contents, or
	// [LengthIndefinite] if the indefinite-length format is used.
	End int

	// Limit is the input offset that no data value inside this entry may
	// exceed. It is End for definite-length data values and the limit of the
	// surrounding entry otherwise. Limit is [LengthIndefinite] if no limit is
	// known.
	Limit int
}

// state maintains the stack of constructed data values that a [Decoder] is
// currently processing. An empty stack represents the top level of the input
// stream.
type state struct {
	stack []stateEntry
}

// reset clears the state to the top level. The allocated stack space is reused.
func (s *state) reset() {
	if s.stack == nil {
		s.stack = make([]stateEntry, 0, 10)
	}
	s.stack = s.stack[:0]
}

// root indicates whether s is currently at the top level.
func (s *state) root() bool {
	return len(s.stack) == 0
}

// top returns the innermost entry. It must not be called at the top level.
func (s *state) top() *stateEntry {
	return &s.stack[len(s.stack)-1]
}

// limit returns the input offset that the next data value must not exceed, or
// [LengthIndefinite] if there is no such limit.
func (s *state) limit() int {
	if s.root() {
		return LengthIndefinite
	}
	return s.top().Limit
}

// push puts the constructed data value with header h starting at start onto
// the stack. valueStart is the input offset of the first byte of its contents.
func (s *state) push(h Header, start, valueStart int) {
	e := stateEntry{Header: h, Start: start, End: LengthIndefinite, Limit: s.limit()}
	if h.Length != LengthIndefinite {
		e.End = valueStart + h.Length
		e.Limit = e.End
	}
	s.stack = append(s.stack, e)
}

// pop removes the innermost entry from the stack, indicating that its contents
// have been processed completely.
func (s *state) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}
