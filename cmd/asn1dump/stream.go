// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"k8s.io/klog/v2"

	"codello.dev/kasn1/ber"
	"codello.dev/kasn1/tlv"
)

// previewLen is the maximum number of content bytes printed per primitive value
// in stream mode.
const previewLen = 16

// stream writes an outline of the TLV headers in in to out without decoding the
// input into memory. Any number of top-level data values is accepted unless
// opts.exact is set.
func stream(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	logger := klog.FromContext(ctx)

	switch opts.input {
	case "hex":
		in = hex.NewDecoder(spaceStripper{in})
	case "base64":
		in = base64.NewDecoder(base64.StdEncoding, spaceStripper{in})
	}
	w := bufio.NewWriter(out)
	d := tlv.NewDecoder(in)
	buf := make([]byte, previewLen)
	values := 0
	for {
		h, val, err := d.ReadHeader()
		if err == io.EOF {
			break
		} else if err != nil {
			_ = w.Flush()
			return err
		}
		if h.IsEndOfContents() {
			continue
		}

		depth := d.StackDepth()
		if h.Constructed {
			depth--
		}
		if depth == 0 {
			if values++; opts.exact && values > 1 {
				_ = w.Flush()
				return fmt.Errorf("offset %d: %w", d.DataValueOffset(), ber.ErrTrailingData)
			}
		}
		if opts.maxDepth > 0 && h.Constructed && d.StackDepth() > opts.maxDepth {
			_ = w.Flush()
			return fmt.Errorf("offset %d: %w", d.DataValueOffset(), ber.ErrMaxDepth)
		}
		logger.V(4).Info("Header", "offset", d.DataValueOffset(), "header", h, "depth", depth)

		fmt.Fprintf(w, "%6d: %s%s", d.DataValueOffset(), strings.Repeat("  ", depth), h.Tag)
		if h.Length == tlv.LengthIndefinite {
			w.WriteString(" constructed indefinite\n")
			continue
		}
		fmt.Fprintf(w, " len=%d", h.Length)
		if h.Constructed {
			w.WriteString(" constructed\n")
			continue
		}
		n, err := io.ReadFull(val, buf[:min(h.Length, previewLen)])
		if err != nil {
			_ = w.Flush()
			return err
		}
		if n > 0 {
			fmt.Fprintf(w, " % X", buf[:n])
		}
		if h.Length > n {
			w.WriteString(" ...")
		}
		w.WriteByte('\n')
	}
	logger.V(1).Info("Streamed input", "bytes", d.InputOffset(), "values", values)
	return w.Flush()
}

// spaceStripper removes white space from the bytes read from r.
type spaceStripper struct {
	r io.Reader
}

func (s spaceStripper) Read(p []byte) (int, error) {
	for {
		n, err := s.r.Read(p)
		m := 0
		for _, c := range p[:n] {
			if c < 0x80 && unicode.IsSpace(rune(c)) {
				continue
			}
			p[m] = c
			m++
		}
		if m > 0 || err != nil {
			return m, err
		}
	}
}

// errStreamFormat is returned by [options.validate] if stream mode is combined
// with an output that requires the decoded element tree.
var errStreamFormat = errors.New("stream mode only supports text output")
