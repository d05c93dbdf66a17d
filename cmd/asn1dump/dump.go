// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"k8s.io/klog/v2"

	"codello.dev/kasn1"
	"codello.dev/kasn1/ber"
)

// options configure a single dump.
type options struct {
	input    string // auto, binary, hex or base64
	exact    bool
	maxDepth int
	format   string // text, json or msgpack
	definite bool
	stream   bool
}

var (
	inputFormats  = []string{"auto", "binary", "hex", "base64"}
	outputFormats = []string{"text", "json", "msgpack"}
)

func (o options) validate() error {
	if !slices.Contains(inputFormats, o.input) {
		return fmt.Errorf("unknown input encoding %q", o.input)
	}
	if !slices.Contains(outputFormats, o.format) {
		return fmt.Errorf("unknown output format %q", o.format)
	}
	if o.maxDepth < 0 {
		return errors.New("negative max depth")
	}
	if o.stream && (o.format != "text" || o.definite) {
		return errStreamFormat
	}
	return nil
}

// node is the exported representation of an element.
type node struct {
	Offset      int     `json:"offset" msgpack:"offset"`
	Tag         string  `json:"tag" msgpack:"tag"`
	Class       string  `json:"class" msgpack:"class"`
	Number      uint    `json:"number" msgpack:"number"`
	Constructed bool    `json:"constructed" msgpack:"constructed"`
	Indefinite  bool    `json:"indefinite,omitempty" msgpack:"indefinite,omitempty"`
	HeaderLen   int     `json:"headerLength" msgpack:"headerLength"`
	Length      int     `json:"length" msgpack:"length"`
	Value       string  `json:"value,omitempty" msgpack:"value,omitempty"`
	Hex         string  `json:"hex,omitempty" msgpack:"hex,omitempty"`
	Error       string  `json:"error,omitempty" msgpack:"error,omitempty"`
	Children    []*node `json:"children,omitempty" msgpack:"children,omitempty"`
}

// dump reads a data value from in and writes it to out as specified by opts.
func dump(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	logger := klog.FromContext(ctx)

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	b, err := decodeInput(raw, opts.input)
	if err != nil {
		return err
	}
	logger.V(1).Info("Read input", "bytes", len(b), "encoding", opts.input)

	e, err := ber.Decoder{MaxDepth: opts.maxDepth, Exact: opts.exact}.Decode(b)
	if err != nil {
		return err
	}
	logger.V(1).Info("Decoded data value", "tag", e.Tag(), "length", e.EncodedLen(),
		"indefinite", e.Indefinite(), "trailing", len(b)-e.EncodedLen())

	if opts.definite {
		_, err = out.Write(ber.Encode(e.Definite()))
		return err
	}

	root := buildNode(logger, e, 0)
	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(root)
	case "msgpack":
		return msgpack.NewEncoder(out).Encode(root)
	default:
		var s strings.Builder
		writeText(&s, root, 0)
		_, err = io.WriteString(out, s.String())
		return err
	}
}

// decodeInput converts the input into binary. In auto mode hex is tried first,
// then base64, and the input is used as is otherwise.
func decodeInput(raw []byte, encoding string) ([]byte, error) {
	text := bytes.Join(bytes.Fields(raw), nil)
	switch encoding {
	case "binary":
		return raw, nil
	case "hex":
		b, err := hex.DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return b, nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("decode base64 input: %w", err)
		}
		return b, nil
	}
	if len(text) == 0 {
		return raw, nil
	}
	if b, err := hex.DecodeString(string(text)); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(string(text)); err == nil {
		return b, nil
	}
	return raw, nil
}

// buildNode converts e, which starts at offset in the input, into a node.
func buildNode(logger klog.Logger, e *ber.Element, offset int) *node {
	logger.V(4).Info("Element", "offset", offset, "tag", e.Tag(), "constructed", e.Constructed())
	n := &node{
		Offset:      offset,
		Tag:         e.Tag().String(),
		Class:       e.Class().String(),
		Number:      e.Number(),
		Constructed: e.Constructed(),
		Indefinite:  e.Indefinite(),
		HeaderLen:   e.HeaderLen(),
		Length:      e.ValueLen(),
	}
	if e.Constructed() {
		pos := offset + e.HeaderLen()
		for _, c := range e.Children() {
			n.Children = append(n.Children, buildNode(logger, c, pos))
			pos += c.EncodedLen()
		}
		if e.Class() == kasn1.ClassUniversal && ber.IsStringType(e.Number()) {
			n.Value, n.Error = interpret(e)
		}
		return n
	}
	n.Hex = hex.EncodeToString(e.Value())
	n.Value, n.Error = interpret(e)
	return n
}

// interpret returns the value of a universal element as a string. Elements of
// other classes and unsupported types are not interpreted.
func interpret(e *ber.Element) (string, string) {
	if e.Class() != kasn1.ClassUniversal {
		return "", ""
	}
	var v string
	var err error
	switch num := e.Number(); {
	case num == kasn1.TagBoolean:
		var b bool
		b, err = e.Bool()
		v = fmt.Sprint(b)
	case num == kasn1.TagInteger, num == kasn1.TagEnumerated:
		var i int64
		if i, err = e.Int(); err == nil {
			v = fmt.Sprint(i)
		} else if errors.Is(err, ber.ErrIntegerOverflow) {
			v, err = e.IntHex()
		}
	case num == kasn1.TagBitString:
		var s kasn1.BitString
		s, err = e.BitString()
		v = s.String()
	case num == kasn1.TagNull:
		if err = e.Null(); err == nil {
			v = "NULL"
		}
	case num == kasn1.TagOID:
		v, err = e.OID()
	case num == kasn1.TagUTCTime, num == kasn1.TagGeneralizedTime:
		var t time.Time
		t, err = e.Time()
		v = t.Format(time.RFC3339Nano)
	case ber.IsStringType(num):
		v, err = e.Text()
	default:
		return "", ""
	}
	if err != nil {
		return "", err.Error()
	}
	return v, ""
}

// writeText writes n and its descendants to s, one element per line.
func writeText(s *strings.Builder, n *node, depth int) {
	fmt.Fprintf(s, "%6d: %s%s len=%d", n.Offset, strings.Repeat("  ", depth), n.Tag, n.Length)
	if n.Constructed {
		s.WriteString(" constructed")
	}
	if n.Indefinite {
		s.WriteString(" indefinite")
	}
	switch {
	case n.Error != "":
		fmt.Fprintf(s, " error: %s", n.Error)
	case n.Value != "":
		fmt.Fprintf(s, " %s", n.Value)
	case n.Hex != "":
		b, _ := hex.DecodeString(n.Hex)
		fmt.Fprintf(s, " % X", b)
	}
	s.WriteByte('\n')
	for _, c := range n.Children {
		writeText(s, c, depth+1)
	}
}
