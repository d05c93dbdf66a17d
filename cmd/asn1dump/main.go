// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command asn1dump decodes a BER data value and prints its element tree.
//
// The input is read from the file named by the first argument or from standard
// input. It may be binary, hex or base64 encoded. The tree is written as text,
// JSON or MessagePack. With --definite the data value is instead re-encoded
// using definite lengths and written as binary. With --stream the input is not
// held in memory; only an outline of the TLV headers is printed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mjwhitta/cli"
	"k8s.io/klog/v2"
)

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

var flags struct {
	input    string
	exact    bool
	maxDepth int
	format   string
	outfile  string
	definite bool
	stream   bool
	verbose  int
}

// parseFlags configures the command line interface and parses os.Args.
func parseFlags() {
	cli.Align = true
	cli.Authors = []string{"Kim Wittenburg"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS] [file]", os.Args[0])
	cli.Info(
		"Decode a BER data value and print its element tree.",
		"If no file is given or the file is -, standard input is read.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
		"2 - Invalid arguments",
	)

	cli.Flag(&flags.input, "i", "input", "auto", "Input encoding (auto, binary, hex, base64)")
	cli.Flag(&flags.exact, "x", "exact", false, "Reject trailing data after the first data value")
	cli.Flag(&flags.maxDepth, "m", "max-depth", 64, "Maximum nesting of constructed encodings (0 for no limit)")
	cli.Flag(&flags.format, "f", "format", "text", "Output format (text, json, msgpack)")
	cli.Flag(&flags.outfile, "o", "out", "", "Output file")
	cli.Flag(&flags.definite, "d", "definite", false, "Write the definite-length re-encoding instead of the tree")
	cli.Flag(&flags.stream, "s", "stream", false, "Print the header outline while reading (any number of data values)")
	cli.Flag(&flags.verbose, "v", "verbose", 0, "Log verbosity")
	cli.Parse()

	if cli.NArg() > 1 {
		cli.Usage(ExitMissingArg)
	}
}

func main() {
	parseFlags()
	os.Exit(run())
}

func run() int {
	defer klog.Flush()
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	_ = fs.Set("v", strconv.Itoa(flags.verbose))

	logger := klog.Background().WithName("asn1dump")
	ctx := klog.NewContext(context.Background(), logger)

	opts := options{
		input:    flags.input,
		exact:    flags.exact,
		maxDepth: flags.maxDepth,
		format:   flags.format,
		definite: flags.definite,
		stream:   flags.stream,
	}
	if err := opts.validate(); err != nil {
		logger.Error(err, "Invalid arguments")
		return ExitMissingArg
	}

	var in io.Reader = os.Stdin
	if cli.NArg() > 0 && cli.Arg(0) != "-" {
		f, err := os.Open(cli.Arg(0))
		if err != nil {
			logger.Error(err, "Failed to open input")
			return ExitError
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if flags.outfile != "" {
		f, err := os.Create(flags.outfile)
		if err != nil {
			logger.Error(err, "Failed to create output", "path", flags.outfile)
			return ExitError
		}
		defer f.Close()
		out = f
	}

	process := dump
	if opts.stream {
		process = stream
	}
	if err := process(ctx, in, out, opts); err != nil {
		logger.Error(err, "Failed to dump data value")
		return ExitError
	}
	return ExitSuccess
}
