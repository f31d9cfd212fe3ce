// xml2abx converts textual XML files to Android Binary XML (ABX).
//
// Usage:
//
//	xml2abx [-i] [-c] [--gzip] input [output]
//
// Paths may be "-" for stdin/stdout. With -i the input file is
// rewritten in place. Gzipped input is decompressed transparently;
// --gzip compresses the output. Attribute types are inferred from the
// textual values.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/Neumenon/abx/abx"
	"github.com/Neumenon/abx/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inPlace  bool
		collapse bool
		gzipOut  bool
	)

	flagSet := pflag.NewFlagSet("xml2abx", pflag.ContinueOnError)
	flagSet.BoolVarP(&inPlace, "in-place", "i", false, "rewrite the input file in place")
	flagSet.BoolVarP(&collapse, "collapse-whitespaces", "c", false, "drop whitespace-only text nodes")
	flagSet.BoolVar(&gzipOut, "gzip", false, "gzip the output")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: xml2abx [-i] [-c] [--gzip] input [output]\n\n%s", flagSet.FlagUsages())
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	args := flagSet.Args()
	if len(args) < 1 || len(args) > 2 {
		flagSet.Usage()
		os.Exit(2)
	}
	input := args[0]
	output := cli.Stdio
	switch {
	case inPlace:
		if input == cli.Stdio {
			return fmt.Errorf("-i requires a file path, not %q", cli.Stdio)
		}
		if len(args) == 2 {
			return fmt.Errorf("-i takes no output path")
		}
		output = input
	case len(args) == 2:
		output = args[1]
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	data, _, err := cli.ReadInput(input)
	if err != nil {
		return err
	}
	abxData, err := abx.EncodeXMLBytes(data, &abx.Options{
		CollapseWhitespace: collapse,
		Warn: func(category, message string) {
			logger.Warn(message, "category", category)
		},
	})
	if err != nil {
		return err
	}
	return cli.WriteOutput(output, abxData, gzipOut)
}
