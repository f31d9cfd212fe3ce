// abx2xml converts Android Binary XML (ABX) files to textual XML.
//
// Usage:
//
//	abx2xml [-i] input [output]
//
// Paths may be "-" for stdin/stdout. With -i the input file is
// rewritten in place. Gzipped input is decompressed transparently.
package main

import (
	"bytes"
	"encoding/xml"
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
	var inPlace bool

	flagSet := pflag.NewFlagSet("abx2xml", pflag.ContinueOnError)
	flagSet.BoolVarP(&inPlace, "in-place", "i", false, "rewrite the input file in place")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: abx2xml [-i] input [output]\n\n%s", flagSet.FlagUsages())
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
	body, err := abx.DecodeXMLBytes(data, &abx.Options{
		Warn: func(category, message string) {
			logger.Warn(message, "category", category)
		},
	})
	if err != nil {
		return err
	}
	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.Write(body)
	if !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
		out.WriteByte('\n')
	}
	return cli.WriteOutput(output, out.Bytes(), false)
}
