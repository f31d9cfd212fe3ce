// abxtool is the multi-command companion to abx2xml and xml2abx: the
// same conversions as subcommands, plus a token-level dump for
// inspecting ABX files.
package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/Neumenon/abx/abx"
	abxcli "github.com/Neumenon/abx/internal/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "abxtool"
	app.Usage = "convert and inspect Android Binary XML (ABX) files"
	app.Commands = []cli.Command{
		cli.Command{
			Name:      "to-xml",
			Usage:     "convert ABX to textual XML",
			ArgsUsage: "input [output]",
			Action:    toXML,
		},
		cli.Command{
			Name:      "from-xml",
			Usage:     "convert textual XML to ABX",
			ArgsUsage: "input [output]",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "collapse-whitespaces, c",
					Usage: "drop whitespace-only text nodes",
				},
				cli.BoolFlag{
					Name:  "gzip",
					Usage: "gzip the output",
				},
			},
			Action: fromXML,
		},
		cli.Command{
			Name:      "dump",
			Usage:     "print an annotated token listing of an ABX file",
			ArgsUsage: "input",
			Action:    dump,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func paths(c *cli.Context) (input, output string, err error) {
	switch c.NArg() {
	case 1:
		return c.Args().Get(0), abxcli.Stdio, nil
	case 2:
		return c.Args().Get(0), c.Args().Get(1), nil
	default:
		return "", "", fmt.Errorf("expected input [output], got %d arguments", c.NArg())
	}
}

func warnLogger() func(category, message string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return func(category, message string) {
		logger.Warn(message, "category", category)
	}
}

func toXML(c *cli.Context) error {
	input, output, err := paths(c)
	if err != nil {
		return err
	}
	data, _, err := abxcli.ReadInput(input)
	if err != nil {
		return err
	}
	body, err := abx.DecodeXMLBytes(data, &abx.Options{Warn: warnLogger()})
	if err != nil {
		return err
	}
	var out bytes.Buffer
	out.WriteString(xml.Header)
	out.Write(body)
	if !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
		out.WriteByte('\n')
	}
	return abxcli.WriteOutput(output, out.Bytes(), false)
}

func fromXML(c *cli.Context) error {
	input, output, err := paths(c)
	if err != nil {
		return err
	}
	data, _, err := abxcli.ReadInput(input)
	if err != nil {
		return err
	}
	abxData, err := abx.EncodeXMLBytes(data, &abx.Options{
		CollapseWhitespace: c.Bool("collapse-whitespaces"),
		Warn:               warnLogger(),
	})
	if err != nil {
		return err
	}
	return abxcli.WriteOutput(output, abxData, c.Bool("gzip"))
}
