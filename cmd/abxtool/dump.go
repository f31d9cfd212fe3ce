package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/Neumenon/abx/abx"
	abxcli "github.com/Neumenon/abx/internal/cli"
)

var (
	dimOffset  = color.New(color.Faint)
	structural = color.New(color.FgCyan)
	textual    = color.New(color.FgGreen)
	attrColor  = color.New(color.FgYellow)
	badColor   = color.New(color.FgRed)
)

// countReader tracks the stream position so dump lines carry the byte
// offset of each token.
type countReader struct {
	r io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// dump prints one line per token: offset, token name, decoded payload.
// It stops at the first byte it cannot interpret, like the decoder.
func dump(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input path")
	}
	data, wasGzip, err := abxcli.ReadInput(c.Args().Get(0))
	if err != nil {
		return err
	}
	if wasGzip {
		fmt.Println("(gzipped input, sizes below are uncompressed)")
	}
	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x41, 0x42, 0x58, 0x00}) {
		return fmt.Errorf("not an ABX file (magic header mismatch)")
	}
	fmt.Printf("%s  magic %q\n", dimOffset.Sprintf("%08x", 0), data[:4])

	cr := &countReader{r: bytes.NewReader(data[4:]), n: 4}
	in := abx.NewDataInput(cr)
	for {
		off := cr.n
		b, err := in.ReadByte()
		if err != nil {
			return nil
		}
		tok := abx.Token(b)
		if err := tok.Check(); err != nil {
			fmt.Printf("%s  %s\n", dimOffset.Sprintf("%08x", off),
				badColor.Sprintf("invalid token 0x%02x, stopping", b))
			return nil
		}
		payload, err := dumpPayload(in, tok)
		if err != nil {
			fmt.Printf("%s  %s  %s\n", dimOffset.Sprintf("%08x", off),
				tokenColor(tok).Sprint(tok), badColor.Sprintf("truncated: %v", err))
			return nil
		}
		line := tokenColor(tok).Sprint(tok.Command())
		if tok.Command() == abx.Attribute {
			line = tokenColor(tok).Sprintf("%s|%s", tok.Command(), tok.Type())
		}
		if payload != "" {
			line += "  " + payload
		}
		fmt.Printf("%s  %s\n", dimOffset.Sprintf("%08x", off), line)
		if tok.Command() == abx.EndDocument {
			return nil
		}
	}
}

func tokenColor(tok abx.Token) *color.Color {
	switch tok.Command() {
	case abx.StartTag, abx.EndTag, abx.StartDocument, abx.EndDocument:
		return structural
	case abx.Attribute:
		return attrColor
	default:
		return textual
	}
}

// dumpPayload consumes the token payload and renders it for display.
func dumpPayload(in *abx.DataInput, tok abx.Token) (string, error) {
	switch tok.Command() {
	case abx.StartDocument, abx.EndDocument:
		return "", nil

	case abx.StartTag, abx.EndTag:
		name, err := in.ReadInternedUTF()
		if err != nil {
			return "", err
		}
		return strconv.Quote(name), nil

	case abx.Attribute:
		name, err := in.ReadInternedUTF()
		if err != nil {
			return "", err
		}
		value, err := dumpValue(in, tok.Type())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", name, value), nil

	default:
		s, err := in.ReadUTF()
		if err != nil {
			return "", err
		}
		return strconv.Quote(s), nil
	}
}

func dumpValue(in *abx.DataInput, typ abx.Type) (string, error) {
	switch typ {
	case abx.TypeString:
		s, err := in.ReadUTF()
		if err != nil {
			return "", err
		}
		return strconv.Quote(s), nil
	case abx.TypeStringInterned:
		s, err := in.ReadInternedUTF()
		if err != nil {
			return "", err
		}
		return strconv.Quote(s) + " (interned)", nil
	case abx.TypeInt:
		v, err := in.ReadInt()
		return fmt.Sprintf("%d", v), err
	case abx.TypeIntHex:
		v, err := in.ReadInt()
		return fmt.Sprintf("0x%x", uint32(v)), err
	case abx.TypeLong:
		v, err := in.ReadLong()
		return fmt.Sprintf("%d (long)", v), err
	case abx.TypeLongHex:
		v, err := in.ReadLong()
		return fmt.Sprintf("0x%x (long)", uint64(v)), err
	case abx.TypeFloat:
		v, err := in.ReadFloat()
		return fmt.Sprintf("%g (float)", v), err
	case abx.TypeDouble:
		v, err := in.ReadDouble()
		return fmt.Sprintf("%g (double)", v), err
	case abx.TypeBooleanTrue:
		return "true", nil
	case abx.TypeBooleanFalse:
		return "false", nil
	case abx.TypeBytesHex, abx.TypeBytesBase64:
		n, err := in.ReadShort()
		if err != nil {
			return "", err
		}
		raw, err := in.ReadBytes(int(n))
		if err != nil {
			return "", err
		}
		if typ == abx.TypeBytesHex {
			return fmt.Sprintf("%d bytes hex %s", n, hex.EncodeToString(raw)), nil
		}
		return fmt.Sprintf("%d bytes base64 %s", n, base64.StdEncoding.EncodeToString(raw)), nil
	default:
		return "", fmt.Errorf("unknown attribute type %s", typ)
	}
}
