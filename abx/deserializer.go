package abx

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Deserializer converts an ABX token stream back into textual XML.
//
// The magic header is validated at construction; a mismatch is fatal
// before any tokens are read. During decoding, reaching end-of-stream
// mid-token is normal, silent termination: real-world files routinely
// omit the trailing END_DOCUMENT marker. Other mid-stream decode
// failures likewise stop the loop with best-effort output and are
// reported through the warning callback rather than as errors. Only
// sink write failures propagate.
type Deserializer struct {
	in   *DataInput
	w    io.Writer
	warn func(category, message string)
	tags []string
	werr error
}

// DeserializerOption configures a Deserializer.
type DeserializerOption func(*Deserializer)

// WithWarnings installs a callback for non-fatal protocol anomalies
// (truncated streams, malformed trailing tokens, tag mismatches).
func WithWarnings(fn func(category, message string)) DeserializerOption {
	return func(d *Deserializer) {
		d.warn = fn
	}
}

// NewDeserializer creates a Deserializer reading ABX from r and writing
// XML text to w. It consumes and validates the 4-byte magic header.
func NewDeserializer(r io.Reader, w io.Writer, opts ...DeserializerOption) (*Deserializer, error) {
	in := NewDataInput(r)
	hdr, err := in.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("read magic header: %w", err)
	}
	if !bytes.Equal(hdr, magic[:]) {
		return nil, fmt.Errorf("%w: % x", ErrBadMagic, hdr)
	}
	d := &Deserializer{in: in, w: w}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Deserializer) emit(s string) {
	if d.werr != nil {
		return
	}
	if _, err := io.WriteString(d.w, s); err != nil {
		d.werr = fmt.Errorf("write output: %w", err)
	}
}

func (d *Deserializer) warnf(category, format string, args ...any) {
	if d.warn != nil {
		d.warn(category, fmt.Sprintf(format, args...))
	}
}

// Decode runs the token loop to completion. It returns an error only
// when the output sink fails; source-side truncation and trailing
// garbage terminate silently per the format's recovery policy.
func (d *Deserializer) Decode() error {
	for {
		b, err := d.in.ReadByte()
		if err != nil {
			// Stream exhausted without END_DOCUMENT: normal.
			return d.werr
		}
		tok := Token(b)
		if err := tok.Check(); err != nil {
			d.warnf("protocol", "stopping at %v", err)
			return d.werr
		}

		switch tok.Command() {
		case StartDocument:
			// No payload, nothing to emit.

		case EndDocument:
			return d.werr

		case StartTag:
			name, err := d.in.ReadInternedUTF()
			if err != nil {
				return d.werr
			}
			d.tags = append(d.tags, name)
			d.emit("<" + name)
			// The format carries no attribute count, so peek ahead:
			// consume ATTRIBUTE tokens until something else shows up.
			for {
				nb, err := d.in.PeekByte()
				if err != nil || Token(nb).Command() != Attribute {
					break
				}
				d.in.ReadByte()
				if err := d.decodeAttribute(Token(nb)); err != nil {
					d.warnf("protocol", "stopping at attribute: %v", err)
					d.emit(">")
					return d.werr
				}
			}
			d.emit(">")

		case EndTag:
			name, err := d.in.ReadInternedUTF()
			if err != nil {
				return d.werr
			}
			if len(d.tags) == 0 || d.tags[len(d.tags)-1] != name {
				d.warnf("protocol", "stopping at mismatched end tag %q", name)
				return d.werr
			}
			d.tags = d.tags[:len(d.tags)-1]
			d.emit("</" + name + ">")

		case Text:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			if s != "" {
				d.emit(escapeEntities(s))
			}

		case CDSect:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit("<![CDATA[" + s + "]]>")

		case Comment:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit("<!--" + s + "-->")

		case ProcessingInstruction:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit("<?" + s + "?>")

		case Docdecl:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit("<!DOCTYPE " + s + ">")

		case EntityRef:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit("&" + s + ";")

		case IgnorableWhitespace:
			s, err := d.in.ReadUTF()
			if err != nil {
				return d.werr
			}
			d.emit(s)
		}

		if d.werr != nil {
			return d.werr
		}
	}
}

// decodeAttribute reads one attribute (name plus typed value) and
// emits it as ` name="value"`.
func (d *Deserializer) decodeAttribute(tok Token) error {
	name, err := d.in.ReadInternedUTF()
	if err != nil {
		return err
	}

	var value string
	switch tok.Type() {
	case TypeString:
		s, err := d.in.ReadUTF()
		if err != nil {
			return err
		}
		value = escapeEntities(s)
	case TypeStringInterned:
		s, err := d.in.ReadInternedUTF()
		if err != nil {
			return err
		}
		value = escapeEntities(s)
	case TypeInt:
		v, err := d.in.ReadInt()
		if err != nil {
			return err
		}
		value = strconv.FormatInt(int64(v), 10)
	case TypeIntHex:
		v, err := d.in.ReadInt()
		if err != nil {
			return err
		}
		// -1 is a platform sentinel and renders as decimal, not hex.
		if v == -1 {
			value = "-1"
		} else {
			value = strconv.FormatUint(uint64(uint32(v)), 16)
		}
	case TypeLong:
		v, err := d.in.ReadLong()
		if err != nil {
			return err
		}
		value = strconv.FormatInt(v, 10)
	case TypeLongHex:
		v, err := d.in.ReadLong()
		if err != nil {
			return err
		}
		if v == -1 {
			value = "-1"
		} else {
			value = strconv.FormatUint(uint64(v), 16)
		}
	case TypeFloat:
		v, err := d.in.ReadFloat()
		if err != nil {
			return err
		}
		value = formatFloat(float64(v), 32)
	case TypeDouble:
		v, err := d.in.ReadDouble()
		if err != nil {
			return err
		}
		value = formatFloat(v, 64)
	case TypeBooleanTrue:
		value = "true"
	case TypeBooleanFalse:
		value = "false"
	case TypeBytesHex:
		data, err := d.readSizedBytes()
		if err != nil {
			return err
		}
		value = hex.EncodeToString(data)
	case TypeBytesBase64:
		data, err := d.readSizedBytes()
		if err != nil {
			return err
		}
		value = base64.StdEncoding.EncodeToString(data)
	default:
		return fmt.Errorf("%w: unknown attribute type %s", ErrBadToken, tok.Type())
	}

	d.emit(" " + name + "=\"" + value + "\"")
	return nil
}

func (d *Deserializer) readSizedBytes() ([]byte, error) {
	n, err := d.in.ReadShort()
	if err != nil {
		return nil, err
	}
	return d.in.ReadBytes(int(n))
}

// formatFloat renders a float the way the reference tool does: finite
// values equal to their own floor become "<integer>.0", everything
// else uses the shortest decimal representation.
func formatFloat(v float64, bits int) string {
	if v == math.Floor(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return strconv.FormatInt(int64(v), 10) + ".0"
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeEntities escapes the five XML entities. Applied to TEXT nodes
// and attribute values only, never to CDATA or comment content.
func escapeEntities(s string) string {
	return entityReplacer.Replace(s)
}
