package abx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Options controls the textual XML conversion helpers.
type Options struct {
	// CollapseWhitespace drops whitespace-only text nodes on encode
	// instead of storing them as IGNORABLE_WHITESPACE tokens.
	CollapseWhitespace bool

	// Warn, when set, receives non-fatal anomalies from either
	// direction: unsupported XML constructs on encode, protocol
	// recoveries on decode.
	Warn func(category, message string)
}

func (o *Options) warnf(category, format string, args ...any) {
	if o != nil && o.Warn != nil {
		o.Warn(category, fmt.Sprintf(format, args...))
	}
}

// xmlName flattens a parsed name back to its source form. The raw
// tokenizer leaves the prefix in Space, so "android:name" survives
// the round trip.
func xmlName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

// EncodeXML converts textual XML from src into an ABX stream on dst.
// Attribute values are typed by inference; everything else maps one
// token per XML event. The leading <?xml ...?> declaration is implied
// by the format and not stored.
func EncodeXML(dst io.Writer, src io.Reader, opts *Options) error {
	s, err := NewSerializer(dst)
	if err != nil {
		return err
	}
	if err := s.StartDocument(); err != nil {
		return err
	}

	dec := xml.NewDecoder(src)
	dec.Strict = false
	warnedNS := false
	warnNS := func(name string) {
		if warnedNS {
			return
		}
		if strings.Contains(name, ":") || strings.HasPrefix(name, "xmlns") {
			opts.warnf("namespace", "prefixed names like %q are stored as opaque strings", name)
			warnedNS = true
		}
	}
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := xmlName(t.Name)
			warnNS(name)
			if err := s.StartTag(name); err != nil {
				return err
			}
			for _, a := range t.Attr {
				attrName := xmlName(a.Name)
				warnNS(attrName)
				if err := writeInferredAttribute(s, attrName, a.Value); err != nil {
					return err
				}
			}

		case xml.EndElement:
			if err := s.EndTag(xmlName(t.Name)); err != nil {
				return err
			}

		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				if opts != nil && opts.CollapseWhitespace {
					continue
				}
				if err := s.IgnorableWhitespace(text); err != nil {
					return err
				}
			} else if err := s.Text(text); err != nil {
				return err
			}

		case xml.Comment:
			if err := s.Comment(string(t)); err != nil {
				return err
			}

		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			if err := s.ProcessingInstruction(t.Target, string(t.Inst)); err != nil {
				return err
			}

		case xml.Directive:
			d := string(t)
			if rest, ok := strings.CutPrefix(d, "DOCTYPE "); ok {
				if err := s.Docdecl(rest); err != nil {
					return err
				}
			} else {
				opts.warnf("xml", "skipping directive <!%s>", d)
			}
		}
	}

	return s.EndDocument()
}

// DecodeXML converts an ABX stream from src into textual XML on dst.
// A bad magic header is fatal; truncated streams decode best-effort.
func DecodeXML(dst io.Writer, src io.Reader, opts *Options) error {
	var dopts []DeserializerOption
	if opts != nil && opts.Warn != nil {
		dopts = append(dopts, WithWarnings(opts.Warn))
	}
	d, err := NewDeserializer(src, dst, dopts...)
	if err != nil {
		return err
	}
	return d.Decode()
}

// EncodeXMLBytes is EncodeXML over byte slices.
func EncodeXMLBytes(src []byte, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeXML(&buf, bytes.NewReader(src), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeXMLBytes is DecodeXML over byte slices.
func DecodeXMLBytes(src []byte, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := DecodeXML(&buf, bytes.NewReader(src), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
