package abx

import (
	"fmt"
	"io"
)

// magic is the 4-byte ABX stream header: "ABX\0".
var magic = [4]byte{0x41, 0x42, 0x58, 0x00}

// TagMismatchError reports an EndTag whose name does not match the
// innermost open tag, or an EndTag with no open tag at all.
type TagMismatchError struct {
	Open string // innermost open tag, "" if the stack was empty
	Got  string
}

func (e *TagMismatchError) Error() string {
	if e.Open == "" {
		return fmt.Sprintf("end tag %q without matching start tag", e.Got)
	}
	return fmt.Sprintf("mismatched tags: open %q, got end tag %q", e.Open, e.Got)
}

// UnclosedTagsError reports EndDocument called with tags still open.
type UnclosedTagsError struct {
	Open []string
}

func (e *UnclosedTagsError) Error() string {
	return fmt.Sprintf("%d unclosed elements at end of document (innermost %q)",
		len(e.Open), e.Open[len(e.Open)-1])
}

// Serializer emits an ABX token stream through an explicitly typed
// builder API. It enforces tag nesting with an internal stack and
// writes the magic header at construction.
//
// Not safe for concurrent use; each document gets its own instance.
type Serializer struct {
	out  *DataOutput
	tags []string
}

// NewSerializer creates a Serializer over w and writes the magic header.
func NewSerializer(w io.Writer) (*Serializer, error) {
	out := NewDataOutput(w)
	if err := out.Write(magic[:]); err != nil {
		return nil, err
	}
	return &Serializer{out: out}, nil
}

// writeToken writes a text-carrying token: command|STRING plus the
// payload when text is non-nil, command|NULL otherwise.
func (s *Serializer) writeToken(cmd Command, text *string) error {
	if text == nil {
		return s.out.WriteByte(byte(MakeToken(cmd, TypeNull)))
	}
	if err := s.out.WriteByte(byte(MakeToken(cmd, TypeString))); err != nil {
		return err
	}
	return s.out.WriteUTF(*text)
}

// StartDocument writes the START_DOCUMENT marker.
func (s *Serializer) StartDocument() error {
	return s.writeToken(StartDocument, nil)
}

// EndDocument writes the END_DOCUMENT marker and flushes the sink.
// All opened tags must have been closed.
func (s *Serializer) EndDocument() error {
	if len(s.tags) > 0 {
		return &UnclosedTagsError{Open: append([]string(nil), s.tags...)}
	}
	if err := s.writeToken(EndDocument, nil); err != nil {
		return err
	}
	return s.out.Flush()
}

// StartTag opens an element. The name is always interned. The tag is
// pushed only once both writes succeed, so a write failure does not
// leave a phantom open tag behind.
func (s *Serializer) StartTag(name string) error {
	if err := s.out.WriteByte(byte(MakeToken(StartTag, TypeStringInterned))); err != nil {
		return err
	}
	if err := s.out.WriteInternedUTF(name); err != nil {
		return err
	}
	s.tags = append(s.tags, name)
	return nil
}

// EndTag closes the innermost open element. The name must match.
func (s *Serializer) EndTag(name string) error {
	if len(s.tags) == 0 {
		return &TagMismatchError{Got: name}
	}
	top := s.tags[len(s.tags)-1]
	if top != name {
		return &TagMismatchError{Open: top, Got: name}
	}
	s.tags = s.tags[:len(s.tags)-1]
	if err := s.out.WriteByte(byte(MakeToken(EndTag, TypeStringInterned))); err != nil {
		return err
	}
	return s.out.WriteInternedUTF(name)
}

// attrHead writes the attribute token and the interned attribute name.
func (s *Serializer) attrHead(typ Type, name string) error {
	if err := s.out.WriteByte(byte(MakeToken(Attribute, typ))); err != nil {
		return err
	}
	return s.out.WriteInternedUTF(name)
}

// Attribute writes a plain string attribute. The value is written as a
// fresh, non-interned string.
func (s *Serializer) Attribute(name, value string) error {
	if err := s.attrHead(TypeString, name); err != nil {
		return err
	}
	return s.out.WriteUTF(value)
}

// AttributeInterned writes a string attribute whose value is interned.
func (s *Serializer) AttributeInterned(name, value string) error {
	if err := s.attrHead(TypeStringInterned, name); err != nil {
		return err
	}
	return s.out.WriteInternedUTF(value)
}

func (s *Serializer) attrBytes(typ Type, name string, data []byte) error {
	if len(data) > maxUnsignedShort {
		return fmt.Errorf("%w: %d bytes", ErrTooLong, len(data))
	}
	if err := s.attrHead(typ, name); err != nil {
		return err
	}
	if err := s.out.WriteShort(uint16(len(data))); err != nil {
		return err
	}
	return s.out.Write(data)
}

// AttributeBytesHex writes a binary attribute rendered as lowercase hex.
func (s *Serializer) AttributeBytesHex(name string, data []byte) error {
	return s.attrBytes(TypeBytesHex, name, data)
}

// AttributeBytesBase64 writes a binary attribute rendered as base64.
func (s *Serializer) AttributeBytesBase64(name string, data []byte) error {
	return s.attrBytes(TypeBytesBase64, name, data)
}

// AttributeInt writes a 32-bit integer attribute (decimal rendering).
func (s *Serializer) AttributeInt(name string, value int32) error {
	if err := s.attrHead(TypeInt, name); err != nil {
		return err
	}
	return s.out.WriteInt(value)
}

// AttributeIntHex writes a 32-bit integer attribute (hex rendering).
func (s *Serializer) AttributeIntHex(name string, value int32) error {
	if err := s.attrHead(TypeIntHex, name); err != nil {
		return err
	}
	return s.out.WriteInt(value)
}

// AttributeLong writes a 64-bit integer attribute (decimal rendering).
func (s *Serializer) AttributeLong(name string, value int64) error {
	if err := s.attrHead(TypeLong, name); err != nil {
		return err
	}
	return s.out.WriteLong(value)
}

// AttributeLongHex writes a 64-bit integer attribute (hex rendering).
func (s *Serializer) AttributeLongHex(name string, value int64) error {
	if err := s.attrHead(TypeLongHex, name); err != nil {
		return err
	}
	return s.out.WriteLong(value)
}

// AttributeFloat writes a single-precision float attribute.
func (s *Serializer) AttributeFloat(name string, value float32) error {
	if err := s.attrHead(TypeFloat, name); err != nil {
		return err
	}
	return s.out.WriteFloat(value)
}

// AttributeDouble writes a double-precision float attribute.
func (s *Serializer) AttributeDouble(name string, value float64) error {
	if err := s.attrHead(TypeDouble, name); err != nil {
		return err
	}
	return s.out.WriteDouble(value)
}

// AttributeBool writes a boolean attribute. The value lives entirely in
// the type nibble; there is no payload.
func (s *Serializer) AttributeBool(name string, value bool) error {
	typ := TypeBooleanFalse
	if value {
		typ = TypeBooleanTrue
	}
	return s.attrHead(typ, name)
}

// Text writes a text node.
func (s *Serializer) Text(text string) error {
	return s.writeToken(Text, &text)
}

// CDSect writes a CDATA section.
func (s *Serializer) CDSect(text string) error {
	return s.writeToken(CDSect, &text)
}

// Comment writes a comment.
func (s *Serializer) Comment(text string) error {
	return s.writeToken(Comment, &text)
}

// ProcessingInstruction writes a processing instruction. Target and
// data are stored as a single space-joined payload.
func (s *Serializer) ProcessingInstruction(target, data string) error {
	full := target
	if data != "" {
		full = target + " " + data
	}
	return s.writeToken(ProcessingInstruction, &full)
}

// Docdecl writes a document type declaration. The payload is the text
// after "<!DOCTYPE ".
func (s *Serializer) Docdecl(text string) error {
	return s.writeToken(Docdecl, &text)
}

// IgnorableWhitespace writes a whitespace-only text node.
func (s *Serializer) IgnorableWhitespace(text string) error {
	return s.writeToken(IgnorableWhitespace, &text)
}

// EntityRef writes an entity reference by name (without & and ;).
func (s *Serializer) EntityRef(name string) error {
	return s.writeToken(EntityRef, &name)
}

// Depth returns the number of currently open tags.
func (s *Serializer) Depth() int {
	return len(s.tags)
}
