// Package abx implements the Android Binary XML (ABX) wire format:
//   - Magic header 0x41 0x42 0x58 0x00 ("ABX\0")
//   - One-byte tokens: structural command in the low nibble,
//     value type in the high nibble
//   - Big-endian primitives, length-prefixed UTF-8 strings
//   - Per-stream string interning (first occurrence literal,
//     later occurrences a 2-byte back-reference)
//
// The Serializer writes ABX token streams through an explicitly typed
// builder API. The Deserializer reads them back into textual XML.
// EncodeXML converts generic textual XML to ABX using heuristic
// attribute type inference.
package abx

import "fmt"

// Command is the structural event carried in the low nibble of a token byte.
type Command uint8

const (
	StartDocument         Command = 0
	EndDocument           Command = 1
	StartTag              Command = 2
	EndTag                Command = 3
	Text                  Command = 4
	CDSect                Command = 5
	EntityRef             Command = 6
	IgnorableWhitespace   Command = 7
	ProcessingInstruction Command = 8
	Comment               Command = 9
	Docdecl               Command = 10
	Attribute             Command = 15
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case StartDocument:
		return "START_DOCUMENT"
	case EndDocument:
		return "END_DOCUMENT"
	case StartTag:
		return "START_TAG"
	case EndTag:
		return "END_TAG"
	case Text:
		return "TEXT"
	case CDSect:
		return "CDSECT"
	case EntityRef:
		return "ENTITY_REF"
	case IgnorableWhitespace:
		return "IGNORABLE_WHITESPACE"
	case ProcessingInstruction:
		return "PROCESSING_INSTRUCTION"
	case Comment:
		return "COMMENT"
	case Docdecl:
		return "DOCDECL"
	case Attribute:
		return "ATTRIBUTE"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Type is the value type carried in the high nibble of a token byte.
type Type uint8

const (
	TypeNull           Type = 1 << 4
	TypeString         Type = 2 << 4
	TypeStringInterned Type = 3 << 4
	TypeBytesHex       Type = 4 << 4
	TypeBytesBase64    Type = 5 << 4
	TypeInt            Type = 6 << 4
	TypeIntHex         Type = 7 << 4
	TypeLong           Type = 8 << 4
	TypeLongHex        Type = 9 << 4
	TypeFloat          Type = 10 << 4
	TypeDouble         Type = 11 << 4
	TypeBooleanTrue    Type = 12 << 4
	TypeBooleanFalse   Type = 13 << 4
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeString:
		return "STRING"
	case TypeStringInterned:
		return "STRING_INTERNED"
	case TypeBytesHex:
		return "BYTES_HEX"
	case TypeBytesBase64:
		return "BYTES_BASE64"
	case TypeInt:
		return "INT"
	case TypeIntHex:
		return "INT_HEX"
	case TypeLong:
		return "LONG"
	case TypeLongHex:
		return "LONG_HEX"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeBooleanTrue:
		return "BOOLEAN_TRUE"
	case TypeBooleanFalse:
		return "BOOLEAN_FALSE"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t)>>4)
	}
}

// Token is one opcode byte: command | type.
type Token uint8

// MakeToken packs a command and a type into one token byte.
func MakeToken(c Command, t Type) Token {
	return Token(uint8(c) | uint8(t))
}

// Command returns the structural command in the low nibble.
func (tok Token) Command() Command {
	return Command(tok & 0x0F)
}

// Type returns the value type in the high nibble.
func (tok Token) Type() Type {
	return Type(tok & 0xF0)
}

// String returns a debug representation of the token.
func (tok Token) String() string {
	return fmt.Sprintf("%s|%s", tok.Command(), tok.Type())
}

// Check validates the command/type pairing. Every command admits a
// fixed set of types: document markers are NULL, tag names are always
// interned, textual payloads are plain strings, and attributes carry
// any value type except NULL.
func (tok Token) Check() error {
	cmd, typ := tok.Command(), tok.Type()
	switch cmd {
	case StartDocument, EndDocument:
		if typ == TypeNull {
			return nil
		}
	case StartTag, EndTag:
		if typ == TypeStringInterned {
			return nil
		}
	case Text, CDSect, EntityRef, IgnorableWhitespace,
		ProcessingInstruction, Comment, Docdecl:
		if typ == TypeString {
			return nil
		}
	case Attribute:
		switch typ {
		case TypeString, TypeStringInterned, TypeBytesHex, TypeBytesBase64,
			TypeInt, TypeIntHex, TypeLong, TypeLongHex,
			TypeFloat, TypeDouble, TypeBooleanTrue, TypeBooleanFalse:
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrBadToken, tok)
}
