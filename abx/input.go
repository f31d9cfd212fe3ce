package abx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Decode errors.
var (
	// ErrBadMagic means the stream does not start with "ABX\0".
	ErrBadMagic = errors.New("invalid magic header")
	// ErrInternIndex means an interned string back-reference points
	// past the end of the intern table.
	ErrInternIndex = errors.New("interned string index out of range")
	// ErrBadToken means a token byte carries an illegal command/type pair.
	ErrBadToken = errors.New("invalid token")
)

// internNew is the reference value meaning "literal string follows,
// append it to the table".
const internNew = 0xFFFF

// DataInput reads big-endian ABX primitives from an io.Reader.
//
// It owns the read side of the string intern table and a single byte
// of lookahead, so attribute peeking works uniformly over seekable and
// non-seekable sources.
type DataInput struct {
	r        io.Reader
	peeked   bool
	peek     byte
	interned []string
	scratch  [8]byte
}

// NewDataInput creates a DataInput with an empty intern table.
func NewDataInput(r io.Reader) *DataInput {
	return &DataInput{r: r}
}

// ReadByte reads one byte.
func (in *DataInput) ReadByte() (byte, error) {
	if in.peeked {
		in.peeked = false
		return in.peek, nil
	}
	if _, err := io.ReadFull(in.r, in.scratch[:1]); err != nil {
		return 0, err
	}
	return in.scratch[0], nil
}

// PeekByte returns the next byte without consuming it. A subsequent
// ReadByte returns the same byte.
func (in *DataInput) PeekByte() (byte, error) {
	if in.peeked {
		return in.peek, nil
	}
	b, err := in.ReadByte()
	if err != nil {
		return 0, err
	}
	in.peeked = true
	in.peek = b
	return b, nil
}

func (in *DataInput) readFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if in.peeked {
		in.peeked = false
		buf[0] = in.peek
		buf = buf[1:]
	}
	if _, err := io.ReadFull(in.r, buf); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadShort reads a big-endian unsigned 16-bit integer.
func (in *DataInput) ReadShort() (uint16, error) {
	if err := in.readFull(in.scratch[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(in.scratch[:2]), nil
}

// ReadInt reads a big-endian signed 32-bit integer.
func (in *DataInput) ReadInt() (int32, error) {
	if err := in.readFull(in.scratch[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(in.scratch[:4])), nil
}

// ReadLong reads a big-endian signed 64-bit integer.
func (in *DataInput) ReadLong() (int64, error) {
	if err := in.readFull(in.scratch[:8]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(in.scratch[:8])), nil
}

// ReadFloat reads a big-endian IEEE 754 single-precision float.
func (in *DataInput) ReadFloat() (float32, error) {
	v, err := in.ReadInt()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadDouble reads a big-endian IEEE 754 double-precision float.
func (in *DataInput) ReadDouble() (float64, error) {
	v, err := in.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadBytes reads exactly n bytes.
func (in *DataInput) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := in.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUTF reads a string with a 16-bit byte-length prefix.
func (in *DataInput) ReadUTF() (string, error) {
	n, err := in.ReadShort()
	if err != nil {
		return "", err
	}
	buf, err := in.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadInternedUTF reads an interned string reference. The sentinel
// 0xFFFF means a literal string follows; it is appended to the intern
// table. Any other value is an index into the table.
func (in *DataInput) ReadInternedUTF() (string, error) {
	ref, err := in.ReadShort()
	if err != nil {
		return "", err
	}
	if ref == internNew {
		s, err := in.ReadUTF()
		if err != nil {
			return "", err
		}
		in.interned = append(in.interned, s)
		return s, nil
	}
	if int(ref) >= len(in.interned) {
		return "", fmt.Errorf("%w: %d (table size %d)", ErrInternIndex, ref, len(in.interned))
	}
	return in.interned[ref], nil
}
