package abx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Encode errors.
var (
	// ErrTooLong means a string or byte payload exceeds the 65535-byte
	// field limit.
	ErrTooLong = errors.New("payload exceeds 65535 bytes")
	// ErrInternOverflow means the write-side intern table is full.
	ErrInternOverflow = errors.New("intern table overflow")
)

// maxUnsignedShort is the largest length a 16-bit prefix can carry,
// and the largest intern table index (0xFFFF itself is the sentinel).
const maxUnsignedShort = 65535

// DataOutput writes big-endian ABX primitives to an io.Writer.
//
// It owns the write side of the string intern table: an insertion-order
// index map, so repeated names cost two bytes instead of a literal.
type DataOutput struct {
	w       io.Writer
	pool    map[string]uint16
	scratch [8]byte
}

// NewDataOutput creates a DataOutput with an empty intern table.
func NewDataOutput(w io.Writer) *DataOutput {
	return &DataOutput{w: w, pool: make(map[string]uint16)}
}

// WriteByte writes one byte.
func (out *DataOutput) WriteByte(b byte) error {
	out.scratch[0] = b
	_, err := out.w.Write(out.scratch[:1])
	return err
}

// WriteShort writes a big-endian unsigned 16-bit integer.
func (out *DataOutput) WriteShort(v uint16) error {
	binary.BigEndian.PutUint16(out.scratch[:2], v)
	_, err := out.w.Write(out.scratch[:2])
	return err
}

// WriteInt writes a big-endian signed 32-bit integer.
func (out *DataOutput) WriteInt(v int32) error {
	binary.BigEndian.PutUint32(out.scratch[:4], uint32(v))
	_, err := out.w.Write(out.scratch[:4])
	return err
}

// WriteLong writes a big-endian signed 64-bit integer.
func (out *DataOutput) WriteLong(v int64) error {
	binary.BigEndian.PutUint64(out.scratch[:8], uint64(v))
	_, err := out.w.Write(out.scratch[:8])
	return err
}

// WriteFloat writes a big-endian IEEE 754 single-precision float.
func (out *DataOutput) WriteFloat(v float32) error {
	return out.WriteInt(int32(math.Float32bits(v)))
}

// WriteDouble writes a big-endian IEEE 754 double-precision float.
func (out *DataOutput) WriteDouble(v float64) error {
	return out.WriteLong(int64(math.Float64bits(v)))
}

// Write writes raw bytes.
func (out *DataOutput) Write(data []byte) error {
	_, err := out.w.Write(data)
	return err
}

// WriteUTF writes a string with a 16-bit byte-length prefix.
func (out *DataOutput) WriteUTF(s string) error {
	if len(s) > maxUnsignedShort {
		return fmt.Errorf("%w: string is %d bytes", ErrTooLong, len(s))
	}
	if err := out.WriteShort(uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(out.w, s)
	return err
}

// WriteInternedUTF writes an interned string reference. The first
// occurrence writes the 0xFFFF sentinel followed by the literal and
// claims the next table index; later occurrences write only the index.
func (out *DataOutput) WriteInternedUTF(s string) error {
	if idx, ok := out.pool[s]; ok {
		return out.WriteShort(idx)
	}
	if len(out.pool) >= maxUnsignedShort {
		return fmt.Errorf("%w: %d unique strings", ErrInternOverflow, len(out.pool))
	}
	if err := out.WriteShort(internNew); err != nil {
		return err
	}
	if err := out.WriteUTF(s); err != nil {
		return err
	}
	out.pool[s] = uint16(len(out.pool))
	return nil
}

// Flush flushes the underlying writer if it is buffered.
func (out *DataOutput) Flush() error {
	if f, ok := out.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
