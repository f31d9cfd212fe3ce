package abx

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestInternRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	out := NewDataOutput(&buf)
	// Two distinct strings, then repeats in mixed order.
	for _, s := range []string{"name", "value", "name", "value", "name"} {
		if err := out.WriteInternedUTF(s); err != nil {
			t.Fatalf("WriteInternedUTF(%q): %v", s, err)
		}
	}

	// First occurrences carry the literal, repeats are 2-byte refs.
	want := []byte{
		0xFF, 0xFF, 0x00, 0x04, 'n', 'a', 'm', 'e',
		0xFF, 0xFF, 0x00, 0x05, 'v', 'a', 'l', 'u', 'e',
		0x00, 0x00,
		0x00, 0x01,
		0x00, 0x00,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded bytes = % x, want % x", buf.Bytes(), want)
	}

	in := NewDataInput(&buf)
	for i, want := range []string{"name", "value", "name", "value", "name"} {
		got, err := in.ReadInternedUTF()
		if err != nil {
			t.Fatalf("ReadInternedUTF #%d: %v", i, err)
		}
		if got != want {
			t.Errorf("ReadInternedUTF #%d = %q, want %q", i, got, want)
		}
	}
}

func TestInternIndexOutOfRange(t *testing.T) {
	// Reference 5 against an empty table.
	in := NewDataInput(bytes.NewReader([]byte{0x00, 0x05}))
	if _, err := in.ReadInternedUTF(); !errors.Is(err, ErrInternIndex) {
		t.Fatalf("err = %v, want ErrInternIndex", err)
	}
}

func TestPeekByte(t *testing.T) {
	in := NewDataInput(bytes.NewReader([]byte{0xAB, 0x00, 0x02, 'h', 'i'}))

	b, err := in.PeekByte()
	if err != nil || b != 0xAB {
		t.Fatalf("PeekByte = %#x, %v", b, err)
	}
	// Peeking again does not advance.
	b, err = in.PeekByte()
	if err != nil || b != 0xAB {
		t.Fatalf("second PeekByte = %#x, %v", b, err)
	}
	b, err = in.ReadByte()
	if err != nil || b != 0xAB {
		t.Fatalf("ReadByte after peek = %#x, %v", b, err)
	}
	// Multi-byte reads also serve the peeked byte first.
	if _, err := in.PeekByte(); err != nil {
		t.Fatal(err)
	}
	s, err := in.ReadUTF()
	if err != nil || s != "hi" {
		t.Fatalf("ReadUTF = %q, %v", s, err)
	}
}

func TestTruncatedRead(t *testing.T) {
	// Length prefix says 5 bytes, only 2 present.
	in := NewDataInput(bytes.NewReader([]byte{0x00, 0x05, 'h', 'i'}))
	if _, err := in.ReadUTF(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestWriteUTFTooLong(t *testing.T) {
	out := NewDataOutput(io.Discard)
	if err := out.WriteUTF(string(make([]byte, 65536))); !errors.Is(err, ErrTooLong) {
		t.Fatalf("err = %v, want ErrTooLong", err)
	}
}
