package abx

import (
	"bytes"
	"errors"
	"testing"
)

func TestSerializerGolden(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSerializer(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartDocument(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.AttributeInt("n", 7); err != nil {
		t.Fatal(err)
	}
	if err := s.Text("hi"); err != nil {
		t.Fatal(err)
	}
	if err := s.EndTag("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.EndDocument(); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x41, 0x42, 0x58, 0x00, // magic
		0x10,                               // START_DOCUMENT|NULL
		0x32, 0xFF, 0xFF, 0x00, 0x01, 'a',  // START_TAG, new intern "a"
		0x6F, 0xFF, 0xFF, 0x00, 0x01, 'n',  // ATTRIBUTE|INT, new intern "n"
		0x00, 0x00, 0x00, 0x07,             // value 7
		0x24, 0x00, 0x02, 'h', 'i',         // TEXT|STRING "hi"
		0x33, 0x00, 0x00,                   // END_TAG, intern ref 0
		0x11,                               // END_DOCUMENT|NULL
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("stream = % x\nwant     % x", buf.Bytes(), want)
	}
}

func TestSerializerBoolAttributeHasNoPayload(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSerializer(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("a"); err != nil {
		t.Fatal(err)
	}
	before := buf.Len()
	if err := s.AttributeBool("on", true); err != nil {
		t.Fatal(err)
	}
	// Token byte plus the interned name literal, nothing else.
	if got, want := buf.Len()-before, 1+2+2+2; got != want {
		t.Fatalf("bool attribute wrote %d bytes, want %d", got, want)
	}
	if tok := Token(buf.Bytes()[before]); tok.Type() != TypeBooleanTrue {
		t.Fatalf("token type = %v, want BOOLEAN_TRUE", tok.Type())
	}
}

func TestSerializerTagMismatch(t *testing.T) {
	s, err := NewSerializer(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("a"); err != nil {
		t.Fatal(err)
	}
	err = s.EndTag("b")
	var mismatch *TagMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want TagMismatchError", err)
	}
	if mismatch.Open != "a" || mismatch.Got != "b" {
		t.Errorf("mismatch = %+v, want open a got b", mismatch)
	}

	// End tag with nothing open.
	s2, err := NewSerializer(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s2.EndTag("x"); !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want TagMismatchError", err)
	}
}

// limitWriter accepts a fixed byte budget and then fails.
type limitWriter struct{ n int }

func (w *limitWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		return 0, errors.New("sink closed")
	}
	w.n -= len(p)
	return len(p), nil
}

func TestStartTagFailedWriteLeavesStackClean(t *testing.T) {
	// Budget covers the magic header only.
	s, err := NewSerializer(&limitWriter{n: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("a"); err == nil {
		t.Fatal("StartTag on a failed sink returned nil")
	}
	if got := s.Depth(); got != 0 {
		t.Fatalf("Depth() after failed StartTag = %d, want 0", got)
	}
}

func TestSerializerUnclosedTags(t *testing.T) {
	s, err := NewSerializer(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.StartTag("b"); err != nil {
		t.Fatal(err)
	}
	err = s.EndDocument()
	var unclosed *UnclosedTagsError
	if !errors.As(err, &unclosed) {
		t.Fatalf("err = %v, want UnclosedTagsError", err)
	}
	if len(unclosed.Open) != 2 || unclosed.Open[1] != "b" {
		t.Errorf("unclosed = %v, want [a b]", unclosed.Open)
	}
}
