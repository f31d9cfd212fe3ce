package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestIsGzip(t *testing.T) {
	if !IsGzip([]byte{0x1f, 0x8b, 0x08}) {
		t.Error("gzip magic not detected")
	}
	if IsGzip([]byte{0x41, 0x42, 0x58, 0x00}) {
		t.Error("ABX magic misdetected as gzip")
	}
	if IsGzip([]byte{0x1f}) {
		t.Error("single byte misdetected as gzip")
	}
}

func TestReadInputPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xml")
	if err := os.WriteFile(path, []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, wasGzip, err := ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if wasGzip {
		t.Error("plain file reported as gzipped")
	}
	if string(data) != "<a/>" {
		t.Errorf("data = %q", data)
	}
}

func TestReadInputGzipped(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("<a/>")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.xml.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	data, wasGzip, err := ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if !wasGzip {
		t.Error("gzipped file not detected")
	}
	if string(data) != "<a/>" {
		t.Errorf("data = %q", data)
	}
}

func TestWriteOutputGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gz")
	if err := WriteOutput(path, []byte("payload"), true); err != nil {
		t.Fatal(err)
	}
	data, wasGzip, err := ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if !wasGzip || string(data) != "payload" {
		t.Errorf("read back wasGzip=%v data=%q", wasGzip, data)
	}
}

func TestWriteOutputReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xml")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteOutput(path, []byte("new"), false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("data = %q", data)
	}
	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in output dir: %v", entries)
	}
}
