// Package cli holds the file plumbing shared by the conversion
// commands: stdin/stdout via "-", transparent gzip, and atomic
// in-place rewrites.
package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Stdio is the path spelling for standard input or output.
const Stdio = "-"

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// ReadInput reads the whole input. path "-" means stdin. Gzipped
// input is detected by its magic bytes and decompressed transparently;
// wasGzip reports whether that happened so callers can mirror the
// compression on output.
func ReadInput(path string) (data []byte, wasGzip bool, err error) {
	if path == Stdio {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name(path), err)
	}
	if !IsGzip(data) {
		return data, false, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("gunzip %s: %w", name(path), err)
	}
	defer zr.Close()
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, false, fmt.Errorf("gunzip %s: %w", name(path), err)
	}
	return plain, true, nil
}

// WriteOutput writes data to path, gzipping first when asked. path "-"
// means stdout. File writes go through a temporary file in the target
// directory and a rename, so an interrupted conversion never leaves a
// half-written file behind.
func WriteOutput(path string, data []byte, gzipOut bool) error {
	if gzipOut {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("gzip %s: %w", name(path), err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gzip %s: %w", name(path), err)
		}
		data = buf.Bytes()
	}

	if path == Stdio {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func name(path string) string {
	if path == Stdio {
		return "stdin"
	}
	return path
}
