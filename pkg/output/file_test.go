package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

func TestFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")

	f, err := OpenFile(path, FileOptions{Checksum: true})
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := io.WriteString(f, "INSERT INTO t VALUES (1);\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "INSERT INTO t VALUES (1);\n" {
		t.Errorf("content = %q", data)
	}

	wantSum := fmt.Sprintf("%016x", xxh3.Hash(data))
	if f.Sum() != wantSum {
		t.Errorf("Sum() = %s, want %s", f.Sum(), wantSum)
	}

	sidecar, err := os.ReadFile(path + ".xxh3")
	if err != nil {
		t.Fatalf("checksum file: %v", err)
	}
	if string(sidecar) != wantSum+"  dump.sql\n" {
		t.Errorf("checksum file = %q", sidecar)
	}

	// Повторный Close безопасен
	if err := f.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql.zst")
	payload := strings.Repeat("INSERT INTO t VALUES (42);\n", 200)

	f, err := OpenFile(path, FileOptions{Compress: true, Level: 9, Checksum: true})
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := io.WriteString(f, payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) >= len(payload) {
		t.Errorf("compressed size %d >= %d", len(raw), len(payload))
	}

	// Хеш считается по сжатым байтам
	if want := fmt.Sprintf("%016x", xxh3.Hash(raw)); f.Sum() != want {
		t.Errorf("Sum() = %s, want %s", f.Sum(), want)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader() error = %v", err)
	}
	defer dec.Close()

	plain, err := dec.DecodeAll(raw, nil)
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if string(plain) != payload {
		t.Error("decompressed payload differs")
	}
}

func TestFileWithoutChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")

	f, err := OpenFile(path, FileOptions{})
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(path + ".xxh3"); !os.IsNotExist(err) {
		t.Errorf("checksum file exists: %v", err)
	}
}
