package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// FileOptions - параметры файла дампа
type FileOptions struct {
	// Compress - сжимать zstd
	Compress bool
	// Level - уровень zstd 1..22 (0 = 3)
	Level int
	// Checksum - записать рядом файл <path>.xxh3 с хешем содержимого файла
	Checksum bool
}

// File - файл дампа: запись идет через zstd (если включен) и считается xxh3 по байтам файла
type File struct {
	path     string
	file     *os.File
	encoder  *zstd.Encoder
	hasher   *xxh3.Hasher
	w        io.Writer
	checksum bool
	sum      string
}

// OpenFile создает файл дампа
func OpenFile(path string, opts FileOptions) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	out := &File{
		path:     path,
		file:     f,
		hasher:   xxh3.New(),
		checksum: opts.Checksum,
	}

	// Хеш считается по тому, что реально лежит на диске
	sink := io.MultiWriter(f, out.hasher)
	out.w = sink

	if opts.Compress {
		level := opts.Level
		if level == 0 {
			level = 3
		}
		enc, err := zstd.NewWriter(sink, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		out.encoder = enc
		out.w = enc
	}

	return out, nil
}

// Write реализует io.Writer
func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Path возвращает путь к файлу
func (f *File) Path() string {
	return f.path
}

// Sum возвращает xxh3 (hex) содержимого файла; доступен после Close
func (f *File) Sum() string {
	return f.sum
}

// Close дописывает zstd-фрейм, закрывает файл и пишет .xxh3
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}

	if f.encoder != nil {
		if err := f.encoder.Close(); err != nil {
			f.file.Close()
			return fmt.Errorf("failed to finish zstd stream: %w", err)
		}
	}

	if err := f.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	f.file = nil

	f.sum = fmt.Sprintf("%016x", f.hasher.Sum64())

	if f.checksum {
		line := f.sum + "  " + filepath.Base(f.path) + "\n"
		if err := os.WriteFile(f.path+".xxh3", []byte(line), 0o644); err != nil {
			return fmt.Errorf("failed to write checksum file: %w", err)
		}
	}

	return nil
}
