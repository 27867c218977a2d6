package svnlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mitchellh/go-homedir"
	"github.com/pierrec/lz4/v4"
)

// StdinName selects standard input in OpenInput.
const StdinName = "-"

// OpenInput opens a log file for reading. Files ending in .lz4, .zst or .gz
// are decompressed transparently; StdinName reads standard input.
func OpenInput(name string) (io.ReadCloser, error) {
	if name == StdinName {
		return io.NopCloser(os.Stdin), nil
	}

	path, err := homedir.Expand(name)
	if err != nil {
		return nil, fmt.Errorf("expand input path %s: %w", name, err)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	rc, err := decompress(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	return rc, nil
}

func decompress(f *os.File, ext string) (io.ReadCloser, error) {
	switch ext {
	case ".lz4":
		return &readCloser{Reader: lz4.NewReader(f), closers: []func() error{f.Close}}, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}

		return &readCloser{Reader: dec, closers: []func() error{closeZstd(dec), f.Close}}, nil
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}

		return &readCloser{Reader: gz, closers: []func() error{gz.Close, f.Close}}, nil
	default:
		return f, nil
	}
}

func closeZstd(dec *zstd.Decoder) func() error {
	return func() error {
		dec.Close()

		return nil
	}
}

// readCloser closes a decompressor and its underlying file in order.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var first error

	for _, c := range rc.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
