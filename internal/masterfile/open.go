package masterfile

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Open opens a masterfile for reading, transparently decompressing gzip
// and xz input. Use "-" for stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return decompress(os.Stdin, nopCloser{})
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open masterfile: %w", err)
	}

	rc, err := decompress(file, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return rc, nil
}

// decompress peeks at the magic bytes of r and wraps it accordingly.
func decompress(r io.Reader, closer io.Closer) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(xzMagic))

	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return readCloser{Reader: gz, closers: []io.Closer{gz, closer}}, nil
	case bytes.Equal(magic, xzMagic):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return readCloser{Reader: xr, closers: []io.Closer{closer}}, nil
	}
	return readCloser{Reader: br, closers: []io.Closer{closer}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
