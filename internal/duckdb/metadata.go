package duckdb

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeebo/blake3"
)

// FileFingerprint holds stat-based and content-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
	Hash    string // hex BLAKE3 of the file content, empty until computed
}

// StatFile creates a FileFingerprint from an on-disk file without reading it.
// ModTime is kept at the microsecond precision of a DuckDB TIMESTAMP.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Microsecond),
	}, nil
}

// HashFile stats path and hashes its content.
func HashFile(path string) (FileFingerprint, error) {
	fp, err := StatFile(path)
	if err != nil {
		return fp, err
	}

	f, err := os.Open(path)
	if err != nil {
		return fp, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return fp, fmt.Errorf("hash %s: %w", path, err)
	}
	fp.Hash = hex.EncodeToString(h.Sum(nil))
	return fp, nil
}

// SameFile reports whether two fingerprints describe the same unchanged file.
func (fp FileFingerprint) SameFile(other FileFingerprint) bool {
	return fp.Path == other.Path && fp.Size == other.Size && fp.ModTime.Equal(other.ModTime)
}
