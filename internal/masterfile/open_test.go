package masterfile

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const compressedSample = ">c1\nACGT\n;G-cox1 ==> start\nACGTAC\n;G-cox1 ==> end\n"

func TestParseFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(compressedSample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "sample.mf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Contigs, 1)
	assert.Equal(t, 10, doc.Contigs[0].SequenceLength)
	assert.Len(t, doc.Contigs[0].Annotations, 1)
}

func TestParseFile_Xz(t *testing.T) {
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write([]byte(compressedSample))
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	path := filepath.Join(t.TempDir(), "sample.mf.xz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Contigs, 1)
	r := doc.Contigs[0].Annotations[0]
	assert.Equal(t, 5, r.Start.Pos)
	assert.Equal(t, 10, r.End.Pos)
}

func TestCheckMonotonic(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	doc := parseString(t, ">c1\nACGT\n;G-orf9 ==> end\nACGT\n;G-orf9 ==> start\nAC\n",
		WithLogger(zap.New(core)))

	bad := CheckMonotonic(doc.Contigs[0])
	require.Len(t, bad, 1)
	assert.Equal(t, "orf9", bad[0].GeneName)
	assert.Greater(t, bad[0].Start.Pos, bad[0].End.Pos)
	assert.Equal(t, 1, logs.FilterMessage("annotation coordinates out of order").Len())
}
