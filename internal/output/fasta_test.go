package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hmmannot/internal/masterfile"
)

func fastaDoc() *masterfile.Document {
	return &masterfile.Document{Contigs: []*masterfile.Contig{
		{Name: "mtDNA", Sequence: "AC!!GT"},
		{Name: "plasmid1", Sequence: "acgtn"},
	}}
}

func TestWriteContigsFASTA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteContigsFASTA(&buf, fastaDoc()))
	assert.Equal(t, ">mtDNA\nACGT\n>plasmid1\nACGTN\n", buf.String())
}

func TestExportContigs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ContigsDir)
	paths, err := ExportContigs(dir, fastaDoc())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "mtDNA.fna"), paths[0])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, ">plasmid1\nACGTN\n", string(data))
}
