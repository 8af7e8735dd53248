package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hmmannot/internal/clean"
	"github.com/inodb/hmmannot/internal/masterfile"
	"github.com/inodb/hmmannot/internal/output"
)

const sampleFile = "../../testdata/sample.mf"

// isolate points HOME at a temp dir so no user config is read or written.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestRun_Usage(t *testing.T) {
	isolate(t)
	assert.Equal(t, ExitSuccess, run([]string{"--help"}))
	assert.Equal(t, ExitError, run([]string{"format"}))
	assert.Equal(t, ExitError, run([]string{"no-such-command"}))
	assert.Equal(t, ExitUsage, run([]string{"format", "--sort", "width", sampleFile}))
}

func TestRun_Format(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "out.mf")
	require.Equal(t, ExitSuccess, run([]string{"format", "-o", out, sampleFile}))

	doc, err := masterfile.ParseFile(sampleFile)
	require.NoError(t, err)
	want, err := output.Serialize(doc)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestRun_FormatExternal(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	xml := filepath.Join(dir, "rnl.xml")
	require.NoError(t, os.WriteFile(xml, []byte(`<AnnotPairCollection contig="plasmid1">
<AnnotPair><type>C</type><startpos>3</startpos><startline>;; rnl model hit</startline></AnnotPair>
</AnnotPairCollection>`), 0o644))

	out := filepath.Join(dir, "merged.mf")
	require.Equal(t, ExitSuccess, run([]string{"format", "--external", xml, "-o", out, sampleFile}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), ">plasmid1\n     1  AC\n;; rnl model hit\n     3  GTACGTACGT\n")
}

func TestRun_CleanExportAndCollect(t *testing.T) {
	isolate(t)
	work := t.TempDir()
	require.Equal(t, ExitSuccess, run([]string{"clean", "--workdir", work, "--export", sampleFile}))

	copyPath := filepath.Join(work, clean.CopyFileName)
	assert.FileExists(t, copyPath)
	assert.FileExists(t, filepath.Join(work, output.ContigsDir, "contig1.fna"))
	assert.FileExists(t, filepath.Join(work, output.ContigsDir, "contig2.fna"))

	// An external program wrote a collection for contig2.
	xml := filepath.Join(work, output.ContigsDir, "contig2.fna-orf.xml")
	require.NoError(t, os.WriteFile(xml, []byte(`<AnnotPairCollection>
<AnnotPair><type>G</type><genename>orf42</genename><direction>==&gt;</direction>
<startpos>1</startpos><endpos>6</endpos>
<startline>;G-orf42 ==&gt; start</startline><endline>;G-orf42 ==&gt; end</endline></AnnotPair>
</AnnotPairCollection>`), 0o644))

	merged := filepath.Join(work, "merged.mf")
	require.Equal(t, ExitSuccess, run([]string{"format", "--collect", work, "--genes", "orf,rnl", "-o", merged, copyPath}))

	data, err := os.ReadFile(merged)
	require.NoError(t, err)
	assert.Contains(t, string(data), ">contig2\n;G-orf42 ==> start\n     1  ACGTAC\n;G-orf42 ==> end\n")
}

func TestRun_ExportSingle(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "all.fna")
	require.Equal(t, ExitSuccess, run([]string{"export", "--single", out, sampleFile}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), ">mtDNA\nATGACG"))
	assert.Contains(t, string(data), "\n>plasmid1\nACGTACGTACGTACGTACGTACGT\n")
}

func TestRun_IndexAndLookup(t *testing.T) {
	isolate(t)
	store := filepath.Join(t.TempDir(), "index.duckdb")
	require.Equal(t, ExitSuccess, run([]string{"index", "--store", store, sampleFile}))
	require.Equal(t, ExitSuccess, run([]string{"index", "--store", store, sampleFile}), "second run skips unchanged file")
	assert.Equal(t, ExitSuccess, run([]string{"index", "gene", "--store", store, "cox1"}))
	assert.Equal(t, ExitError, run([]string{"index", "gene", "--store", store, "nope"}))
}

func TestRun_Features(t *testing.T) {
	isolate(t)
	assert.Equal(t, ExitSuccess, run([]string{"features", sampleFile, "mtDNA", "70"}))
	assert.Equal(t, ExitError, run([]string{"features", sampleFile, "nope", "70"}))
	assert.Equal(t, ExitUsage, run([]string{"features", sampleFile, "mtDNA", "zero"}))
}

func TestConfigValue(t *testing.T) {
	assert.Equal(t, true, configValue("yes"))
	assert.Equal(t, false, configValue("off"))
	assert.Equal(t, 8, configValue("8"))
	assert.Equal(t, "/tmp/x", configValue("/tmp/x"))
}

func TestRun_Config(t *testing.T) {
	home := isolate(t)
	assert.Equal(t, ExitUsage, run([]string{"config", "set", "no.such.key", "1"}))
	require.Equal(t, ExitSuccess, run([]string{"config", "set", "workers", "2"}))
	assert.FileExists(t, filepath.Join(home, ".hmmannot.yaml"))
	assert.Equal(t, ExitSuccess, run([]string{"config", "get", "workers"}))
	assert.Equal(t, ExitSuccess, run([]string{"config"}))
}
