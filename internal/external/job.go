// Package external connects external annotation programs to masterfiles.
//
// Running the programs is left to the caller. This package describes what a
// program is given (a Job) and reads back what it produces: AnnotPairCollection
// XML documents whose records are merged into the contigs they annotate.
package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// DefaultGeneName is substituted for GENENAME when a job names no gene.
const DefaultGeneName = "unk"

// Job is the context handed to one external program run on one contig file.
type Job struct {
	OutFile     string // collection XML the program writes
	ModelPath   string // directory of the program's models
	FASTAFile   string // per-contig FASTA input
	TmpDir      string // shared work directory
	GeneName    string
	GeneticCode int
	Debug       bool
}

// NewJob creates the job for running gene's program on fastaFile. The
// output collection is written next to the input as <fasta>-<gene>.xml.
func NewJob(tmpDir, modelPath, fastaFile, gene string, geneticCode int) Job {
	return Job{
		OutFile:     fmt.Sprintf("%s-%s.xml", fastaFile, gene),
		ModelPath:   modelPath,
		FASTAFile:   fastaFile,
		TmpDir:      tmpDir,
		GeneName:    gene,
		GeneticCode: geneticCode,
	}
}

// Substitutions returns the %VAR% values available to program command templates.
func (j Job) Substitutions() map[string]string {
	gene := j.GeneName
	if gene == "" {
		gene = DefaultGeneName
	}
	debug := ""
	if j.Debug {
		// Command templates use %DEBUG% to comment out cleanup lines.
		debug = "#"
	}
	return map[string]string{
		"OUTFILE":        j.OutFile,
		"MODPATH":        j.ModelPath,
		"PLAINFASTAFILE": j.FASTAFile,
		"TMPDIR":         j.TmpDir,
		"GENENAME":       gene,
		"GENCODE":        strconv.Itoa(j.GeneticCode),
		"DEBUG":          debug,
	}
}

// Expand replaces every %VAR% in script with its substitution value.
func (j Job) Expand(script string) string {
	subs := j.Substitutions()
	vars := make([]string, 0, len(subs))
	for v := range subs {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	pairs := make([]string, 0, 2*len(vars))
	for _, v := range vars {
		pairs = append(pairs, "%"+v+"%", subs[v])
	}
	return strings.NewReplacer(pairs...).Replace(script)
}

// Producer produces annotation records for one job.
type Producer interface {
	Produce(ctx context.Context, job Job) ([]*masterfile.Record, error)
}

// CollectionFileProducer reads the collection a program has already written
// to the job's OutFile.
type CollectionFileProducer struct{}

// Produce decodes job.OutFile.
func (CollectionFileProducer) Produce(ctx context.Context, job Job) ([]*masterfile.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(job.OutFile)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	defer f.Close()

	records, err := DecodeCollection(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(job.OutFile), err)
	}
	return records, nil
}

// Merge appends records to c and returns how many were added. Records keep
// their coordinates and lines; handles are reassigned by the contig.
func Merge(c *masterfile.Contig, records []*masterfile.Record) int {
	for _, r := range records {
		c.Add(r)
	}
	return len(records)
}
