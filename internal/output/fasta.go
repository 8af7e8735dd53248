package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// ContigsDir is the subdirectory of a work directory that holds per-contig FASTA files.
const ContigsDir = "Contigs"

// FASTAExt is the extension used for exported contig files.
const FASTAExt = ".fna"

// WriteContigsFASTA writes every contig of doc to w as one multi-FASTA stream.
// Sequences are upper-case with exclusion markers removed.
func WriteContigsFASTA(w io.Writer, doc *masterfile.Document) error {
	bw := bufio.NewWriter(w)
	for _, c := range doc.Contigs {
		if err := writeFASTARecord(bw, c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportContigs writes one FASTA file per contig into dir, creating dir if
// needed, and returns the paths in contig order.
func ExportContigs(dir string, doc *masterfile.Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create contig directory: %w", err)
	}

	paths := make([]string, 0, len(doc.Contigs))
	for _, c := range doc.Contigs {
		path := filepath.Join(dir, c.Name+FASTAExt)
		if err := writeContigFile(path, c); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeContigFile(path string, c *masterfile.Contig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := writeFASTARecord(bw, c); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeFASTARecord(w *bufio.Writer, c *masterfile.Contig) error {
	_, err := fmt.Fprintf(w, ">%s\n%s\n", c.Name, c.PlainSequence())
	return err
}
