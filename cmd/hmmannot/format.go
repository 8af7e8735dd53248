package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/external"
	"github.com/inodb/hmmannot/internal/masterfile"
	"github.com/inodb/hmmannot/internal/output"
)

func newFormatCmd() *cobra.Command {
	var (
		outputFile string
		externals  []string
		collectDir string
		genes      []string
		sortBy     string
	)

	cmd := &cobra.Command{
		Use:   "format [flags] <masterfile>",
		Short: "Re-serialize a masterfile, optionally merging external annotations",
		Long: `Parse a masterfile and write it back in canonical layout: 60 bases per
numbered line, boundary lines placed at their coordinates.

External annotation collections (AnnotPairCollection XML) can be merged in with
--external. Each value is either <contig>=<file.xml> or just <file.xml> when
the collection names its contig. With --collect, the collections that external
programs wrote next to exported contig files (<dir>/Contigs/<contig>.fna-<gene>.xml)
are merged for every contig and every gene given with --genes.`,
		Example: `  hmmannot format mito.mf > mito.formatted.mf
  hmmannot format --external contig1=contig1.fna-rnl.xml -o merged.mf mito.mf
  hmmannot format --collect /tmp/run1 --genes rnl,rns -o merged.mf /tmp/run1/Masterfile_copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := masterfile.ParseFile(args[0], parseOptions()...)
			if err != nil {
				return err
			}
			if err := mergeExternals(cmd.Context(), doc, externals); err != nil {
				return err
			}
			if collectDir != "" {
				if err := collectJobs(cmd.Context(), doc, collectDir, genes); err != nil {
					return err
				}
			}
			switch sortBy {
			case "":
			case "length":
				doc.SortByLength(true)
			default:
				return usageError{fmt.Errorf("unknown --sort %q (want length)", sortBy)}
			}
			return writeDocument(doc, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringArrayVarP(&externals, "external", "e", nil, "Merge an AnnotPairCollection: [contig=]file.xml (repeatable)")
	cmd.Flags().StringVar(&collectDir, "collect", "", "Work directory whose Contigs/ holds external program output")
	cmd.Flags().StringSliceVar(&genes, "genes", nil, "Genes to collect with --collect (comma-separated)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Reorder contigs: length (longest first)")

	return cmd
}

// collectJobs merges the collections written for each contig and gene
// under workDir, skipping jobs whose output does not exist.
func collectJobs(ctx context.Context, doc *masterfile.Document, workDir string, genes []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var producer external.Producer = external.CollectionFileProducer{}
	for _, c := range doc.Contigs {
		fasta := filepath.Join(workDir, output.ContigsDir, c.Name+output.FASTAExt)
		for _, gene := range genes {
			job := external.NewJob(workDir, "", fasta, gene, c.GeneticCode)
			if _, err := os.Stat(job.OutFile); err != nil {
				logger.Debug("no collection", zap.String("file", job.OutFile))
				continue
			}
			records, err := producer.Produce(ctx, job)
			if err != nil {
				return err
			}
			n := external.Merge(c, records)
			logger.Info("collected external annotations",
				zap.String("contig", c.Name), zap.String("gene", gene), zap.Int("records", n))
		}
	}
	return nil
}

func writeDocument(doc *masterfile.Document, path string) error {
	if path == "" {
		mw := output.NewMasterfileWriter(os.Stdout)
		if err := mw.Write(doc); err != nil {
			return err
		}
		return mw.Flush()
	}
	return output.WriteFile(path, doc)
}

// mergeExternals adds the records of each collection to its contig.
func mergeExternals(ctx context.Context, doc *masterfile.Document, values []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, value := range values {
		contigName, file, ok := strings.Cut(value, "=")
		if !ok {
			contigName, file = "", value
		}
		if file == "" {
			return usageError{fmt.Errorf("bad --external value %q", value)}
		}

		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open collection: %w", err)
		}
		cols, err := external.DecodeCollections(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, col := range cols {
			name := contigName
			if name == "" {
				name = col.ContigName
			}
			c := doc.Contig(name)
			if c == nil {
				logger.Warn("collection for unknown contig skipped",
					zap.String("file", file), zap.String("contig", name))
				continue
			}
			n := external.Merge(c, col.Records)
			logger.Info("merged external annotations",
				zap.String("file", file), zap.String("contig", c.Name), zap.Int("records", n))
		}
	}
	return nil
}
