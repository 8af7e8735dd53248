package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/inodb/hmmannot/internal/external"
	"github.com/inodb/hmmannot/internal/masterfile"
	"github.com/inodb/hmmannot/internal/output"
)

func newExportCmd() *cobra.Command {
	var (
		dir       string
		single    string
		genes     []string
		modelPath string
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "export [flags] <masterfile>",
		Short: "Write contig sequences as FASTA",
		Long: `Write every contig of a masterfile as FASTA, upper-case and without exclusion
markers: one <dir>/Contigs/<contig>.fna per contig, or a single multi-FASTA
file with --single (use - for stdout).

With --genes, the substitution context of each external program job
(contig x gene) is printed as KEY=VALUE lines, one blank-line separated block
per job, for a driver script to run the programs.`,
		Example: `  hmmannot export --dir /tmp/run1 contigs.mf
  hmmannot export --single - contigs.mf | gzip > contigs.fna.gz
  hmmannot export --dir /tmp/run1 --genes rnl,rns --models /opt/models contigs.mf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := masterfile.ParseFile(args[0], parseOptions()...)
			if err != nil {
				return err
			}

			if single != "" {
				return exportSingle(doc, single)
			}
			if dir == "" {
				dir = defaultWorkDir()
			}
			files, err := output.ExportContigs(filepath.Join(dir, output.ContigsDir), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %d contig files to %s\n", len(files), filepath.Join(dir, output.ContigsDir))

			if len(genes) > 0 {
				return printJobs(cmd.OutOrStdout(), doc, files, dir, modelPath, genes, debug)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Work directory (default: configured workdir or $TMPDIR/hmmannot.<run id>)")
	cmd.Flags().StringVar(&single, "single", "", "Write one multi-FASTA file instead (- for stdout)")
	cmd.Flags().StringSliceVar(&genes, "genes", nil, "Print external program jobs for these genes")
	cmd.Flags().StringVar(&modelPath, "models", "", "Model directory substituted for MODPATH")
	cmd.Flags().BoolVar(&debug, "debug-jobs", false, "Set DEBUG=# in printed jobs")

	return cmd
}

func exportSingle(doc *masterfile.Document, path string) error {
	if path == "-" {
		return output.WriteContigsFASTA(os.Stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create FASTA: %w", err)
	}
	defer f.Close()
	if err := output.WriteContigsFASTA(f, doc); err != nil {
		return err
	}
	return f.Close()
}

func printJobs(w io.Writer, doc *masterfile.Document, files []string, dir, modelPath string, genes []string, debug bool) error {
	for i, c := range doc.Contigs {
		for _, gene := range genes {
			job := external.NewJob(dir, modelPath, files[i], gene, c.GeneticCode)
			job.Debug = debug

			subs := job.Substitutions()
			keys := make([]string, 0, len(subs))
			for k := range subs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, err := fmt.Fprintf(w, "%s=%s\n", k, subs[k]); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}
