package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/clean"
	"github.com/inodb/hmmannot/internal/output"
	"github.com/inodb/hmmannot/internal/pipeline"
)

func newCleanCmd() *cobra.Command {
	var (
		workDir string
		export  bool
	)

	cmd := &cobra.Command{
		Use:   "clean [flags] <masterfile>...",
		Short: "Normalize masterfiles and write their round-trip copies",
		Long: `Normalize one or more masterfiles: contigs are renamed contig1, contig2, ...,
annotations are reduced to their editorial comments, and unpaired boundaries
become "no start found" / "no end found" placeholders. The result is written
to <workdir>/Masterfile_copy (one sub-directory per input when several are given).`,
		Example: `  hmmannot clean mito.mf
  hmmannot clean --workdir /tmp/run1 --export a.mf b.mf.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workDir == "" {
				workDir = defaultWorkDir()
			}
			return runClean(args, workDir, export)
		},
	}

	cmd.Flags().StringVarP(&workDir, "workdir", "w", "", "Work directory (default: $TMPDIR/hmmannot.<run id>)")
	cmd.Flags().BoolVar(&export, "export", false, "Also write one FASTA file per contig under <workdir>/Contigs")
	_ = viper.BindPFlag("workdir", cmd.Flags().Lookup("workdir"))

	return cmd
}

func defaultWorkDir() string {
	if dir := viper.GetString("workdir"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "hmmannot."+runID)
}

// outDirFor returns the work directory of the i-th input.
func outDirFor(workDir string, paths []string, i int) string {
	if len(paths) == 1 {
		return workDir
	}
	base := filepath.Base(paths[i])
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(workDir, fmt.Sprintf("%03d-%s", i+1, base))
}

func runClean(paths []string, workDir string, export bool) error {
	items := make(chan pipeline.WorkItem, len(paths))
	for i, p := range paths {
		items <- pipeline.WorkItem{Seq: i, Path: p, OutDir: outDirFor(workDir, paths, i)}
	}
	close(items)

	proc := pipeline.NewProcessor(logger, parseOptions()...)
	results := proc.ParallelClean(items, workers())

	failed := 0
	err := pipeline.OrderedCollect(results, func(r pipeline.WorkResult) error {
		if r.Err != nil {
			failed++
			logger.Error("clean failed", zap.String("path", r.Path), zap.Error(r.Err))
			return nil
		}

		if export {
			files, err := output.ExportContigs(filepath.Join(r.OutDir, output.ContigsDir), r.Doc)
			if err != nil {
				return err
			}
			logger.Debug("exported contigs", zap.String("path", r.Path), zap.Int("files", len(files)))
		}

		fmt.Fprintf(os.Stderr, "%s: %d contigs, %d records -> %s\n",
			r.Path, len(r.Doc.Contigs), r.Doc.RecordCount(), filepath.Join(r.OutDir, clean.CopyFileName))
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d masterfiles failed", failed, len(paths))
	}
	return nil
}
