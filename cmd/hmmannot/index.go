package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/hmmannot/internal/duckdb"
	"github.com/inodb/hmmannot/internal/masterfile"
)

func newIndexCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index [flags] <masterfile>...",
		Short: "Add masterfiles to the annotation index",
		Long: `Store the contigs and annotations of masterfiles in a DuckDB index
(store.path, default ~/.hmmannot/index.duckdb). Files are keyed by the BLAKE3
hash of their content; unchanged files are skipped.`,
		Example: `  hmmannot index *.mf
  hmmannot index gene cox1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, path := range args {
				if err := indexFile(cmd.OutOrStdout(), store, path, force); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-index files even if unchanged")
	cmd.PersistentFlags().String("store", "", "Index database (default: store.path)")
	_ = viper.BindPFlag("store.path", cmd.PersistentFlags().Lookup("store"))

	cmd.AddCommand(newIndexGeneCmd())

	return cmd
}

func newIndexGeneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gene <name>",
		Short: "List indexed annotations of a gene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.LookupGene(args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				return fmt.Errorf("gene %q is not indexed", args[0])
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tCONTIG\tKIND\tGENE\tDIR\tSTART\tEND")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
					h.Path, h.Contig, h.Kind, h.GeneName, h.Direction, h.Start, h.End)
			}
			return tw.Flush()
		},
	}
}

func openStore() (*duckdb.Store, error) {
	path := viper.GetString("store.path")
	if path == "" {
		return nil, fmt.Errorf("no index configured; set store.path or use --store")
	}
	return duckdb.Open(path)
}

func indexFile(w io.Writer, store *duckdb.Store, path string, force bool) error {
	st, err := duckdb.StatFile(path)
	if err != nil {
		return err
	}
	if !force {
		prev, ok, err := store.Indexed(path)
		if err != nil {
			return err
		}
		if ok && prev.SameFile(st) {
			logger.Debug("unchanged, skipped", zap.String("path", path))
			fmt.Fprintf(w, "%s: unchanged\n", path)
			return nil
		}
	}

	fp, err := duckdb.HashFile(path)
	if err != nil {
		return err
	}
	doc, err := masterfile.ParseFile(path, parseOptions()...)
	if err != nil {
		return err
	}
	if err := store.WriteDocument(fp, doc); err != nil {
		return err
	}

	counts, err := store.CountByKind(fp.Hash)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d contigs, %s\n", path, len(doc.Contigs), formatCounts(counts))
	return nil
}

func formatCounts(counts map[masterfile.Kind]int) string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", k, counts[masterfile.Kind(k)])
	}
	if s == "" {
		return "no records"
	}
	return s
}
