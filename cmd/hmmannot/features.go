package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/hmmannot/internal/masterfile"
)

func newFeaturesCmd() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "features [flags] <masterfile> <contig> <position>",
		Short: "List the annotations covering a position",
		Example: `  hmmannot features mito.mf mtDNA 1520
  hmmannot features --kind G,E mito.mf mtDNA 1520`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[2])
			if err != nil || pos < 1 {
				return usageError{fmt.Errorf("invalid position %q", args[2])}
			}

			doc, err := masterfile.ParseFile(args[0], parseOptions()...)
			if err != nil {
				return err
			}
			c := doc.Contig(args[1])
			if c == nil {
				return fmt.Errorf("contig %q not found in %s", args[1], args[0])
			}
			if pos > c.SequenceLength {
				return fmt.Errorf("position %d outside %s (%d bases)", pos, c.Name, c.SequenceLength)
			}

			filter := make([]masterfile.Kind, 0, len(kinds))
			for _, k := range kinds {
				filter = append(filter, masterfile.Kind(k))
			}
			ix := masterfile.BuildFeatureIndex(c, filter...)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tGENE\tDIR\tSTART\tEND\tLINE")
			for _, r := range ix.Covering(pos) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Kind, r.GeneName, r.Direction, coord(r.Start), coord(r.End), r.Start.Line)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "Only these kinds (G, E, I, S, C)")

	return cmd
}

func coord(b masterfile.Boundary) string {
	if !b.HasPos {
		return "-"
	}
	return strconv.Itoa(b.Pos)
}
