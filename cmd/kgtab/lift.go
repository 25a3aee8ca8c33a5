package main

import (
	"log"

	"github.com/spf13/cobra"

	"kgtab/internal/kgio"
	"kgtab/internal/op"
	"kgtab/internal/table"
)

var (
	liftInput          string
	liftLabelFile      string
	liftOutput         string
	liftColumns        string
	liftOutputColumns  string
	liftMatchColumn    string
	liftValueColumn    string
	liftInputPresorted bool
	liftLabelPresorted bool
	liftCheckSorted    bool
)

var liftCmd = &cobra.Command{
	Use:   "lift",
	Short: "Attach label columns from a label file",
	Long: `lift joins each lifted column against a label file and appends a
"<column>;label" column holding the matched label. The join is left outer:
every input row appears exactly once, and identifiers without a label get an
empty cell. When an identifier carries several labels the first one wins.

With both --input-file-is-presorted and --label-file-is-presorted the join
streams both sides in one pass per lifted column; otherwise the label file is
loaded into memory. --check-sorted verifies the asserted orders while
streaming instead of trusting them: the label file is checked by the match
column on every scan, and the input by the lifted column when exactly one
column is lifted.`,
	RunE: runLift,
}

func init() {
	f := liftCmd.Flags()
	f.StringVar(&liftInput, "input-file", "-", "input file (- for stdin)")
	f.StringVar(&liftLabelFile, "label-file", "", "label edge file (required)")
	f.StringVarP(&liftOutput, "output-file", "o", "-", "output file (- for stdout)")
	f.StringVar(&liftColumns, "columns-to-lift", "node1,label,node2", "columns to lift, comma separated")
	f.StringVar(&liftOutputColumns, "output-columns", "", "names for the lifted columns, comma separated")
	f.StringVar(&liftMatchColumn, "label-match-column", table.Node1Column, "label-file column joined against")
	f.StringVar(&liftValueColumn, "label-value-column", table.Node2Column, "label-file column holding the label")
	f.BoolVar(&liftInputPresorted, "input-file-is-presorted", false, "input is sorted by each lifted column")
	f.BoolVar(&liftLabelPresorted, "label-file-is-presorted", false, "label file is sorted by the match column")
	f.BoolVar(&liftCheckSorted, "check-sorted", false, "verify the presorted assertions while streaming")
	liftCmd.MarkFlagRequired("label-file")
	rootCmd.AddCommand(liftCmd)
}

func runLift(cmd *cobra.Command, args []string) error {
	columns := splitColumns(liftColumns)

	src, err := openInput(liftInput, kgio.ReadOptions{RequireColumns: columns})
	if err != nil {
		return err
	}

	in := table.Stream(src)
	if liftCheckSorted && liftInputPresorted && len(columns) == 1 {
		sorted, err := table.CheckSorted(in, columns)
		if err != nil {
			src.Close()
			return err
		}
		in = sorted
	}

	labels := func() (table.Stream, error) {
		ls, err := openInput(liftLabelFile, kgio.ReadOptions{
			RequireColumns: []string{liftMatchColumn, liftValueColumn},
		})
		if err != nil {
			return nil, err
		}
		if liftCheckSorted && liftLabelPresorted {
			sorted, err := table.CheckSorted(ls, []string{liftMatchColumn})
			if err != nil {
				ls.Close()
				return nil, err
			}
			return sorted, nil
		}
		return ls, nil
	}

	stream, err := op.NewPipeline(in).
		Lift(labels, columns, op.LiftOptions{
			MatchColumn:      liftMatchColumn,
			ValueColumn:      liftValueColumn,
			OutputColumns:    splitColumns(liftOutputColumns),
			PrimaryPresorted: liftInputPresorted,
			LabelPresorted:   liftLabelPresorted,
		}).
		Stream()
	if err != nil {
		return err
	}

	written, err := writeStream(liftOutput, stream)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("lift: columns=%v label_file=%s written=%d", columns, liftLabelFile, written)
	}
	return nil
}
