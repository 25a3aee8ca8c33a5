package main

import (
	"log"

	"github.com/spf13/cobra"

	"kgtab/internal/kgio"
	"kgtab/internal/op"
	"kgtab/internal/table"
)

var (
	uniqueInput       string
	uniqueOutput      string
	uniqueColumn      string
	uniqueLabel       string
	uniquePresorted   bool
	uniqueCheckSorted bool
)

var uniqueCmd = &cobra.Command{
	Use:   "unique",
	Short: "Count distinct values of one or more columns",
	Long: `unique streams the input and emits one row per distinct key with an
appended count column. With --presorted the input is assumed grouped by key
and counting runs in constant memory; otherwise an in-memory hash table
accumulates counts and keys are emitted in first-seen order.

--check-sorted also runs in constant memory but verifies the ordering while
streaming, failing on the first out-of-order row instead of silently emitting
duplicate keys.`,
	RunE: runUnique,
}

func init() {
	f := uniqueCmd.Flags()
	f.StringVar(&uniqueInput, "input-file", "-", "input file (- for stdin)")
	f.StringVarP(&uniqueOutput, "output-file", "o", "-", "output file (- for stdout)")
	f.StringVar(&uniqueColumn, "column", "", "column(s) to count, comma separated (required)")
	f.StringVar(&uniqueLabel, "label", "", "name of the appended count column")
	f.BoolVar(&uniquePresorted, "presorted", false, "input is already sorted by the key columns")
	f.BoolVar(&uniqueCheckSorted, "check-sorted", false, "like --presorted, but verify the order while streaming")
	uniqueCmd.MarkFlagRequired("column")
	rootCmd.AddCommand(uniqueCmd)
}

func runUnique(cmd *cobra.Command, args []string) error {
	columns := splitColumns(uniqueColumn)

	src, err := openInput(uniqueInput, kgio.ReadOptions{RequireColumns: columns})
	if err != nil {
		return err
	}

	in := table.Stream(src)
	if uniqueCheckSorted {
		sorted, err := table.CheckSorted(in, columns)
		if err != nil {
			src.Close()
			return err
		}
		in = sorted
	}

	stream, err := op.NewPipeline(in).
		Unique(columns, op.UniqueOptions{
			CountLabel: uniqueLabel,
			Presorted:  uniquePresorted,
		}).
		Stream()
	if err != nil {
		return err
	}

	written, err := writeStream(uniqueOutput, stream)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("unique: columns=%v presorted=%t written=%d", columns, uniquePresorted, written)
	}
	return nil
}
