package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kgtab/internal/inspect"
	"kgtab/internal/kgio"
)

var inspectInput string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Profile a table: row count, fill rates, distinct values",
	Long: `inspect reads the whole input and prints one line per column with the
number of non-empty cells, the distinct-value count, and an example value.
Distinct counts are hash-based and capped, so treat them as estimates on very
high-cardinality columns.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectInput, "input-file", "-", "input file (- for stdin)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := openInput(inspectInput, kgio.ReadOptions{})
	if err != nil {
		return err
	}

	p, err := inspect.Stream(src)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "column\tnon_empty\tdistinct\texample\n")
	for _, c := range p.Columns {
		distinct := fmt.Sprintf("%d", c.Distinct)
		if c.DistinctCapped {
			distinct = fmt.Sprintf(">=%d", c.Distinct)
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\n", c.Name, c.NonEmpty, p.Rows, distinct, c.Example)
	}
	return w.Flush()
}
