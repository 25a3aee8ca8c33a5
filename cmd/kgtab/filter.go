package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"kgtab/internal/kgio"
	"kgtab/internal/op"
)

// patternSep splits a -p spec into its column and pattern halves.
const patternSep = ";;"

var (
	filterInput    string
	filterOutput   string
	filterPattern  string
	filterRegex    bool
	filterEmpty    bool
	filterNotEmpty bool
	filterColumns  string
	filterMode     string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep rows whose column matches a pattern",
	Long: `filter streams the input and keeps rows matching the given predicate.

The -p spec has the form "<column>;;<pattern>". With --regex the pattern is an
unanchored regular expression; without it the cell must equal the pattern
exactly. Alternatively --empty / --not-empty keep rows by column emptiness:

  kgtab filter --input-file claims.tsv --regex -p "node2;;^[PQ].*$"
  kgtab filter --input-file claims.tsv --not-empty --columns node2`,
	RunE: runFilter,
}

func init() {
	f := filterCmd.Flags()
	f.StringVar(&filterInput, "input-file", "-", "input file (- for stdin)")
	f.StringVarP(&filterOutput, "output-file", "o", "-", "output file (- for stdout)")
	f.StringVarP(&filterPattern, "pattern", "p", "", `match spec "<column>;;<pattern>"`)
	f.BoolVar(&filterRegex, "regex", false, "treat the pattern as a regular expression")
	f.BoolVar(&filterEmpty, "empty", false, "keep rows whose columns are empty")
	f.BoolVar(&filterNotEmpty, "not-empty", false, "keep rows whose columns are non-empty")
	f.StringVar(&filterColumns, "columns", "", "columns for --empty/--not-empty, comma separated")
	f.StringVar(&filterMode, "mode", "any", "combine multi-column emptiness tests with any or all")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	var p *op.Pipeline

	switch {
	case filterEmpty || filterNotEmpty:
		if filterEmpty && filterNotEmpty {
			return fmt.Errorf("--empty and --not-empty are mutually exclusive")
		}
		columns := splitColumns(filterColumns)
		if len(columns) == 0 {
			return fmt.Errorf("--empty/--not-empty need --columns")
		}
		src, err := openInput(filterInput, kgio.ReadOptions{RequireColumns: columns})
		if err != nil {
			return err
		}
		p = op.NewPipeline(src).FilterEmpty(columns, op.EmptyMode(filterMode), filterNotEmpty)

	case filterPattern != "":
		column, pattern, ok := strings.Cut(filterPattern, patternSep)
		if !ok {
			return fmt.Errorf("pattern %q: want \"<column>%s<pattern>\"", filterPattern, patternSep)
		}
		src, err := openInput(filterInput, kgio.ReadOptions{RequireColumns: []string{column}})
		if err != nil {
			return err
		}
		if filterRegex {
			p = op.NewPipeline(src).Filter(column, pattern)
		} else {
			p = op.NewPipeline(src).FilterValue(column, pattern)
		}

	default:
		return fmt.Errorf("nothing to filter: pass -p or --empty/--not-empty")
	}

	stream, err := p.Stream()
	if err != nil {
		return err
	}

	written, err := writeStream(filterOutput, stream)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("filter: written=%d", written)
	}
	return nil
}
