package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"kgtab/internal/kgio"
	"kgtab/internal/store"
)

var (
	queryInput     string
	queryOutput    string
	queryStoreDSN  string
	queryBackend   string
	queryTable     string
	querySQL       string
	queryBatchSize int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Import a table into a SQL store and run SQL over it",
	Long: `query imports the input file into a SQL store as an all-TEXT table
and streams the result of a SQL statement back out as a table. The default
backend is embedded SQLite (--store is a file path or :memory:); --backend
postgres takes a postgresql:// DSN and loads via COPY.

With no --input-file the import is skipped and the statement runs against
whatever the store already holds:

  kgtab query --input-file claims.tsv --store kg.db \
      --sql "SELECT node1, count(*) FROM claims GROUP BY node1"`,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryInput, "input-file", "", "table to import before querying (- for stdin)")
	f.StringVarP(&queryOutput, "output-file", "o", "-", "output file (- for stdout)")
	f.StringVar(&queryStoreDSN, "store", ":memory:", "store DSN: file path/:memory: for sqlite, URL for postgres")
	f.StringVar(&queryBackend, "backend", "sqlite", "store backend (sqlite or postgres)")
	f.StringVar(&queryTable, "table", "claims", "table name for the imported input")
	f.StringVar(&querySQL, "sql", "", "SQL statement to run (required)")
	f.IntVar(&queryBatchSize, "batch-size", store.DefaultBatchSize, "rows per insert batch")
	queryCmd.MarkFlagRequired("sql")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if queryBackend == "sqlite" && queryStoreDSN == ":memory:" && queryInput == "" {
		return fmt.Errorf("an in-memory store with no --input-file has nothing to query")
	}

	st, err := store.New(ctx, store.Config{Kind: queryBackend, DSN: queryStoreDSN})
	if err != nil {
		return err
	}
	defer st.Close()

	if queryInput != "" {
		src, err := openInput(queryInput, kgio.ReadOptions{})
		if err != nil {
			return err
		}
		imported, err := store.Import(ctx, st, queryTable, src, queryBatchSize)
		if err != nil {
			return err
		}
		if verbose {
			log.Printf("query: table=%s imported=%d", queryTable, imported)
		}
	}

	result, err := st.Query(ctx, querySQL)
	if err != nil {
		return err
	}

	written, err := writeStream(queryOutput, result)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("query: written=%d", written)
	}
	return nil
}
