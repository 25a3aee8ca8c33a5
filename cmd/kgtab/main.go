// Command kgtab is a streaming toolkit for KGTK-style tab-separated edge
// files: count distinct values, filter rows by column patterns, lift labels
// onto identifier columns, run declarative pipelines, and query files through
// a SQL store.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"kgtab/internal/kgio"
	"kgtab/internal/table"
)

var (
	// Global flags.
	flagCodec   string
	flagGzip    bool
	flagLogFile string
	verbose     bool

	auditLog *os.File
)

var rootCmd = &cobra.Command{
	Use:   "kgtab",
	Short: "Streaming operations over KGTK-style tab-separated files",
	Long: `kgtab reads header-first tab-separated files (plain, gzip, or xz),
streams them through composable operations, and writes the result back out.

Inputs and outputs default to stdin/stdout; pass - explicitly for either.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if auditLog != nil {
			auditLog.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagCodec, "codec", "", "compression codec for inputs and outputs (none, gzip, xz)")
	pf.BoolVar(&flagGzip, "gzip", false, "shorthand for --codec gzip")
	pf.StringVar(&flagLogFile, "log-file", "", "tee log output to this file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log per-stage detail")
}

// setupLogging routes the standard logger to stderr, teeing to the audit file
// when --log-file is set.
func setupLogging() error {
	out := io.Writer(os.Stderr)
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		auditLog = f
		out = io.MultiWriter(os.Stderr, f)
	}
	log.SetOutput(out)
	return nil
}

// ioCodec resolves the global compression flags.
func ioCodec() (kgio.Codec, error) {
	if flagGzip {
		return kgio.CodecGzip, nil
	}
	return kgio.ParseCodec(flagCodec)
}

// openInput opens path with the global codec applied on top of opts.
func openInput(path string, opts kgio.ReadOptions) (*kgio.Reader, error) {
	codec, err := ioCodec()
	if err != nil {
		return nil, err
	}
	opts.Codec = codec
	return kgio.Open(path, opts)
}

// writeStream drains stream into path using the global codec. File outputs are
// written atomically; stdout is streamed as-is.
func writeStream(path string, stream table.Stream) (int64, error) {
	codec, err := ioCodec()
	if err != nil {
		stream.Close()
		return 0, err
	}
	return kgio.Write(path, stream, kgio.WriteOptions{
		Codec:  codec,
		Atomic: path != "-",
	})
}

// splitColumns parses a comma-separated column list.
func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
