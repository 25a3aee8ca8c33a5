package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"kgtab/internal/config"
	"kgtab/internal/metrics"
	"kgtab/internal/metrics/prompush"
	"kgtab/internal/pipeline"
)

var (
	runConfigPath   string
	runValidateOnly bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a declarative pipeline config",
	Long: `run loads a pipeline config (JSON, or YAML by extension), validates
it, and executes it: source, operation stages, sink. --validate stops after
validation and reports issues without touching any data.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runConfigPath, "config", "", "pipeline config file (required)")
	f.BoolVar(&runValidateOnly, "validate", false, "validate the config and exit")
	runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}

	issues := config.ValidatePipeline(cfg)
	for _, is := range issues {
		log.Printf("validate: severity=%s path=%s msg=%s", is.Severity, is.Path, is.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("config %s: validation failed", runConfigPath)
	}
	if runValidateOnly {
		log.Printf("validate: config=%s ok issues=%d", runConfigPath, len(issues))
		return nil
	}

	if cfg.Metrics.Backend == "pushgateway" {
		url := cfg.Metrics.URL
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(cfg.Job, url)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush failed: %v", err)
			}
		}()
	}

	sum, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("run: config=%s read=%d written=%d elapsed=%s",
			runConfigPath, sum.RowsRead, sum.RowsWritten, sum.Elapsed)
	}
	return nil
}
