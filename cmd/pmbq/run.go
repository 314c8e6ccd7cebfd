package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shivam221098/bigquery/internal/config"
	"github.com/shivam221098/bigquery/internal/history"
	"github.com/shivam221098/bigquery/internal/logging"
	"github.com/shivam221098/bigquery/internal/pipeline"
	"github.com/shivam221098/bigquery/internal/runner"
	"github.com/shivam221098/bigquery/internal/sink"
)

const (
	logFile = "logs.log"
	workDir = "temporary"
)

var configPath string

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "configuration.json", "Path to the configuration file")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <file.xml|count|all>",
	Short: "Process PubMed export files from the configured input directory",
	Long: `Process PubMed export files from the configured input directory.

The argument selects the batches: a single file by name, the first N files,
or "all". Successfully processed files move into the converted_xml archive;
failed files stay in place for a later run.

Examples:
  pmbq run pubmed25n0001.xml
  pmbq run 10
  pmbq run all`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	start := time.Now()

	sel, err := runner.ParseSelection(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	log, closeLog, err := logging.New(logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	defer closeLog()

	// Fresh scratch space for the per-batch staging database files.
	if err := os.RemoveAll(workDir); err != nil {
		return failRun(log, os.Stderr, fmt.Errorf("clearing work directory: %w", err))
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return failRun(log, os.Stderr, fmt.Errorf("creating work directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	ctx := context.Background()

	var uploader sink.Uploader
	if cfg.ToWarehouse() {
		bq, err := sink.NewBigQueryUploader(ctx, cfg.BQProjectID, cfg.BQDataSet)
		if err != nil {
			return failRun(log, os.Stderr, err)
		}
		defer bq.Close()
		uploader = bq
	}

	r := runner.New(cfg, uploader, workDir, log)
	r.Progress = printProgress

	printProgressHeader()
	results, err := r.Run(ctx, sel)
	if err != nil {
		return failRun(log, os.Stderr, err)
	}

	if err := history.Append(history.FileName, results); err != nil {
		return failRun(log, os.Stderr, err)
	}

	fmt.Printf("\nTotal time taken: %.2fs\n", time.Since(start).Seconds())
	return nil
}

func printProgressHeader() {
	fmt.Printf("%-24s %-12s %-8s %-32s %10s %12s  %s\n",
		"xml_file_name", "conversion", "staging", "converted_file_name",
		"time_secs", "upload_secs", "run_date")
}

func printProgress(res pipeline.Result) {
	status := ""
	if res.Failed {
		status = "  FAILED"
	}
	fmt.Printf("%-24s %-12s %-8s %-32s %10.2f %12.2f  %s%s\n",
		res.XMLFileName, res.ConversionType, res.TaskType, res.OutputName,
		res.ElapsedSecs, res.UploadSecs,
		res.RunDate.Format("01/02/2006, 15:04:05"), status)
}
