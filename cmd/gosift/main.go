package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosift/adapters/anomaly"
	"gosift/adapters/clean"
	"gosift/adapters/feature"
	"gosift/adapters/insight"
	"gosift/adapters/inspect"
	"gosift/adapters/loader"
	"gosift/adapters/postgres"
	"gosift/app"
	"gosift/domain/report"
	"gosift/internal"
	"gosift/internal/config"
	"gosift/ports"
)

func main() {
	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "gosift",
		Short: "gosift profiles and cleans tabular datasets",
		Long: `gosift runs a staged data-quality pipeline over CSV, Excel and JSON
files: profile the data, detect anomalous rows, execute the proposed
cleaning plan, derive features, and summarize the result.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config overrides")

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newBatchCmd(&configPath),
		newInspectCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run [input-file]",
		Short: "Run the full pipeline on one file",
		Example: `  gosift run data/sales.csv
  gosift run data/sales.csv --config gosift.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildPipeline(*configPath, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			result := svc.RunPipeline(cmd.Context(), args[0])
			printResult(cmd, result)
			if result.Status == report.StatusFailed {
				return fmt.Errorf("pipeline failed: %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}

func newBatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [input-dir]",
		Short: "Run the pipeline over every supported file in a directory",
		Long: `Run the pipeline over every supported file (.csv, .xlsx, .xls, .json)
in the directory, in listing order. A failing file does not stop the
batch; the exit status reflects whether any file failed.`,
		Example: `  gosift batch data/incoming
  gosift batch data/incoming --config gosift.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildPipeline(*configPath, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := svc.RunBatchPipeline(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				printResult(cmd, r)
				if r.Status == report.StatusFailed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
			}
			return nil
		},
	}
}

func newInspectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input-file]",
		Short: "Profile a file and print its quality report without cleaning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, args[0])
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger()

			tbl, err := loader.New(logger).Load(args[0])
			if err != nil {
				return err
			}
			qr, err := inspect.New(cfg.Inspector, logger).Analyze(tbl)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(qr, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
}

// buildPipeline loads configuration and wires every stage. The returned
// cleanup closes the optional database connection.
func buildPipeline(configPath, inputFile string) (*app.PipelineService, func(), error) {
	cfg, err := loadConfig(configPath, inputFile)
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewDefaultLogger()

	var repository ports.ReportRepository
	cleanup := func() {}
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		repository = postgres.NewReportRepository(db)
		cleanup = func() { _ = db.Close() }
	}

	svc := app.NewPipelineService(
		cfg,
		loader.New(logger),
		inspect.New(cfg.Inspector, logger),
		anomaly.New(cfg.Anomaly, logger),
		clean.New(cfg.Cleaner, logger),
		feature.New(cfg.Feature, logger),
		insight.New(cfg.Insight, cfg.Data.ArtifactsPath, cfg.Inspector.DatasetName, logger),
		repository,
		logger,
	)
	return svc, cleanup, nil
}

// loadConfig reads overrides and derives the dataset name from the input
// file when the config does not pin one.
func loadConfig(configPath, inputFile string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Inspector.DatasetName == "" || cfg.Inspector.DatasetName == "dataset" {
		cfg.Inspector.DatasetName = datasetName(inputFile)
	}
	if cfg.Inspector.ArtifactsDir == "" {
		cfg.Inspector.ArtifactsDir = cfg.Data.ArtifactsPath
	}
	return cfg, nil
}

func datasetName(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printResult(cmd *cobra.Command, r *report.PipelineResult) {
	cmd.Printf("run %s: %s (%.2fs)\n", r.RunID, r.Status, r.ExecutionTime)
	if r.QualityReport != nil {
		cmd.Printf("  quality: %s, %d recommendation(s)\n",
			r.QualityReport.OverallQuality, len(r.QualityReport.Recommendations))
	}
	if r.CleaningReport != nil {
		cmd.Printf("  cleaned: %v -> %v, %d action(s)\n",
			r.CleaningReport.OriginalShape, r.CleaningReport.CleanedShape, len(r.CleaningReport.ActionsTaken))
	}
	if r.OutputFile != "" {
		cmd.Printf("  output: %s\n", r.OutputFile)
	}
	for _, e := range r.Errors {
		cmd.Printf("  error: %s\n", e)
	}
}
