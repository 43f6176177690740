// Package main provides the paperval CLI for validating structured
// extractions against ground truth annotations.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paperval/paperval/internal/config"
	"github.com/paperval/paperval/internal/corpus"
	"github.com/paperval/paperval/internal/evaluation"
	"github.com/paperval/paperval/internal/pkg/hash"
	"github.com/paperval/paperval/internal/pkg/logger"
	"github.com/paperval/paperval/internal/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperval",
		Short: "Paperval - extraction validation metrics",
		Long: `Paperval compares automated structured-data extractions against
manually annotated ground truth and reports precision, recall, and F1
at the field and corpus level.

Run 'paperval evaluate --annotations file.json' to validate a corpus.
Run 'paperval --help' for available commands.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		evaluateCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a corpus of annotated extractions",
		Long: `Evaluate every paper in an annotation file against its ground truth.

Papers without ground truth are reported as not_annotated and skipped
in the aggregate. Writes detailed metrics as JSON and a human-readable
report, and prints the report to the console.`,
		RunE: runEvaluate,
	}

	cmd.Flags().StringP("annotations", "a", "", "annotation file with ground truth filled in (required)")
	cmd.Flags().StringP("output", "o", "validation_metrics.json", "output file for detailed metrics")
	cmd.Flags().StringP("report", "r", "validation_report.txt", "human-readable validation report")
	cmd.Flags().Float64("numeric-tolerance", 0, "tolerance for numeric comparisons")
	cmd.Flags().Bool("fuzzy-strings", false, "case-insensitive, whitespace-collapsed string matching")
	cmd.Flags().Bool("list-order-matters", false, "compare lists positionally instead of as sets")
	cmd.Flags().IntP("workers", "w", 0, "concurrent paper evaluations (0 = number of CPUs)")
	cmd.MarkFlagRequired("annotations")

	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	annotationsPath, _ := cmd.Flags().GetString("annotations")
	outputPath, _ := cmd.Flags().GetString("output")
	reportPath, _ := cmd.Flags().GetString("report")
	workers, _ := cmd.Flags().GetInt("workers")
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, "text")

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := appCfg.Compare
	if cmd.Flags().Changed("numeric-tolerance") {
		cfg.NumericTolerance, _ = cmd.Flags().GetFloat64("numeric-tolerance")
	}
	if cmd.Flags().Changed("fuzzy-strings") {
		cfg.FuzzyStrings, _ = cmd.Flags().GetBool("fuzzy-strings")
	}
	if cmd.Flags().Changed("list-order-matters") {
		cfg.ListOrderMatters, _ = cmd.Flags().GetBool("list-order-matters")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if workers == 0 {
		workers = appCfg.Evaluation.Workers
	}

	raw, err := os.ReadFile(annotationsPath)
	if err != nil {
		return fmt.Errorf("failed to read annotations: %w", err)
	}
	set, err := corpus.Parse(raw)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d validation papers\n", len(set.ValidationPapers))

	annotated := set.CountAnnotated()
	fmt.Printf("Papers with ground truth: %d\n", annotated)

	if annotated == 0 {
		fmt.Println("\nError: No ground truth annotations found!")
		fmt.Println("Please fill in the 'ground_truth' field for each paper in the annotation file.")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runID := hash.RunID(raw)
	log.WithRun(runID).Debug("evaluating corpus", "workers", workers)

	results, err := evaluation.EvaluateCorpus(ctx, set.ValidationPapers, cfg, workers)
	if err != nil {
		return err
	}

	paperIDs := make([]string, 0, len(results))
	for id := range results {
		paperIDs = append(paperIDs, id)
	}
	sort.Strings(paperIDs)
	for _, id := range paperIDs {
		result := results[id]
		if result.Evaluated() && result.Overall != nil {
			fmt.Printf("%s: P=%.2f%% R=%.2f%% F1=%.2f%%\n",
				id, result.Overall.Precision*100, result.Overall.Recall*100, result.Overall.F1*100)
		}
	}

	summary := evaluation.Aggregate(results)

	detailed := report.Detailed{
		RunID:   runID,
		Summary: summary,
		ByPaper: results,
		Config:  cfg,
	}
	if err := corpus.WriteJSON(outputPath, detailed); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	fmt.Printf("\nDetailed metrics saved to: %s\n", outputPath)

	text := report.Text(summary)
	if err := os.WriteFile(reportPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Println(text)
	fmt.Printf("Validation report saved to: %s\n", reportPath)

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("paperval %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
