package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastgen/internal/app"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate many podcasts from a config file",
	}
	cmd.AddCommand(newBatchRunCmd(root), newBatchSampleCmd())
	return cmd
}

func newBatchRunCmd(root *rootOptions) *cobra.Command {
	var (
		concurrency int
		reportPath  string
	)
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Run every topic in a JSON or YAML batch config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := podcast.LoadBatchConfig(args[0])
			if err != nil {
				return err
			}
			if err := root.cfg.Validate(); err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = batch.Concurrency
			}
			if concurrency <= 0 {
				concurrency = root.cfg.Podcast.Concurrency
			}
			outputDir := batch.OutputDir
			if outputDir == "" {
				outputDir = root.cfg.Podcast.OutputDir
			}

			pipeline, err := app.BuildPipeline(root.cfg, app.NewMiniMax(root.cfg.MiniMax), nil, app.Options{OutputDir: outputDir})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			var estimate time.Duration
			for _, job := range batch.Topics {
				estimate += podcast.EstimateGenerationTime(job.Duration)
			}
			printInfo("Running %d topics, %d at a time (sequential estimate %s)",
				len(batch.Topics), concurrency, podcast.FormatEstimate(estimate))

			report := podcast.RunBatch(ctx, pipeline, batch.Topics, podcast.BatchOptions{
				Concurrency: concurrency,
				OutputDir:   outputDir,
				OnResult:    printBatchResult,
			})

			if reportPath == "" {
				reportPath = filepath.Join(outputDir, "batch_report.json")
			}
			if err := report.WriteFile(reportPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderBatchReport(report))
			printInfo("Report written to %s", reportPath)

			if report.Summary.Successful == 0 {
				return fmt.Errorf("all %d topics failed", report.Summary.TotalTopics)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "parallel jobs (default from config file, then PODCAST_CONCURRENCY)")
	cmd.Flags().StringVar(&reportPath, "report", "", "report path (default <output_dir>/batch_report.json)")
	return cmd
}

func newBatchSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [path]",
		Short: "Write a sample batch config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "batch_config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := podcast.SaveBatchConfig(path, podcast.SampleBatchConfig(time.Now())); err != nil {
				return err
			}
			printSuccess("Sample batch config written to %s", path)
			return nil
		},
	}
}
