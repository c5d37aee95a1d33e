package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-risk/internal/pipeline"
)

var (
	analyzePlaceID string
	analyzeRefresh bool
	analyzeFormat  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scrape and score a single venue by place id",
	Long: `Look up a venue in the cache, scraping its reviews through Apify on a
miss, and print its risk report. --refresh forces a new scrape.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Service.Analyze(ctx, analyzePlaceID, analyzeRefresh)
		if err != nil {
			return err
		}
		return writeReports(cmd.OutOrStdout(), []pipeline.Report{*report}, analyzeFormat)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePlaceID, "place-id", "", "Google Maps place id")
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "ignore the cached venue and scrape again")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: json or text")
	_ = analyzeCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(analyzeCmd)
}
