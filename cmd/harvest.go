package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/harvest"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Ingest a job board feed into the vacancy pipeline",
	Long:  "Reads a pre-fetched feed file, dedups postings by source identity, and creates canonical companies for new employers.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		sourceName, _ := cmd.Flags().GetString("source")
		feedPath, _ := cmd.Flags().GetString("feed")

		if profileID == 0 {
			return eris.New("--profile is required")
		}
		if feedPath == "" {
			return eris.New("--feed is required")
		}

		source, err := harvest.NewFeedSource(sourceName, feedPath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := harvest.NewHarvester(st).Run(ctx, profileID, source)
		if err != nil {
			return eris.Wrap(err, "harvest")
		}

		zap.L().Info("harvest run finished",
			zap.String("run_id", run.ID.String()),
			zap.Int("seen", run.VacanciesSeen),
			zap.Int("new", run.VacanciesNew),
			zap.Int("updated", run.VacanciesUpdated),
			zap.Int("companies_created", run.CompaniesCreated))
		return nil
	},
}

func init() {
	harvestCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	harvestCmd.Flags().String("source", "indeed", "feed source: indeed, linkedin")
	harvestCmd.Flags().String("feed", "", "path to the JSON feed file (required)")
	rootCmd.AddCommand(harvestCmd)
}
