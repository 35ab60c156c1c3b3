package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score companies with active vacancies",
	Long:  "Computes fit, timing, and composite scores under the profile's active scoring config and upserts the resulting leads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		if profileID == 0 {
			return eris.New("--profile is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summary, err := scorer.NewEngine(st).ScoreProfile(ctx, profileID)
		if err != nil {
			return eris.Wrap(err, "score")
		}

		zap.L().Info("scoring finished",
			zap.Int64("profile_id", profileID),
			zap.Int("scored", summary.Scored),
			zap.Int("hot", summary.Hot),
			zap.Int("warm", summary.Warm),
			zap.Int("monitor", summary.Monitor),
			zap.Int("excluded", summary.Excluded))
		return nil
	},
}

func init() {
	scoreCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	rootCmd.AddCommand(scoreCmd)
}
