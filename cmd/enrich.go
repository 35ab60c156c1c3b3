package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the enrichment passes for a profile",
	Long:  "The llm pass extracts structured data from vacancy text; the external pass pulls registry and firmographic data for companies whose extraction quality clears the threshold.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		passFlag, _ := cmd.Flags().GetString("pass")

		if profileID == 0 {
			return eris.New("--profile is required")
		}
		pass, err := enrich.ParsePass(passFlag)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orchestrator.Run(ctx, profileID, pass)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		log := zap.L().With(zap.Int64("profile_id", profileID))
		if result.LLM != nil {
			log.Info("llm pass finished",
				zap.String("run_id", result.LLM.ID.String()),
				zap.Int("processed", result.LLM.ItemsProcessed),
				zap.Int("failed", result.LLM.ItemsFailed),
				zap.Float64("cost_usd", result.LLM.CostUSD))
		}
		if result.External != nil {
			log.Info("external pass finished",
				zap.String("run_id", result.External.ID.String()),
				zap.Int("processed", result.External.ItemsProcessed),
				zap.Int("failed", result.External.ItemsFailed))
		}
		return nil
	},
}

func init() {
	enrichCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	enrichCmd.Flags().String("pass", "both", "enrichment pass: llm, external, both")
	rootCmd.AddCommand(enrichCmd)
}
