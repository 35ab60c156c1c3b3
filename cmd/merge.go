package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/dedup"
)

var mergeCmd = &cobra.Command{
	Use:   "merge-companies",
	Short: "Merge companies sharing a registry number",
	Long:  "Enrichment can reveal that differently spelled employers are one registered business. The oldest record survives and absorbs the others' vacancies and enrichment data.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		merged, err := dedup.NewMerger(st).MergeByRegistryNumber(ctx)
		if err != nil {
			return eris.Wrap(err, "merge companies")
		}

		zap.L().Info("merge finished", zap.Int("companies_merged", merged))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
