package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/export"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export scored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads for a profile, best scores first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		limit, _ := cmd.Flags().GetInt("limit")
		if profileID == 0 {
			return eris.New("--profile is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, profileID, limit)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMPANY\tSTATUS\tCOMPOSITE\tFIT\tTIMING\tVACANCIES")
		for _, lead := range leads {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%d\n",
				lead.CompanyName, lead.Status,
				lead.CompositeScore, lead.FitScore, lead.TimingScore,
				lead.VacancyCount)
		}
		return w.Flush()
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads for a profile to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		out, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("limit")
		if profileID == 0 {
			return eris.New("--profile is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, profileID, limit)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if err := export.WriteLeadsXLSX(out, leads); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.Int64("profile_id", profileID),
			zap.Int("leads", len(leads)),
			zap.String("path", out))
		return nil
	},
}

func init() {
	leadsListCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	leadsListCmd.Flags().Int("limit", 50, "maximum leads to list (0 = all)")

	leadsExportCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	leadsExportCmd.Flags().String("out", "leads.xlsx", "output workbook path")
	leadsExportCmd.Flags().Int("limit", 0, "maximum leads to export (0 = all)")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
