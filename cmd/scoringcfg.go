package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/leadwerk/leadgen-cli/internal/scorer"
)

var scoringConfigCmd = &cobra.Command{
	Use:   "scoring-config",
	Short: "Inspect and version the scoring configuration",
}

var scoringConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved active scoring config as YAML",
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

		row, err := st.GetActiveScoringConfig(ctx, profileID)
		if err != nil {
			return eris.Wrap(err, "load scoring config")
		}
		resolved, err := scorer.ResolveConfig(row)
		if err != nil {
			return eris.Wrap(err, "resolve scoring config")
		}

		if row == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "# no stored version, showing defaults")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "# version %d\n", row.Version)
		}

		// Round-trip through JSON so the YAML keys match the stored
		// config sections rather than Go field names.
		blob, err := json.Marshal(resolved)
		if err != nil {
			return eris.Wrap(err, "encode scoring config")
		}
		var generic map[string]any
		if err := json.Unmarshal(blob, &generic); err != nil {
			return eris.Wrap(err, "decode scoring config")
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return eris.Wrap(err, "render scoring config")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var scoringConfigApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create a new scoring config version from a YAML override file",
	Long:  "Sections absent from the file carry over from the prior active version; the new version becomes active. Scoring runs always read the active version, so prior leads keep the scores of the version that produced them until rescored.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profileID, _ := cmd.Flags().GetInt64("profile")
		file, _ := cmd.Flags().GetString("file")
		if profileID == 0 {
			return eris.New("--profile is required")
		}
		if file == "" {
			return eris.New("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return eris.Wrapf(err, "read %s", file)
		}
		spec, err := scorer.ParseApplySpec(data)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		row, err := scorer.ApplyVersion(ctx, st, profileID, spec)
		if err != nil {
			return eris.Wrap(err, "apply scoring config")
		}

		zap.L().Info("scoring config version created",
			zap.Int64("profile_id", profileID),
			zap.Int("version", row.Version))
		return nil
	},
}

func init() {
	scoringConfigShowCmd.Flags().Int64("profile", 0, "search profile ID (required)")

	scoringConfigApplyCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	scoringConfigApplyCmd.Flags().StringP("file", "f", "", "YAML override file (required)")

	scoringConfigCmd.AddCommand(scoringConfigShowCmd)
	scoringConfigCmd.AddCommand(scoringConfigApplyCmd)
	rootCmd.AddCommand(scoringConfigCmd)
}
