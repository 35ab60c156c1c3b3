package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/extraction"
	"github.com/leadwerk/leadgen-cli/internal/model"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage extraction prompt versions",
}

var promptApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create a new extraction prompt version from a YAML file",
	Long:  "The new version becomes the single active prompt for the profile; prior versions are kept for run attribution. Already-extracted vacancies are not re-extracted.",
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
		spec, err := extraction.ParsePromptSpec(data)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profile, err := st.GetProfile(ctx, profileID)
		if err != nil {
			return eris.Wrap(err, "load profile")
		}
		if profile == nil {
			return eris.Errorf("profile %d not found", profileID)
		}

		prompt := &model.ExtractionPrompt{
			ProfileID:    profileID,
			SystemPrompt: spec.SystemPrompt,
			Schema:       spec.Schema,
		}
		if err := st.CreatePromptVersion(ctx, prompt); err != nil {
			return eris.Wrap(err, "apply prompt")
		}

		zap.L().Info("extraction prompt version created",
			zap.Int64("profile_id", profileID),
			zap.Int("version", prompt.Version))
		return nil
	},
}

func init() {
	promptApplyCmd.Flags().Int64("profile", 0, "search profile ID (required)")
	promptApplyCmd.Flags().StringP("file", "f", "", "YAML prompt file (required)")

	promptCmd.AddCommand(promptApplyCmd)
	rootCmd.AddCommand(promptCmd)
}
