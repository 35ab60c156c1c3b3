package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage search profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a search profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		name, _ := cmd.Flags().GetString("name")
		terms, _ := cmd.Flags().GetStringSlice("term")
		location, _ := cmd.Flags().GetString("location")
		if name == "" {
			return eris.New("--name is required")
		}
		if len(terms) == 0 {
			return eris.New("at least one --term is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profile := &model.SearchProfile{
			Name:        name,
			SearchTerms: terms,
			Location:    location,
		}
		if err := st.CreateProfile(ctx, profile); err != nil {
			return eris.Wrap(err, "create profile")
		}

		zap.L().Info("search profile created",
			zap.Int64("profile_id", profile.ID),
			zap.String("name", profile.Name),
			zap.Strings("terms", profile.SearchTerms))
		return nil
	},
}

func init() {
	profileCreateCmd.Flags().String("name", "", "profile name (required)")
	profileCreateCmd.Flags().StringSlice("term", nil, "search term, repeatable (required)")
	profileCreateCmd.Flags().String("location", "", "target location")

	profileCmd.AddCommand(profileCreateCmd)
	rootCmd.AddCommand(profileCmd)
}
