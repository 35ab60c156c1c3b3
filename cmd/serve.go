package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/harvest"
	"github.com/leadwerk/leadgen-cli/internal/scorer"
	"github.com/leadwerk/leadgen-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server",
	Long:  "Exposes harvest, enrichment, scoring, and lead listing over HTTP. Harvest sources are registered via --feed name=path.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		feeds, _ := cmd.Flags().GetStringToString("feed")
		sources := make(map[string]harvest.Source, len(feeds))
		for name, path := range feeds {
			src, err := harvest.NewFeedSource(name, path)
			if err != nil {
				return err
			}
			sources[name] = src
		}

		srv := server.New(env.Store, sources,
			harvest.NewHarvester(env.Store),
			env.Orchestrator,
			scorer.NewEngine(env.Store))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("sources", len(sources)))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringToString("feed", nil, "harvest feed files as name=path (e.g. indeed=./indeed.json)")
	rootCmd.AddCommand(serveCmd)
}
