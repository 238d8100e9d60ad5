package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/nexovate-backend/internal/app"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "nexovate",
		Short:         "Nexovate project-advisor backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	root.AddCommand(serveCmd(), migrateCmd(), reconcileCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func bootstrap() (*logger.Logger, app.Config, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading configuration...")
	cfg, err := app.LoadConfig(log, configFile)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, fmt.Errorf("load config: %w", err)
	}
	return log, cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background reconciler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				log.Error("Startup failed", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed the question catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := app.Migrate(cmd.Context(), log, cfg); err != nil {
				return err
			}
			log.Info("Migration complete")
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one cleanup reconciliation pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				log.Sync()
				return err
			}
			defer a.Close()
			report, err := a.ReconcileOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "locked=%d purged=%d stale=%d failed=%d\n",
				report.Locked, report.Purged, report.Stale, report.Failed)
			return nil
		},
	}
}
