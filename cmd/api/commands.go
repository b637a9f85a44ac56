package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/pkg/logger"
	"photoshare/internal/server"
)

// NewRootCommand returns the photoshare command. Without a subcommand it serves the API.
func NewRootCommand(ctx context.Context) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "photoshare",
		Short:         "Image sharing portal API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve(ctx, configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(NewServeCommand(ctx, &configPath))
	rootCmd.AddCommand(NewSweepCommand(ctx, &configPath))
	rootCmd.AddCommand(NewMigrateCommand(&configPath))
	return rootCmd
}

func NewServeCommand(ctx context.Context, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the expiry sweeper",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve(ctx, *configPath)
		},
	}
}

// NewSweepCommand runs a single expiry sweep, for use from cron when the
// in-process sweeper is disabled.
func NewSweepCommand(ctx context.Context, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired uploads once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			srv, err := server.New(cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close()

			report, err := srv.Sweeper().RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sweep completed: found=%d deleted=%d failed=%d\n",
				report.Found, report.Deleted, report.Failed)
			return nil
		},
	}
}

func NewMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync(log)

			db, err := database.Connect(cfg.Database.DSN, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := server.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, log, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	log.Info("starting photoshare",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.Server.Port),
		zap.String("uploads_dir", cfg.Storage.UploadsDir),
	)

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize server", zap.Error(err))
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	return srv.Run(ctx)
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, log, nil
}
