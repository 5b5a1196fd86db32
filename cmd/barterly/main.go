package main

import (
	"fmt"
	"os"

	"barterly/internal/app"
	"barterly/internal/config"
	"barterly/internal/logger"
	"barterly/pkg/apperrors"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "barterly",
		Short:   "Barterly - skill exchange marketplace API",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the YAML configuration file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))
	rootCmd.AddCommand(seedCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(*configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect(*configPath)
			if err != nil {
				return err
			}
			return app.Migrate(db)
		},
	}
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default categories and the first admin account",
		Long: `Insert the default skill categories and, when FIRST_ADMIN_EMAIL and
FIRST_ADMIN_PASSWORD are set, create or promote the first admin account.
The schema is migrated first. Running it again is harmless.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect(*configPath)
			if err != nil {
				return err
			}
			if err := app.Migrate(db); err != nil {
				return err
			}
			application, err := app.New(cfg, db)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Seed()
		},
	}
}

func connect(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
