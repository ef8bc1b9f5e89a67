package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/theplant/adminquery/internal/config"
	"github.com/theplant/adminquery/internal/db"
	"github.com/theplant/adminquery/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "adminquery",
	Short:         "Admin API with declarative list filtering",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml if present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func (e *env) Close() {
	sqlDB, err := e.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		e.log.Warn().Err(err).Msg("close database")
	}
}

// setup loads the configuration, builds the logger and opens the database.
func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	gormDB, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return &env{cfg: cfg, log: log, db: gormDB}, nil
}
