package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/internal/db"
	"github.com/theplant/adminquery/internal/features"
	"github.com/theplant/adminquery/internal/handlers"
	"github.com/theplant/adminquery/internal/server"
	"github.com/theplant/adminquery/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := e.log.WithContext(cmd.Context())

		if e.cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, e.db, db.Up); err != nil {
				return err
			}
			e.log.Info().Msg("migrations applied")
		}

		filters := filterconfig.Default()
		if e.cfg.Filters.Path != "" {
			override, err := filterconfig.LoadFile(e.cfg.Filters.Path)
			if err != nil {
				return err
			}
			filters = filters.Merge(override)
			e.log.Info().Str("path", e.cfg.Filters.Path).Strs("entities", override.Entities()).Msg("filter overrides loaded")
		}

		compiler := adminquery.NewCompiler(adminquery.WithDefaultLimit(e.cfg.List.DefaultLimit))
		svc := services.New(e.db, e.log,
			services.WithCompiler(compiler),
			services.WithFilters(filters),
			services.WithMaxLimit(e.cfg.List.MaxLimit),
		)
		feat := features.New(e.db, e.log,
			features.WithCompiler(compiler),
			features.WithMaxLimit(e.cfg.List.MaxLimit),
		)

		if e.log.GetLevel() > zerolog.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(e.cfg.HTTP, e.log, func(r gin.IRouter) {
			handlers.Register(r, svc, feat)
		})
		return srv.Run(ctx)
	},
}
