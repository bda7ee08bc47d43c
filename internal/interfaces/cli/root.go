// Package cli implements the compliancectl command tree.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/domain/catalog"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres"
	"github.com/complyhq/compliance-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
)

// NewRootCommand assembles the compliancectl command tree.
func NewRootCommand(version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "compliancectl",
		Short:         "Operate the compliance obligation engine from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")

	root.AddCommand(
		newGenerateCommand(&configPath),
		newScoreCommand(&configPath),
		newObligationsCommand(&configPath),
		newCostsCommand(&configPath),
		newDeadlinesCommand(&configPath),
		newMigrateCommand(&configPath),
		newCatalogCommand(),
	)
	return root
}

// runtime bundles everything a CLI command needs against a live database.
type runtime struct {
	cfg     *config.Config
	db      *sql.DB
	service *compliance.Service
}

func (rt *runtime) close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

// newRuntime loads config and wires a service over postgres.  The CLI runs
// without kafka, redis or metrics: those belong to the long-lived processes.
func newRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  "warn",
		Format: "console",
	})
	if err != nil {
		return nil, err
	}

	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	service := compliance.NewService(
		catalog.NewDefaultRegistry(),
		repositories.NewEntityRepository(db),
		repositories.NewObligationRepository(db),
		logger,
	)
	return &runtime{cfg: cfg, db: db, service: service}, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(logging.Config{Level: "info", Format: "console"})
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.Database, logger)
		},
	}
}

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in requirement catalogs",
		RunE: func(_ *cobra.Command, _ []string) error {
			registry := catalog.NewDefaultRegistry()
			for _, code := range registry.Jurisdictions() {
				templates, err := registry.TemplatesFor(code)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%d templates)\n", code, len(templates))
				for _, t := range templates {
					fmt.Printf("  %-24s %-14s %s\n", t.Ref, t.Category, t.Name)
				}
			}
			return nil
		},
	}
}
