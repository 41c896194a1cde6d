package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/config"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/metrics"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/report"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "crm",
		Short: "Reporting backend for the legal services CRM",
		Long: `crm serves the aggregated report of WhatsApp and Instagram contacts,
conversations and products at GET /api/relatorios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync() // Flushes buffer, if any
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "configs/config.yml", "Path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newReportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	return zcfg.Build()
}

// openStore connects to the configured database and, for the SQL drivers,
// applies pending migrations.
func (a *app) openStore(ctx context.Context) (*repository.Store, error) {
	store, err := repository.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	if store.DB != nil {
		if err := repository.MigrateDB(store.DB, "up", a.logger); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
	}
	return store, nil
}

func (a *app) reportService(store *repository.Store, m *metrics.Metrics) (report.Service, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	fetcher := report.NewFetcher(store.Contacts, store.Conversations, store.Products)
	return report.NewService(fetcher, loc, a.logger, report.WithMetrics(m)), nil
}

// storeCloser is satisfied by *repository.Store.
type storeCloser interface {
	Close(ctx context.Context) error
}

func (a *app) closeStore(store storeCloser) {
	if err := store.Close(context.Background()); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
}
