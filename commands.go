package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/importer"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/metrics"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/report"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/repository"
	"github.com/dorivaldermetrio-hash/crm-sub000/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Context for graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			var m *metrics.Metrics
			if a.cfg.MetricsEnabled() {
				m = metrics.New()
			}

			service, err := a.reportService(store, m)
			if err != nil {
				return err
			}

			srv := server.NewServer(a.cfg, service, m, a.logger)
			if err := srv.Run(ctx); err != nil {
				return err
			}
			a.logger.Info("Application stopped.")
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|version",
		Short:     "Apply, roll back or inspect schema migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := repository.Open(ctx, a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			if store.DB == nil {
				return errors.New("migrations are only supported for the postgres and sqlite drivers")
			}
			return repository.MigrateDB(store.DB, args[0], a.logger)
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a report once and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			service, err := a.reportService(store, nil)
			if err != nil {
				return err
			}
			rep, err := service.Build(ctx, period)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "periodo", "p", report.DefaultPeriod, "Reporting period (hoje, semana, mes, todos)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture.yml>",
		Short: "Load contacts, conversations and products from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := importer.LoadFixture(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			sum, err := importer.NewImporter(store, a.logger).Import(ctx, fx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products, %d contacts, %d messages\n", sum.Products, sum.Contacts, sum.Messages)
			return nil
		},
	}
}
