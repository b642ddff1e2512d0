// Command studygroup is a small operator tool around the study-group
// document store: inspect the persisted document, reset it, or force the
// load-time repair steps to persist.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/studygroup/internal/application"
	"github.com/example/studygroup/internal/config"
	"github.com/example/studygroup/internal/logging"
	"github.com/example/studygroup/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "studygroup",
		Short:         "Inspect and maintain the study-group document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")

	root.AddCommand(
		newDumpCmd(&configPath),
		newResetCmd(&configPath),
		newRepairCmd(&configPath),
	)
	return root
}

func newDumpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the current document snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *application.Store) error {
				doc, err := store.Dump(ctx)
				if err != nil {
					return err
				}
				payload, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			})
		},
	}
}

func newResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the persisted document with the empty document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *application.Store) error {
				return store.Reset(ctx)
			})
		},
	}
}

func newRepairCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Run the document repair steps and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(ctx context.Context, store *application.Store) error {
				applied, err := store.Repair(ctx)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "document already clean")
					return nil
				}
				for _, step := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", step)
				}
				return nil
			})
		},
	}
}

// withStore loads configuration, opens the SQLite-backed store, runs fn, and
// closes the store.
func withStore(ctx context.Context, configPath string, fn func(ctx context.Context, store *application.Store) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	ctx = logging.ContextWithLogger(ctx, logger)

	blob, err := sqlite.OpenWithLogger(cfg.Storage.DSN, cfg.Storage.Document, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	store := application.NewStoreWithLogger(blob, nil, nil, logger)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	return fn(ctx, store)
}
