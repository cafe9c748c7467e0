package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"racksum-backend/internal/api"
	"racksum-backend/internal/catalog"
	"racksum-backend/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		logger.Info().Str("driver", a.cfg.Database.Driver).Msg("migrations applied")
		return nil
	},
}

var importSource string

var importDevicesCmd = &cobra.Command{
	Use:   "import-devices",
	Short: "Import device templates from a JSON catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		svc := catalog.NewService(&a.cfg.Catalog, a.store)
		var n int
		if importSource != "" {
			n, err = svc.Import(cmd.Context(), importSource)
		} else {
			n, err = svc.Sync(cmd.Context())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d device template(s) written\n", n)
		return nil
	},
}

var toolArgs string

var toolCmd = &cobra.Command{
	Use:   "tool <name>",
	Short: "Run an assistant tool and print its output",
	Long:  "Run an assistant tool against the configured database. With no name, list the available tools.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, d := range a.tools.Definitions() {
				fmt.Fprintf(out, "%-24s %s\n", d.Name, d.Description)
			}
			return nil
		}

		if toolArgs != "" && !json.Valid([]byte(toolArgs)) {
			return fmt.Errorf("--args is not valid JSON")
		}
		res, err := a.tools.Call(cmd.Context(), args[0], json.RawMessage(toolArgs))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Text)
		if res.IsError {
			return errors.New("tool reported an error")
		}
		return nil
	},
}

func init() {
	importDevicesCmd.Flags().StringVar(&importSource, "source", "", "Catalog file path or http(s) URL (defaults to catalog.source)")
	toolCmd.Flags().StringVar(&toolArgs, "args", "", "Tool arguments as a JSON object")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Catalog.SyncOnStart {
		svc := catalog.NewService(&a.cfg.Catalog, a.store)
		if _, err := svc.Sync(ctx); err != nil {
			logger.Warn().Err(err).Msg("device catalog sync failed, continuing with stored templates")
		}
	}

	router := api.NewRouter(a.store, a.agg, a.tools, api.Options{
		RateLimit:       rate.Limit(a.cfg.Server.RateLimitPerSec),
		RateBurst:       a.cfg.Server.RateLimitBurst,
		LimiterTTL:      time.Duration(a.cfg.Server.LimiterTTLMinutes) * time.Minute,
		DefaultRUHeight: a.cfg.Placement.DefaultRUHeight,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", a.cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	case <-stop:
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Duration(a.cfg.Server.ShutdownSeconds)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}
	logger.Info().Msg("server gracefully stopped")
	return nil
}
