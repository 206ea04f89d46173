package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportmesh"
	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/handler"
	"github.com/hupe1980/supportmesh/internal/backend"
)

const shutdownTimeout = 10 * time.Second

func buildServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant HTTP server",
		Long: `Start the assistant HTTP server.

Endpoints:
  POST /agent    {"prompt": "...", "user_id": "..."}
  GET  /healthz  liveness probe
  GET  /metrics  Prometheus metrics

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func buildBackendsCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Start the demo tracking, ticketing and knowledge services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.BackendsAddr = addr
			}
			return runBackends(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.backends_addr)")
	return cmd
}

func buildAskCmd(configPath *string) *cobra.Command {
	var (
		userID string
		prompt string
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Run a single invocation and print the response",
		Example: `  supportmesh ask --user alice --prompt "Where is package ABC123?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), cfg, handler.Request{Prompt: prompt, UserID: userID}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Session id (defaults to anonymous)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Customer message (defaults to Hello)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv(config.EnvPrefix + "CONFIG"); env != "" {
			path = env
		}
	}
	return config.Load(path)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mesh, err := supportmesh.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer mesh.Close()

	mesh.Logger().Info("server.start", "addr", cfg.Server.Addr)
	return serveUntilDone(ctx, cfg.Server.Addr, mesh.HTTPHandler())
}

func runBackends(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := supportmesh.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	srv := backend.New(func(o *backend.Options) {
		o.Logger = logger.WithComponent("backend")
	})

	logger.Info("backends.start", "addr", cfg.Server.BackendsAddr)
	return serveUntilDone(ctx, cfg.Server.BackendsAddr, srv.Router())
}

func runAsk(ctx context.Context, cfg *config.Config, req handler.Request, out io.Writer) error {
	mesh, err := supportmesh.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer mesh.Close()

	resp := mesh.Handle(ctx, req)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp.Body); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invocation failed with status %d", resp.StatusCode)
	}
	return nil
}

func serveUntilDone(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "addr", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
