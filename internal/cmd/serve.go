package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/aitechneut/autovandezaakofprive/internal/config"
	"github.com/aitechneut/autovandezaakofprive/internal/handler"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	e, vehicles, err := build(cfg, logger)
	if err != nil {
		return err
	}

	srv := &fasthttp.Server{
		Handler:            handler.New(e, vehicles, logger).FastHTTP(),
		Name:               "autovandezaakofprive",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       35 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "rules_version", e.Rules().Version, "ev_cap_strategy", cfg.CapStrategy())
		errCh <- srv.ListenAndServe(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.ShutdownWithContext(shutdownCtx)
}
