package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/markpad/internal/assist"
	"github.com/zjrosen/markpad/internal/assist/api"
	"github.com/zjrosen/markpad/internal/log"
	"github.com/zjrosen/markpad/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assist daemon",
	Long: `Run the revision service as a daemon that exposes an HTTP API.
External editors and browser frontends can POST markdown to /api/analyze
and receive the revised document plus a change summary.

The daemon listens on the configured address (default: 127.0.0.1:8787).

Example:
  markpad serve                  # Start on the configured address
  markpad serve --addr :8080     # Start on port 8080`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("MARKPAD_DEBUG") != "" {
		logPath := os.Getenv("MARKPAD_LOG")
		if logPath == "" {
			logPath = "markpad-serve.log"
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()

		log.Info(log.CatAPI, "Markpad daemon starting", "debug", true, "logPath", logPath)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to run the assist daemon")
	}

	service := assist.NewService(assist.Config{
		APIKey:  apiKey,
		BaseURL: cfg.Assist.BaseURL,
		Model:   cfg.Assist.Model,
		Timeout: cfg.Assist.Timeout(),
	})

	provider, err := tracing.NewProvider(cfg.Serve.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	handler := api.NewHandler(api.Config{
		Service:        service,
		RateLimit:      cfg.Serve.RateLimit,
		AllowedOrigins: cfg.Serve.AllowedOrigins,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           tracing.Middleware(provider.Tracer())(handler.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Printf("Markpad assist daemon listening on %s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(log.CatAPI, "Error stopping API server", "error", err)
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		log.Error(log.CatAPI, "Error flushing traces", "error", err)
	}

	fmt.Println("Daemon stopped")
	return nil
}
