package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/veritas/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the suggestion HTTP API",
	Long: `Starts the HTTP server exposing POST /api/projects/:projectID/suggestions.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	// Fail fast on a misconfigured embedding endpoint or bad credentials
	// before accepting traffic.
	pingCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	err = p.embed.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("startup check: %w", err)
	}
	logger.Info("Embedding endpoint reachable, model %s", p.embed.ModelName())

	server := httpapi.NewServer(p.service, cfg.Server.RequestTimeout())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Listen)
	}()
	cmd.Printf("veritas listening on %s\n", cfg.Server.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
