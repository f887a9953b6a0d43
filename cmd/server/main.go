package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"photolabel/internal/bootstrap"
	"photolabel/internal/config"
	httptransport "photolabel/internal/transport/http"
	"photolabel/internal/vision"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch-model",
		Short: "Download the model and labels artifacts if missing, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fetchModel(cmd.Context())
		},
	}

	rootCmd := &cobra.Command{
		Use:           "photolabel",
		Short:         "Photo classifier with per-label content",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Args: cobra.NoArgs,
		RunE: serveCmd.RunE,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default configs/config.toml, or $CONFIG_FILE)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path != "" {
			return os.Setenv("CONFIG_FILE", path)
		}
		return nil
	}
	rootCmd.AddCommand(serveCmd, fetchCmd)
	return rootCmd
}

func serve(ctx context.Context) error {
	app, err := bootstrap.New(ctx)
	if err != nil {
		if errors.Is(err, vision.ErrModelUnavailable) {
			log.Fatalf("classifier unavailable, refusing to start: %v", err)
		}
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("close resources failed", "error", err)
		}
	}()

	router, err := httptransport.NewRouter(app)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(server, errCh, app.Logger)
}

func waitForShutdown(server *http.Server, errCh <-chan error, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func fetchModel(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.Env)

	acquirer, err := bootstrap.NewAcquirer(cfg.Model, logger)
	if err != nil {
		return err
	}
	if err := bootstrap.FetchArtifacts(ctx, cfg.Model, acquirer); err != nil {
		return err
	}
	logger.Info("artifacts ready", "model", cfg.Model.Path, "labels", cfg.Model.LabelsPath)
	return nil
}
