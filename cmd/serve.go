package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/vehicle-intake-api/api/handlers"
	"github.com/linesmerrill/vehicle-intake-api/config"
)

// shutdownTimeout bounds how long in-flight requests get once a signal arrives
const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.New()
	if err != nil {
		return err
	}
	defer zap.S().Sync() //nolint:errcheck

	a := handlers.App{Config: *conf}
	if err := a.Initialize(ctx); err != nil { //initialize database and router
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", conf.Port),
		Handler:           otelhttp.NewHandler(a.Router, "vehicle-intake-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.S().Infow("vehicle-intake-api is up and running",
			"port", conf.Port,
			"url", conf.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Info("shutting down vehicle-intake-api")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.Scheduler.Stop()
		err := srv.Shutdown(shutdownCtx)
		if cerr := a.Close(shutdownCtx); cerr != nil {
			zap.S().With("error", cerr).Error("failed to close app")
		}
		return err
	})
	return g.Wait()
}
