package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/database"
	"github.com/ekaya-inc/dpdp-engine/pkg/handlers"
	"github.com/ekaya-inc/dpdp-engine/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(flags *rootFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(flags, version)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(ctx, cfg, a, logger)
		},
	}
}

// newRouter registers every API route and wraps the mux in the middleware chain.
// Metrics sits directly on the mux so the matched route pattern is visible to it.
func newRouter(cfg *config.Config, a *app, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAssessmentHandler(a.assessment, logger).RegisterRoutes(mux)
	handlers.NewRequirementHandler(a.requirement, logger).RegisterRoutes(mux)
	handlers.NewComplianceHandler(a.ledger, logger).RegisterRoutes(mux)

	return middleware.RequestLogger(logger)(
		database.WithRequestScope(a.db)(
			middleware.Metrics()(mux),
		),
	)
}

func serve(ctx context.Context, cfg *config.Config, a *app, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           newRouter(cfg, a, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting dpdp-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version),
			zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
