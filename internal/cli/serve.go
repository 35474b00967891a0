package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheusmosca/inventory-engine/internal/api"
	"github.com/matheusmosca/inventory-engine/internal/config"
	"github.com/matheusmosca/inventory-engine/internal/inventory"
	"github.com/matheusmosca/inventory-engine/internal/logger"
	"github.com/matheusmosca/inventory-engine/internal/telemetry"
)

const instrumentationName = "inventory-engine"

// NewServeCommand cria o comando que sobe o serviço HTTP
func NewServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inventory HTTP service",
		Long: `Run the inventory HTTP service.

Configuration comes from environment variables (PORT, SERVICE_NAME,
LOG_LEVEL, OTEL_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT, HISTORY_LIMIT,
RECENT_OPERATIONS_DEFAULT, SHUTDOWN_TIMEOUT) and, optionally, a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "optional config file (yaml, json, toml or env)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	defer func() { _ = log.Sync() }()

	providers, err := telemetry.Init(ctx, telemetry.Settings{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Endpoint:       cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to initialize telemetry", err)
	}

	engine := inventory.New(
		inventory.WithLogger(log),
		inventory.WithTracer(otel.Tracer(instrumentationName)),
		inventory.WithMeter(otel.Meter(instrumentationName)),
		inventory.WithHistoryLimit(cfg.HistoryLimit),
	)

	handler := api.NewInventoryHandler(engine, log, cfg.RecentDefault)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, log, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("🚀 Inventory Service listening",
			zap.String("port", cfg.Port),
			zap.Bool("otel_enabled", cfg.OTelEnabled),
			zap.Int("history_limit", cfg.HistoryLimit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		log.Info("♻️ Shutting down inventory service", zap.Duration("timeout", cfg.ShutdownTimeout))
		return errors.Join(
			srv.Shutdown(shutdownCtx),
			providers.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		log.Error("❌ Inventory service stopped with error", zap.Error(err))
		return WrapExitError(ExitFailure, "server error", err)
	}

	log.Info("✅ Inventory service stopped")
	return nil
}
