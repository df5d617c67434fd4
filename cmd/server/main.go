package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/copyleftdev/tundr-problems/internal/config"
	apperrors "github.com/copyleftdev/tundr-problems/internal/errors"
	"github.com/copyleftdev/tundr-problems/internal/logging"
	"github.com/copyleftdev/tundr-problems/internal/registry"
	"github.com/copyleftdev/tundr-problems/internal/rpc"
	"github.com/copyleftdev/tundr-problems/internal/server"
	"github.com/copyleftdev/tundr-problems/internal/store"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use standard logger as fallback if config loading fails
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize base logger
	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	serviceLogger := logger.WithFields(map[string]interface{}{
		"service": "tundr-problems",
		"version": version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, serviceLogger)
	if err != nil {
		serviceLogger.Fatal("Failed to open problem store", map[string]interface{}{
			"backend": cfg.Store.Backend,
			"error":   err.Error(),
		})
	}
	defer st.Close()

	svc, err := registry.NewService(ctx, st, serviceLogger, prometheus.DefaultRegisterer)
	if err != nil {
		serviceLogger.Fatal("Failed to create registry", map[string]interface{}{"error": err.Error()})
	}

	httpMetrics, err := server.NewHTTPMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		serviceLogger.Fatal("Failed to register HTTP metrics", map[string]interface{}{"error": err.Error()})
	}

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apperrors.RecoveryMiddleware(serviceLogger))
	r.Use(apperrors.ErrorHandler(serviceLogger))
	r.Use(logging.Middleware(serviceLogger))
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("Health check failed", map[string]interface{}{"error": err.Error()})
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	server.NewServer(cfg, serviceLogger, svc).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		serviceLogger.Info("Starting server", map[string]interface{}{
			"address": httpServer.Addr,
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serviceLogger.Error("HTTP server error", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	var grpcServer *rpc.Server
	if cfg.GRPC.Port != 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			serviceLogger.Fatal("Failed to listen for gRPC", map[string]interface{}{
				"port":  cfg.GRPC.Port,
				"error": err.Error(),
			})
		}
		grpcServer = rpc.NewServer(svc, serviceLogger)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				serviceLogger.Error("gRPC server error", map[string]interface{}{"error": err.Error()})
				stop()
			}
		}()
	}

	<-ctx.Done()
	serviceLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		serviceLogger.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}

	serviceLogger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(store.RedisConfig{
			Addrs:     cfg.Redis.Addrs,
			Username:  cfg.Redis.Username,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Store.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		if err := rs.WaitForReady(ctx, 10*time.Second); err != nil {
			rs.Close()
			return nil, err
		}
		logger.Info("Using Redis problem store", map[string]interface{}{"addrs": cfg.Redis.Addrs})
		return rs, nil
	default:
		logger.Info("Using in-memory problem store")
		return store.NewMemoryStore(), nil
	}
}
