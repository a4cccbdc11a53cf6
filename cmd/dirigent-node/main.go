// Dirigent Node — worker-сервис, выполняющий actions одного capability.
//
// Node:
//   - Поднимает HTTP-поверхность POST /invoke и GET /healthz
//   - Регистрируется в ядре и поддерживает heartbeat
//   - Выполняет встроенный набор actions своего capability
//
// Nodes масштабируются горизонтально: несколько nodes одного
// capability обслуживаются ядром по round-robin.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Dirigent/internal/domain"
	"github.com/shaiso/Dirigent/internal/node"
	"github.com/shaiso/Dirigent/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger("dirigent-node")

	capability := domain.CapabilityType(envOr("CAPABILITY", string(domain.CapabilityBusiness)))

	handlers := node.BuiltinHandlers(capability)
	if len(handlers.Actions()) == 0 {
		logger.Error("unknown capability", "capability", capability)
		os.Exit(1)
	}

	nodeID := envOr("NODE_ID", string(capability)+"-node-1")
	listenAddr := envOr("LISTEN_ADDR", ":9000")
	advertiseURL := envOr("ADVERTISE_URL", "http://localhost"+listenAddr+"/invoke")
	coreURL := envOr("CORE_URL", "http://localhost:8080")

	logger.Info("starting dirigent-node",
		"node_id", nodeID,
		"capability", capability,
		"actions", len(handlers.Actions()))

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := node.NewService(nodeID, capability, handlers, logger)

	mux := http.NewServeMux()
	mux.Handle("/", svc.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Регистрация в ядре и heartbeat
	registrar := node.NewRegistrar(node.RegistrarConfig{
		CoreURL:      coreURL,
		NodeID:       nodeID,
		Capability:   capability,
		AdvertiseURL: advertiseURL,
		Actions:      handlers.Actions(),
		Logger:       logger,
	})
	registrar.Start(ctx)

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	// Сначала дерегистрация, чтобы ядро перестало слать tasks
	registrar.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("dirigent-node stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
