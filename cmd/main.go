package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notify-lab/api"
	"notify-lab/auth"
	"notify-lab/observability"
	"notify-lab/runtime"
	"notify-lab/runtime/workers"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning an error instead of calling os.Exit directly ensures 'defer' statements run and
// keeps the initialization logic testable apart from the process entry point.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Engine wiring
	stats := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(log, stats, config.ReceiverBufferSize)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	engine := runtime.NewEngine(log, sup, registry, stats,
		config.DatabaseURL, config.BufferSize, config.MetricInterval)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start the Engine
	engine.Start(ctx)

	// 5. HTTP Server Setup
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	server := api.NewServer(log, registry, tokens, stats)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Router()}

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	// Release open streams first so http.Server.Shutdown does not wait on them.
	server.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	engine.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
