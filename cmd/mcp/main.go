// Command mcp serves the football agent tools to MCP clients. It shares the
// API's storage settings and adds a few of its own.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/riskibarqy/dotmatchlens/internal/app"
	"github.com/riskibarqy/dotmatchlens/internal/config"
	"github.com/riskibarqy/dotmatchlens/internal/interfaces/mcpserver"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
)

type mcpConfig struct {
	Transport       string        `env:"MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr        string        `env:"MCP_HTTP_ADDR" envDefault:":8090"`
	ShutdownTimeout time.Duration `env:"MCP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	var mcpCfg mcpConfig
	if err := env.Parse(&mcpCfg); err != nil {
		panic(err)
	}

	// stdout carries the protocol on the stdio transport.
	logger := logging.NewJSONWriter(cfg.LogLevel, os.Stderr)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	toolset, err := app.OpenToolset(ctx, cfg, logger)
	if err != nil {
		logger.Error("open toolset", "error", err)
		os.Exit(1)
	}
	defer toolset.Close()

	srv, err := mcpserver.New(toolset.Tools, cfg.ServiceVersion, logger)
	if err != nil {
		logger.Error("build mcp server", "error", err)
		os.Exit(1)
	}

	switch mcpCfg.Transport {
	case transportHTTP:
		err = serveHTTP(ctx, srv, mcpCfg, logger)
	case transportStdio:
		logger.Info("mcp server starting", "transport", transportStdio)
		err = srv.Run(ctx)
	default:
		logger.Error("unknown MCP_TRANSPORT", "transport", mcpCfg.Transport)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("mcp server stopped with error", "error", err)
		os.Exit(1)
	}
}

func serveHTTP(ctx context.Context, srv *mcpserver.Server, cfg mcpConfig, logger *logging.Logger) error {
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server starting", "transport", transportHTTP, "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
