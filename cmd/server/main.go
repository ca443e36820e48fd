package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/config"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/mcp"
	"github.com/rpggio/projector/internal/metrics"
	"github.com/rpggio/projector/internal/sqlite"
	"github.com/rpggio/projector/internal/transport"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	projectSvc := project.NewService(sqlite.NewProjectRepository(db), logger)
	m := metrics.New()

	mcpServer := mcp.NewServer(mcp.Config{
		Projects: projectSvc,
		Logger:   logger,
		Observer: m.ForSurface("mcp"),
		Version:  version,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	router := newRouter(logger, projectSvc, mcpServer, m)
	runHTTPMode(logger, router, cfg.Server.Host, cfg.Server.Port)
}

// newRouter serves JSON-RPC at /rpc, MCP at /mcp, plus /health and /metrics.
func newRouter(logger *slog.Logger, projects *project.Service, mcpServer *sdkmcp.Server, m *metrics.Metrics) *chi.Mux {
	router := transport.NewServer(api.NewHandler(projects), transport.Options{
		Logger:     logger,
		Observer:   m.ForSurface("rpc"),
		Middleware: []func(http.Handler) http.Handler{middleware.Recoverer},
	})

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)
	router.Handle("/metrics", m.Handler())

	return router
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
