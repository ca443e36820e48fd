package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/transport"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Create(ctx context.Context, draft project.Draft) (*project.Project, error)
	Update(ctx context.Context, proj project.Project) error
	Delete(ctx context.Context, id int64) error
}

// Config contains server configuration.
type Config struct {
	Projects ProjectService
	Logger   *slog.Logger
	// Observer receives one call per tool invocation; optional.
	Observer transport.CallObserver
	Version  string
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "projector",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
