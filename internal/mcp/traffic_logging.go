package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload caps how much of a params or result body reaches the log.
const maxLoggedPayload = 2048

// trafficLoggingMiddleware logs each MCP message at debug level. Tool calls
// are tagged with the tool name; responses carry the handling time.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			params := safeParams(req)
			attrs := []any{"direction", direction, "method", method, "session_id", safeSessionID(req)}
			if tool := toolName(params); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp request", append(attrs, "params", formatPayload(params))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs = append(attrs, "elapsed", time.Since(start))
			if err != nil {
				logger.Debug("mcp response", append(attrs, "error", err)...)
			} else {
				logger.Debug("mcp response", append(attrs, "result", formatPayload(result))...)
			}
			return result, err
		}
	}
}

func toolName(params any) string {
	if p, ok := params.(*sdkmcp.CallToolParamsRaw); ok && p != nil {
		return p.Name
	}
	return ""
}

// Requests may wrap nil sessions or params; accessors recover rather than panic.
func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return string(data[:maxLoggedPayload]) + fmt.Sprintf("...(%d bytes)", len(data))
	}
	return string(data)
}
