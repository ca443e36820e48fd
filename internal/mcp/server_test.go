package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method  string
	outcome string
}

type observerFunc func(method, outcome string, elapsed time.Duration)

func (f observerFunc) ObserveCall(method, outcome string, elapsed time.Duration) {
	f(method, outcome, elapsed)
}

func connect(t *testing.T, observer observerFunc) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	cfg := Config{Projects: project.NewService(sqlite.NewProjectRepository(db), nil)}
	if observer != nil {
		cfg.Observer = observer
	}
	server := NewServer(cfg)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func toolText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, nil)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"list_projects", "create_project", "update_project", "delete_project"}, names)
}

func TestServer_ProjectTools(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	session := connect(t, func(method, outcome string, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, recordedCall{method, outcome})
	})

	var created projectView
	res := callTool(t, session, "create_project", map[string]any{"name": "Research", "activities": []int64{10, 11}}, &created)
	require.False(t, res.IsError, toolText(res))
	require.Positive(t, created.ID)
	require.Equal(t, []int64{10, 11}, created.Activities)

	var ack ackOutput
	res = callTool(t, session, "update_project", map[string]any{"id": created.ID, "name": "Research 2", "activities": []int64{11}}, &ack)
	require.False(t, res.IsError, toolText(res))
	require.True(t, ack.OK)

	var listed listProjectsOutput
	res = callTool(t, session, "list_projects", map[string]any{}, &listed)
	require.False(t, res.IsError, toolText(res))
	require.Equal(t, 1, listed.Count)
	require.Equal(t, "Research 2", listed.Projects[0].Name)

	res = callTool(t, session, "delete_project", map[string]any{"project_id": created.ID}, &ack)
	require.False(t, res.IsError, toolText(res))

	res = callTool(t, session, "delete_project", map[string]any{"project_id": created.ID}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "NOT_FOUND")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []recordedCall{
		{"create_project", "ok"},
		{"update_project", "ok"},
		{"list_projects", "ok"},
		{"delete_project", "ok"},
		{"delete_project", "not_found"},
	}, calls)
}

func TestServer_ToolErrors(t *testing.T) {
	session := connect(t, nil)

	res := callTool(t, session, "create_project", map[string]any{"name": "  "}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "VALIDATION_FAILED")

	res = callTool(t, session, "create_project", map[string]any{"name": "A", "activities": []int64{7}}, nil)
	require.False(t, res.IsError)
	res = callTool(t, session, "create_project", map[string]any{"name": "B", "activities": []int64{7}}, nil)
	require.True(t, res.IsError)
	require.Contains(t, toolText(res), "CONFLICT")
}

func TestServer_ReadsModelDoc(t *testing.T) {
	session := connect(t, nil)

	res, err := session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "projector://docs/model"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "An activity id may appear in only one project")
}

func TestTrafficLogging_TagsToolCalls(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	server := NewServer(Config{Projects: project.NewService(sqlite.NewProjectRepository(db), nil), Logger: logger})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ctx := context.Background()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })
	session, err := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	callTool(t, session, "list_projects", map[string]any{}, nil)

	logs := buf.String()
	require.Contains(t, logs, "tool=list_projects")
	require.Contains(t, logs, "msg=\"mcp response\"")
	require.Contains(t, logs, "elapsed=")
}

func TestFormatPayload_Truncates(t *testing.T) {
	long := strings.Repeat("x", maxLoggedPayload*2)
	out := formatPayload(map[string]string{"v": long})
	require.True(t, strings.HasSuffix(out, fmt.Sprintf("...(%d bytes)", len(long)+8)))
	require.Equal(t, "<nil>", formatPayload(nil))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
