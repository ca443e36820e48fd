// Package testserver runs the full backend stack on an httptest server.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/sqlite"
	"github.com/rpggio/projector/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Projects *project.Service
	Calls    *CallRecorder
}

// New starts a backend backed by an in-memory database. It is closed on test cleanup.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	projectSvc := project.NewService(sqlite.NewProjectRepository(db), nil)
	calls := &CallRecorder{}

	handler := api.NewHandler(projectSvc)
	server := httptest.NewServer(transport.NewServer(handler, transport.Options{Observer: calls}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Projects: projectSvc,
		Calls:    calls,
	}
}

// URL returns the server root.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}
