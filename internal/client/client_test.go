package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/client"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/testserver"
	"github.com/rpggio/projector/internal/transport"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, url string) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{BaseURL: url, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t)
	c := newClient(t, ts.URL())

	created, err := c.Create(ctx, project.Draft{Name: "Research", Activities: []int64{10, 11}})
	require.NoError(t, err)
	require.Positive(t, created.ID)
	require.Equal(t, []int64{10, 11}, created.Activities)

	created.Name = "Research 2"
	created.Activities = []int64{11}
	require.NoError(t, c.Update(ctx, created))

	projects, err := c.Fetch(ctx, 0)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Research 2", projects[0].Name)
	require.Equal(t, []int64{11}, projects[0].Activities)

	require.NoError(t, c.Delete(ctx, created.ID))

	projects, err = c.Fetch(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, projects)
	require.NotNil(t, projects)
}

func TestClient_FetchPages(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t)
	c := newClient(t, ts.URL())

	for i := 0; i < project.PageSize+3; i++ {
		_, err := c.Create(ctx, project.Draft{Name: "P"})
		require.NoError(t, err)
	}

	first, err := c.Fetch(ctx, 0)
	require.NoError(t, err)
	require.Len(t, first, project.PageSize)

	second, err := c.Fetch(ctx, project.PageSize)
	require.NoError(t, err)
	require.Len(t, second, 3)
	require.Greater(t, second[0].ID, first[len(first)-1].ID)
}

func TestClient_ErrorKinds(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t)
	c := newClient(t, ts.URL())

	err := c.Delete(ctx, 404)
	require.ErrorIs(t, err, client.ErrNotFound)
	require.Equal(t, client.NotFound, client.KindOf(err))

	err = c.Update(ctx, project.Project{ID: 404, Name: "Gone"})
	require.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.Create(ctx, project.Draft{Name: "A", Activities: []int64{5, 5}})
	require.ErrorIs(t, err, client.ErrValidationFailed)

	_, err = c.Create(ctx, project.Draft{Name: "A", Activities: []int64{7}})
	require.NoError(t, err)
	_, err = c.Create(ctx, project.Draft{Name: "B", Activities: []int64{7}})
	require.ErrorIs(t, err, client.ErrValidationFailed)

	var se *client.ServiceError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "create", se.Op)
	var rpcErr *transport.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, api.CodeConflict, rpcErr.Data.Code)
}

func TestClient_LocalValidationSkipsBackend(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t)
	c := newClient(t, ts.URL())

	_, err := c.Create(ctx, project.Draft{Name: "   "})
	require.ErrorIs(t, err, client.ErrValidationFailed)

	_, err = c.Fetch(ctx, -1)
	require.ErrorIs(t, err, client.ErrValidationFailed)

	require.Empty(t, ts.Calls.Calls())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	c, err := client.New(client.Config{BaseURL: slow.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 0)
	require.ErrorIs(t, err, client.ErrTimeout)

	c = newClient(t, slow.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.Delete(ctx, 1)
	require.ErrorIs(t, err, client.ErrTimeout)
}

func TestClient_UnexpectedResponses(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	c := newClient(t, broken.URL)
	_, err := c.Fetch(context.Background(), 0)
	require.ErrorIs(t, err, client.ErrUnknown)
}

func TestClient_SendsRequestID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(transport.RequestIDHeader)
		transport.WriteResult(w, 1, []project.Project{})
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	_, err := c.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, gotID)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	ts := testserver.New(t)
	c, err := client.New(client.Config{BaseURL: ts.URL(), RequestsPerSecond: 0.001})
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, 0)
	require.Error(t, err)
	require.IsType(t, &client.ServiceError{}, err)
}

func TestServiceError_Is(t *testing.T) {
	err := &client.ServiceError{Op: "update", Kind: client.NotFound, Err: errors.New("gone")}
	require.ErrorIs(t, err, client.ErrNotFound)
	require.NotErrorIs(t, err, client.ErrTimeout)
	require.Equal(t, "update: not found: gone", err.Error())
	require.Equal(t, client.Unknown, client.KindOf(errors.New("plain")))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := client.New(client.Config{})
	require.Error(t, err)
}
