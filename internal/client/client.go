// Package client talks to the projector backend over JSON-RPC.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/transport"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8080. "/rpc" is appended.
	BaseURL string
	// Timeout bounds each call. Zero means 10s.
	Timeout time.Duration
	// RequestsPerSecond enables client-side rate limiting when > 0.
	RequestsPerSecond float64
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues list, create, update and delete calls against one backend.
// It holds no project state and is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	nextID     atomic.Int64
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base URL required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/rpc",
		httpClient: httpClient,
		logger:     logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// Fetch returns up to project.PageSize projects starting at offset.
func (c *Client) Fetch(ctx context.Context, offset int) ([]project.Project, error) {
	const op = "fetch"
	if offset < 0 {
		return nil, newError(op, ValidationFailed, fmt.Errorf("offset must be non-negative, got %d", offset))
	}

	var projects []project.Project
	params := api.ListProjectsParams{Offset: offset, Limit: project.PageSize}
	if err := c.call(ctx, op, api.MethodListProjects, params, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return projects, nil
}

// Create persists draft and returns the project with its backend-assigned id.
func (c *Client) Create(ctx context.Context, draft project.Draft) (project.Project, error) {
	const op = "create"
	if strings.TrimSpace(draft.Name) == "" {
		return project.Project{}, newError(op, ValidationFailed, errors.New("name is required"))
	}

	var created project.Project
	params := api.CreateProjectParams{Name: draft.Name, Activities: nonNil(draft.Activities)}
	if err := c.call(ctx, op, api.MethodCreateProject, params, &created); err != nil {
		return project.Project{}, err
	}
	if created.ID <= 0 {
		return project.Project{}, newError(op, Unknown, errors.New("backend returned no project id"))
	}
	return created, nil
}

// Update replaces the name and activities of an existing project.
func (c *Client) Update(ctx context.Context, proj project.Project) error {
	const op = "update"
	if strings.TrimSpace(proj.Name) == "" {
		return newError(op, ValidationFailed, errors.New("name is required"))
	}

	params := api.UpdateProjectParams{ID: proj.ID, Name: proj.Name, Activities: nonNil(proj.Activities)}
	return c.call(ctx, op, api.MethodUpdateProject, params, &api.AckResponse{})
}

// Delete removes a project. An unknown id fails with Kind NotFound.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.call(ctx, "delete", api.MethodDeleteProject, api.DeleteProjectParams{ProjectID: id}, &api.AckResponse{})
}

func (c *Client) call(ctx context.Context, op, method string, params, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return classify(op, fmt.Errorf("rate limiter: %w", err))
		}
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return newError(op, Unknown, fmt.Errorf("marshal params: %w", err))
	}
	body, err := json.Marshal(transport.Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  rawParams,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return newError(op, Unknown, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return newError(op, Unknown, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(transport.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("rpc request failed", "method", method, "request_id", requestID, "error", err)
		return classify(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return newError(op, Unknown, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var rpcResp transport.RawResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return classify(op, fmt.Errorf("decode response: %w", err))
	}
	c.logger.Debug("rpc call", "method", method, "request_id", requestID, "elapsed", time.Since(start), "failed", rpcResp.Error != nil)

	if rpcResp.Error != nil {
		return classify(op, rpcResp.Error)
	}
	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return newError(op, Unknown, fmt.Errorf("decode result: %w", err))
		}
	}
	return nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
