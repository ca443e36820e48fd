package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/transport"
)

// ProjectService defines project operations needed by the API.
type ProjectService interface {
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Create(ctx context.Context, draft project.Draft) (*project.Project, error)
	Update(ctx context.Context, proj project.Project) error
	Delete(ctx context.Context, id int64) error
}

// Handler dispatches JSON-RPC methods to the project service.
type Handler struct {
	projects ProjectService
}

// NewHandler creates a new API handler.
func NewHandler(projects ProjectService) *Handler {
	return &Handler{projects: projects}
}

// Handle dispatches a request to the project service.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodListProjects:
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		projects, err := h.projects.List(ctx, project.ListOptions{Offset: req.Offset, Limit: req.Limit})
		if err != nil {
			return nil, mapError(err)
		}
		return projects, nil
	case MethodCreateProject:
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Create(ctx, project.Draft{Name: req.Name, Activities: req.Activities})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case MethodUpdateProject:
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		err := h.projects.Update(ctx, project.Project{ID: req.ID, Name: req.Name, Activities: req.Activities})
		if err != nil {
			return nil, mapError(err)
		}
		return AckResponse{OK: true}, nil
	case MethodDeleteProject:
		var req DeleteProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.projects.Delete(ctx, req.ProjectID); err != nil {
			return nil, mapError(err)
		}
		return AckResponse{OK: true}, nil
	default:
		return nil, fmt.Errorf("%w: %s", transport.ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: CodeValidationFailed, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
