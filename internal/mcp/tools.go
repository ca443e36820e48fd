package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/transport"
)

type projectView struct {
	ID         int64   `json:"id" jsonschema:"Backend-assigned project id"`
	Name       string  `json:"name" jsonschema:"Project display name"`
	Activities []int64 `json:"activities" jsonschema:"Ordered activity ids referenced by the project"`
}

type listProjectsInput struct {
	Offset int `json:"offset,omitempty" jsonschema:"Number of projects to skip"`
	Limit  int `json:"limit,omitempty" jsonschema:"Maximum projects to return (default and maximum: 50)"`
}

type listProjectsOutput struct {
	Projects []projectView `json:"projects" jsonschema:"Projects in backend order"`
	Count    int           `json:"count" jsonschema:"Number of projects returned"`
}

type createProjectInput struct {
	Name       string  `json:"name" jsonschema:"Project display name"`
	Activities []int64 `json:"activities,omitempty" jsonschema:"Activity ids to reference; each may belong to only one project"`
}

type updateProjectInput struct {
	ID         int64   `json:"id" jsonschema:"Project id"`
	Name       string  `json:"name" jsonschema:"New display name"`
	Activities []int64 `json:"activities,omitempty" jsonschema:"Complete replacement activity list"`
}

type deleteProjectInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"Project id to delete"`
}

type ackOutput struct {
	OK bool `json:"ok" jsonschema:"True when the operation was applied"`
}

type toolset struct {
	server   *sdkmcp.Server
	projects ProjectService
	observer transport.CallObserver
}

func registerTools(server *sdkmcp.Server, cfg Config) {
	ts := &toolset{server: server, projects: cfg.Projects, observer: cfg.Observer}

	addTool(ts, &sdkmcp.Tool{
		Name:        api.MethodListProjects,
		Description: "List projects, 50 per page, starting at offset",
	}, func(ctx context.Context, in listProjectsInput) (listProjectsOutput, string, error) {
		projects, err := ts.projects.List(ctx, project.ListOptions{Offset: in.Offset, Limit: in.Limit})
		if err != nil {
			return listProjectsOutput{}, "", err
		}
		out := listProjectsOutput{Projects: make([]projectView, 0, len(projects)), Count: len(projects)}
		for _, p := range projects {
			out.Projects = append(out.Projects, toView(p))
		}
		return out, fmt.Sprintf("%d projects", out.Count), nil
	})

	addTool(ts, &sdkmcp.Tool{
		Name:        api.MethodCreateProject,
		Description: "Create a project; the backend assigns its id",
	}, func(ctx context.Context, in createProjectInput) (projectView, string, error) {
		proj, err := ts.projects.Create(ctx, project.Draft{Name: in.Name, Activities: in.Activities})
		if err != nil {
			return projectView{}, "", err
		}
		return toView(*proj), fmt.Sprintf("Project created: %d", proj.ID), nil
	})

	addTool(ts, &sdkmcp.Tool{
		Name:        api.MethodUpdateProject,
		Description: "Replace the name and activity list of a project",
	}, func(ctx context.Context, in updateProjectInput) (ackOutput, string, error) {
		err := ts.projects.Update(ctx, project.Project{ID: in.ID, Name: in.Name, Activities: in.Activities})
		if err != nil {
			return ackOutput{}, "", err
		}
		return ackOutput{OK: true}, fmt.Sprintf("Project updated: %d", in.ID), nil
	})

	addTool(ts, &sdkmcp.Tool{
		Name:        api.MethodDeleteProject,
		Description: "Delete a project; deleting an unknown id reports NOT_FOUND",
	}, func(ctx context.Context, in deleteProjectInput) (ackOutput, string, error) {
		if err := ts.projects.Delete(ctx, in.ProjectID); err != nil {
			return ackOutput{}, "", err
		}
		return ackOutput{OK: true}, fmt.Sprintf("Project deleted: %d", in.ProjectID), nil
	})
}

// addTool registers fn as a typed tool and records its outcome.
func addTool[In, Out any](ts *toolset, tool *sdkmcp.Tool, fn func(context.Context, In) (Out, string, error)) {
	sdkmcp.AddTool(ts.server, tool, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		start := time.Now()
		out, summary, err := fn(ctx, in)
		if ts.observer != nil {
			ts.observer.ObserveCall(tool.Name, outcome(err), time.Since(start))
		}
		if err != nil {
			var zero Out
			return nil, zero, toolError(err)
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: summary}},
		}, out, nil
	})
}

func toView(p project.Project) projectView {
	activities := p.Activities
	if activities == nil {
		activities = []int64{}
	}
	return projectView{ID: p.ID, Name: p.Name, Activities: activities}
}

func toolError(err error) error {
	if apiErr := api.MapError(err); apiErr != nil {
		if apiErr.RecoveryHint != "" {
			return fmt.Errorf("%s: %s (%s)", apiErr.Code, apiErr.Message, apiErr.RecoveryHint)
		}
		return errors.New(apiErr.Error())
	}
	return fmt.Errorf("%s: %w", api.CodeInternal, err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if apiErr := api.MapError(err); apiErr != nil {
		return strings.ToLower(apiErr.Code)
	}
	return "internal"
}
