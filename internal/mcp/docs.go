package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `projector stores projects: named, ordered groups of activity ids.

Core concepts:
- Project: backend-assigned id, a display name, and an ordered list of activity ids.
- Activity: an externally defined unit of work, referenced only by id. An activity belongs to at most one project.

Default workflow:
1) Browse: list_projects returns 50 projects per page; pass offset to page further.
2) Create: create_project with a name and optional activities; the backend assigns the id.
3) Edit: update_project replaces both the name and the full activity list.
4) Delete: delete_project removes a project; its activities become unassigned.

Errors are reported as CODE: message, where CODE is NOT_FOUND, VALIDATION_FAILED, CONFLICT or INTERNAL.

Docs:
- projector://docs/model
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "projector://docs/model",
		Name:        "docs_model",
		Title:       "projector data model",
		Description: "Project and activity rules enforced by the server.",
		Content: `# projector: Data Model

## Project

| field      | type    | notes                                  |
|------------|---------|----------------------------------------|
| id         | integer | assigned by the server, never reused   |
| name       | string  | required, 1-100 characters after trim  |
| activities | int[]   | ordered, positive, no duplicates       |

## Rules

- An activity id may appear in only one project. Adding an activity that another
  project already owns fails with CONFLICT; remove it from the owner first.
- update_project is a full replacement. Omitting activities clears the list.
- Listing is paged 50 at a time in ascending id order.
- Deleting an unknown id fails with NOT_FOUND. Clients that only need the project
  gone can treat NOT_FOUND as success.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
