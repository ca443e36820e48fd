package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/projector/internal/domain/project"
)

// OutputFormatter writes results as JSON, bare ids (quiet) or human-readable text.
type OutputFormatter struct {
	Out   io.Writer
	JSON  bool
	Quiet bool
}

// Projects prints a project listing.
func (f *OutputFormatter) Projects(projects []project.Project) error {
	if f.JSON {
		return f.encode(map[string]any{"success": true, "data": projects})
	}
	if f.Quiet {
		for _, p := range projects {
			fmt.Fprintln(f.Out, p.ID)
		}
		return nil
	}
	if len(projects) == 0 {
		fmt.Fprintln(f.Out, "No projects.")
		return nil
	}
	for _, p := range projects {
		fmt.Fprintln(f.Out, formatProject(p))
	}
	return nil
}

// Project prints a single project.
func (f *OutputFormatter) Project(p project.Project) error {
	if f.JSON {
		return f.encode(map[string]any{"success": true, "data": p})
	}
	if f.Quiet {
		fmt.Fprintln(f.Out, p.ID)
		return nil
	}
	fmt.Fprintln(f.Out, formatProject(p))
	return nil
}

// Done prints a confirmation message.
func (f *OutputFormatter) Done(id int64, message string) error {
	if f.JSON {
		return f.encode(map[string]any{"success": true, "data": map[string]any{"id": id}})
	}
	if f.Quiet {
		fmt.Fprintln(f.Out, id)
		return nil
	}
	fmt.Fprintln(f.Out, message)
	return nil
}

// Error prints a failure with its code.
func (f *OutputFormatter) Error(code, message string) error {
	if f.JSON {
		return f.encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": code, "message": message},
		})
	}
	fmt.Fprintf(f.Out, "Error: %s\n", message)
	return nil
}

func (f *OutputFormatter) encode(v any) error {
	return json.NewEncoder(f.Out).Encode(v)
}

func formatProject(p project.Project) string {
	label := "activities"
	if len(p.Activities) == 1 {
		label = "activity"
	}
	line := fmt.Sprintf("%d\t%s\t(%d %s)", p.ID, p.Name, len(p.Activities), label)
	if len(p.Activities) > 0 {
		ids := make([]string, len(p.Activities))
		for i, id := range p.Activities {
			ids[i] = fmt.Sprint(id)
		}
		line += "\t[" + strings.Join(ids, ", ") + "]"
	}
	return line
}
