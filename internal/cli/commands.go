package cli

import (
	"fmt"
	"strings"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/workspace"
	"github.com/spf13/cobra"
)

func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.Store.LoadAll(cmd.Context()); err != nil {
				return err
			}
			return opts.formatter(cmd).Projects(ws.Store.Projects())
		},
	}
}

func createCmd(opts *rootOptions) *cobra.Command {
	var activities []string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Long: `Create a project, optionally referencing activities.

Examples:
  projects create "Research"
  projects create "Research" --activities 10,11
  PROJECT_ID=$(projects create "Research" --quiet)
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(activities)
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			// Load first so activity ownership is checked against every project.
			if len(ids) > 0 {
				if err := ws.Store.LoadAll(cmd.Context()); err != nil {
					return err
				}
			}
			created, err := ws.Store.Add(cmd.Context(), project.Draft{Name: args[0], Activities: ids})
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Project(created)
		},
	}
	cmd.Flags().StringSliceVar(&activities, "activities", nil, "Activity ids, comma separated")
	return cmd
}

func renameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.Store.LoadAll(cmd.Context()); err != nil {
				return err
			}
			if err := ws.Session.OpenForEdit(id); err != nil {
				return err
			}
			renamed, err := ws.Session.Submit(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return opts.formatter(cmd).Project(renamed)
		},
	}
}

func setActivitiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-activities ID [ACTIVITY_ID...]",
		Short: "Replace the activity list of a project",
		Long: `Replace the activity list of a project. With no activity ids the list is cleared.

Examples:
  projects set-activities 1 10 11
  projects set-activities 1 10,11
  projects set-activities 1
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.Store.LoadAll(cmd.Context()); err != nil {
				return err
			}
			proj, ok := ws.Store.Project(id)
			if !ok {
				return &workspace.SelectionError{Kind: workspace.SelectionNotFound, ID: id}
			}
			proj.Activities = ids
			if err := ws.Store.Update(cmd.Context(), proj); err != nil {
				return err
			}
			updated, _ := ws.Store.Project(id)
			return opts.formatter(cmd).Project(updated)
		},
	}
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project",
		Long:  "Delete a project. Deleting a project that no longer exists succeeds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.Store.Remove(cmd.Context(), id); err != nil {
				return err
			}
			return opts.formatter(cmd).Done(id, fmt.Sprintf("Project %d deleted", id))
		},
	}
}

func shellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with selection and edit commands",
		Long: `Start an interactive session. Type "help" for commands.
` + strings.TrimRight(shellHelp, "\n"),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := opts.openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			sh := &shell{ws: ws, in: cmd.InOrStdin(), out: cmd.OutOrStdout(), format: opts.formatter(cmd)}
			return sh.run(cmd.Context())
		},
	}
}
