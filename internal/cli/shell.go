package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/projector/internal/workspace"
)

const shellHelp = `Commands:
  load                 reload all projects
  ls                   list projects; * marks the selection
  select ID            select a project
  unselect             clear the selection
  activity ID          select an activity of the selected project
  unactivity           clear the activity selection
  state                show selection and edit session
  new                  open an edit session for a new project
  edit ID              open an edit session for a project
  submit NAME          save the edit session
  cancel               close the edit session
  delete ID            delete a project
  quit                 leave the shell
`

type shell struct {
	ws     *workspace.Workspace
	in     io.Reader
	out    io.Writer
	format *OutputFormatter
}

func (sh *shell) run(ctx context.Context) error {
	if err := sh.ws.Store.LoadAll(ctx); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%d projects loaded. Type \"help\" for commands.\n", sh.ws.Store.Len())

	scanner := bufio.NewScanner(sh.in)
	for {
		fmt.Fprint(sh.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := sh.exec(ctx, cmd, arg); err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (sh *shell) exec(ctx context.Context, cmd, arg string) error {
	ws := sh.ws
	switch cmd {
	case "help":
		fmt.Fprint(sh.out, shellHelp)
	case "load":
		if err := ws.Store.LoadAll(ctx); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%d projects loaded\n", ws.Store.Len())
	case "ls":
		sh.list()
	case "select":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		return ws.Selection.SelectProject(id)
	case "unselect":
		return ws.Selection.UnselectProject()
	case "activity":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		return ws.Selection.SelectActivity(id)
	case "unactivity":
		return ws.Selection.UnselectActivity()
	case "state":
		sh.state()
	case "new":
		return ws.Session.OpenForCreate()
	case "edit":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		return ws.Session.OpenForEdit(id)
	case "submit":
		p, err := ws.Session.Submit(ctx, arg)
		if err != nil {
			return err
		}
		return sh.format.Project(p)
	case "cancel":
		ws.Session.Close()
	case "delete":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		if err := ws.Store.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Project %d deleted\n", id)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func (sh *shell) list() {
	snap := sh.ws.Store.Snapshot()
	if len(snap.Projects) == 0 {
		fmt.Fprintln(sh.out, "No projects.")
		return
	}
	for _, p := range snap.Projects {
		marker := " "
		if snap.Selection.ProjectID != nil && *snap.Selection.ProjectID == p.ID {
			marker = "*"
		}
		fmt.Fprintf(sh.out, "%s %s\n", marker, formatProject(p))
	}
}

func (sh *shell) state() {
	fmt.Fprintf(sh.out, "selection: %s\n", sh.ws.Selection.State())
	session := sh.ws.Session.State()
	switch {
	case !session.IsOpen:
		fmt.Fprintln(sh.out, "session: closed")
	case session.TargetProjectID == nil:
		fmt.Fprintln(sh.out, "session: creating")
	default:
		fmt.Fprintf(sh.out, "session: editing %d\n", *session.TargetProjectID)
	}
}
