// Package cli implements the projects command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/projector/internal/client"
	"github.com/rpggio/projector/internal/config"
	"github.com/rpggio/projector/internal/workspace"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

type rootOptions struct {
	url     string
	timeout string
	json    bool
	quiet   bool
	verbose bool
}

// NewRootCmd builds the projects command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "projects",
		Short:         "Manage projects on a projector backend",
		Long:          `projects lists, creates, renames and deletes projects, and assigns activity ids to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "Backend URL (default from PROJECTOR_CLIENT_URL or config)")
	cmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "", "Per-call timeout, e.g. 5s")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Minimal output (ids only)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log backend calls to stderr")

	cmd.AddCommand(listCmd(opts))
	cmd.AddCommand(createCmd(opts))
	cmd.AddCommand(renameCmd(opts))
	cmd.AddCommand(setActivitiesCmd(opts))
	cmd.AddCommand(deleteCmd(opts))
	cmd.AddCommand(shellCmd(opts))

	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		jsonOutput, _ := cmd.PersistentFlags().GetBool("json")
		formatter := &OutputFormatter{Out: stderr, JSON: jsonOutput}
		if jsonOutput {
			formatter.Out = stdout
		}
		_ = formatter.Error(errorCode(err), err.Error())
		return ExitCode(err)
	}
	return ExitSuccess
}

func (o *rootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Out: cmd.OutOrStdout(), JSON: o.json, Quiet: o.quiet}
}

// openWorkspace connects a fresh workspace to the configured backend.
func (o *rootOptions) openWorkspace(cmd *cobra.Command) (*workspace.Workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.url != "" {
		cfg.Client.URL = o.url
	}
	if o.timeout != "" {
		timeout, err := time.ParseDuration(o.timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: --timeout: %v", errUsage, err)
		}
		cfg.Client.Timeout = timeout
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c, err := client.New(client.Config{
		BaseURL:           cfg.Client.URL,
		Timeout:           cfg.Client.Timeout,
		RequestsPerSecond: cfg.Client.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	return workspace.New(c, workspace.Options{Logger: logger}), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}
	return id, nil
}

func parseIDs(values []string) ([]int64, error) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}
