package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/testserver"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, ts *testserver.TestServer, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("PROJECTOR_CONFIG_PATH", "")
	var stdout, stderr bytes.Buffer
	args = append([]string{"--url", ts.URL()}, args...)
	code := Execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestCLI_CreateListRenameDelete(t *testing.T) {
	ts := testserver.New(t)

	out, _, code := run(t, ts, "", "create", "Research", "--activities", "10,11", "--quiet")
	require.Equal(t, ExitSuccess, code)
	require.Equal(t, "1\n", out)

	out, _, code = run(t, ts, "", "list")
	require.Equal(t, ExitSuccess, code)
	require.Equal(t, "1\tResearch\t(2 activities)\t[10, 11]\n", out)

	out, _, code = run(t, ts, "", "rename", "1", "Field work")
	require.Equal(t, ExitSuccess, code)
	require.Contains(t, out, "Field work")

	out, _, code = run(t, ts, "", "set-activities", "1", "12")
	require.Equal(t, ExitSuccess, code)
	require.Equal(t, "1\tField work\t(1 activity)\t[12]\n", out)

	out, _, code = run(t, ts, "", "list", "--json")
	require.Equal(t, ExitSuccess, code)
	var listed struct {
		Success bool              `json:"success"`
		Data    []project.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.True(t, listed.Success)
	require.Equal(t, []int64{12}, listed.Data[0].Activities)

	out, _, code = run(t, ts, "", "delete", "1")
	require.Equal(t, ExitSuccess, code)
	require.Equal(t, "Project 1 deleted\n", out)

	// Deleting again is not an error.
	_, _, code = run(t, ts, "", "delete", "1")
	require.Equal(t, ExitSuccess, code)

	out, _, _ = run(t, ts, "", "list")
	require.Equal(t, "No projects.\n", out)
}

func TestCLI_Errors(t *testing.T) {
	ts := testserver.New(t)

	_, stderr, code := run(t, ts, "", "rename", "9", "Nope")
	require.Equal(t, ExitNotFound, code)
	require.Contains(t, stderr, "Error:")

	_, _, code = run(t, ts, "", "delete", "abc")
	require.Equal(t, ExitUsage, code)

	_, _, code = run(t, ts, "", "create", "A", "--activities", "5")
	require.Equal(t, ExitSuccess, code)
	out, _, code := run(t, ts, "", "create", "B", "--activities", "5", "--json")
	require.Equal(t, ExitValidation, code)
	require.Contains(t, out, `"VALIDATION_FAILED"`)
	require.Equal(t, 1, ts.Calls.Count("create_project"), "ownership conflict must be caught before calling the backend")
}

func TestCLI_Shell(t *testing.T) {
	ts := testserver.New(t)
	_, _, code := run(t, ts, "", "create", "A", "--activities", "10,11")
	require.Equal(t, ExitSuccess, code)
	_, _, code = run(t, ts, "", "create", "B")
	require.Equal(t, ExitSuccess, code)

	script := strings.Join([]string{
		"select 2",
		"activity 10",
		"state",
		"select 1",
		"activity 11",
		"state",
		"edit 1",
		"delete 1",
		"submit A renamed",
		"state",
		"new",
		"submit C",
		"select 2",
		"ls",
		"bogus",
		"quit",
	}, "\n")

	out, _, code := run(t, ts, script, "shell")
	require.Equal(t, ExitSuccess, code)
	require.Contains(t, out, "2 projects loaded.")
	require.Contains(t, out, "error: invalid selection: 10")
	require.Contains(t, out, "selection: project(2)\n")
	require.Contains(t, out, "selection: project(1)/activity(11)\n")
	require.Contains(t, out, "Project 1 deleted")
	require.Contains(t, out, "error: project not found: 1")
	require.Contains(t, out, "selection: none\nsession: closed\n")
	require.Contains(t, out, "3\tC\t(0 activities)")
	require.Contains(t, out, "* 2\tB")
	require.Contains(t, out, `error: usage: unknown command "bogus"`)
}
