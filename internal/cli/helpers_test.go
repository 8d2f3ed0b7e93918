package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/testutil"
)

// execute runs the root command with a pinned trace ID and returns its
// stdout, stderr and error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommandWithOptions(&RootOptions{TraceIDs: testutil.NewFixedTraceIDs("")})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// hrSchemaDir writes the shared HR schema into a CUE package directory.
func hrSchemaDir(t *testing.T) string {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "testutil", "hr.cue"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hr.cue"), append([]byte("package hr\n\n"), src...), 0644))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const activeTree = `
class: Employee
operation:
  binary: {attribute: status, operator: eq, literal: "ACTIVE"}
`

const badLiteralTree = `
class: Employee
operation:
  binary: {attribute: name, operator: startsWith, literal: 3}
`
