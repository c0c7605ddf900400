package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validDoc = `
name: flag
type: integer
attributes:
  size: 1
  format: unsigned
`

func TestRunValidateReportsCompiledCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "definitions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "1 definitions compiled")
}

func TestRunValidateReportsReaderError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attributes:\n  size: 4\n"), 0o644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", path})

	require.Error(t, cmd.Execute())
}

func TestRunValidateRequiresExactlyOnePath(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"validate"})

	require.Error(t, cmd.Execute())
}
