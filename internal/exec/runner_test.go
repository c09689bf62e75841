package exec

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_RunEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := NewRunner()

	out, err := r.RunEnv(context.Background(), t.TempDir(), []string{"SPECLINT_PROBE=on"}, "sh", "-c", "echo $SPECLINT_PROBE; echo err >&2")
	require.NoError(t, err)
	assert.Contains(t, string(out), "on")
	assert.Contains(t, string(out), "err")
}

func TestExecRunner_RunWorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()

	out, err := NewRunner().Run(context.Background(), dir, "pwd")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), strings.TrimPrefix(dir, "/private")))
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	out, err := NewRunner().Run(context.Background(), "", "sh", "-c", "echo failing; exit 3")
	require.Error(t, err)
	assert.Contains(t, string(out), "failing")
}

func TestExecRunner_LookPath(t *testing.T) {
	_, err := NewRunner().LookPath("speclint-definitely-not-installed")
	assert.Error(t, err)
}
