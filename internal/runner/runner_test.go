package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mfulz/launchgeist/interfaces/irunner"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are unix only")
	}
	path := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecRunner_Registered(t *testing.T) {
	assert.Contains(t, irunner.Methods(), "exec")
	assert.Contains(t, irunner.Methods(), "wrapper")
}

func TestExecRunner_RunsWithArgsEnvAndDir(t *testing.T) {
	app := script(t, `echo "$1 $2 $LAUNCHGEIST_TEST $EXTRA"; pwd`)
	dir := t.TempDir()

	r, err := irunner.GetRunner("exec", map[string]any{"env": []any{"EXTRA=from-settings"}})
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := r.Run(context.Background(), irunner.Command{
		Path:   app,
		Args:   []string{"--userdir", "/u"},
		Env:    map[string]string{"LAUNCHGEIST_TEST": "yes"},
		Dir:    dir,
		Stdout: &out,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "--userdir /u yes from-settings", lines[0])
	resolvedDir, _ := filepath.EvalSymlinks(dir)
	resolvedPwd, _ := filepath.EvalSymlinks(lines[1])
	assert.Equal(t, resolvedDir, resolvedPwd)
	assert.Zero(t, res.ExitCode)
	assert.NotZero(t, res.Pid)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	app := script(t, "exit 7")

	r, err := irunner.GetRunner("exec", nil)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), irunner.Command{Path: app})
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	r, err := irunner.GetRunner("exec", nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), irunner.Command{Path: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.True(t, launcherr.Is(err, launcherr.CodeLaunch))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecRunner_NotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are unix only")
	}
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	r, err := irunner.GetRunner("exec", nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), irunner.Command{Path: path})
	require.Error(t, err)
	assert.True(t, launcherr.Is(err, launcherr.CodeLaunch))
}

func TestExecRunner_CancelledContextStillRuns(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ran")
	app := script(t, "touch '"+out+"'\nexit 3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := irunner.GetRunner("exec", nil)
	require.NoError(t, err)

	res, err := r.Run(ctx, irunner.Command{Path: app})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.FileExists(t, out)
}

func TestWrapperRunner_RequiresCommand(t *testing.T) {
	_, err := irunner.GetRunner("wrapper", nil)
	assert.Error(t, err)
}

func TestWrapperRunner_Argv(t *testing.T) {
	r, err := newWrapperRunner(map[string]any{
		"command": []any{"systemd-run", "--user", "--scope", "--unit=lg-{{NAME}}-{{ID}}", "--working-directory={{DIR}}"},
	})
	require.NoError(t, err)

	argv := r.(*wrapperRunner).argv(irunner.Command{
		Path: "/opt/d/bin/nbdemetra",
		Args:    []string{"--userdir", "/u"},
		Dir:     "/work",
		UserDir: "/u",
	}, "abcd1234")

	assert.Equal(t, []string{
		"systemd-run", "--user", "--scope",
		"--unit=lg-nbdemetra-abcd1234",
		"--working-directory=/u",
		"/opt/d/bin/nbdemetra", "--userdir", "/u",
	}, argv)
}

func TestWrapperRunner_Run(t *testing.T) {
	wrapper := script(t, `echo "wrapped $WRAPPED"; exec "$@"`)
	app := script(t, `echo "app $1"`)

	r, err := irunner.GetRunner("wrapper", map[string]any{
		"command": []string{wrapper},
		"env":     []string{"WRAPPED=1"},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = r.Run(context.Background(), irunner.Command{Path: app, Args: []string{"x"}, Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "wrapped 1\napp x\n", out.String())
}
