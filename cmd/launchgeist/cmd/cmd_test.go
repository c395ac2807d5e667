package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/launch"
	"github.com/mfulz/launchgeist/internal/lifecycle"
	"github.com/mfulz/launchgeist/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mfulz/launchgeist/internal/runner"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("x")))
	assert.Equal(t, 3, ExitCode(&exitError{code: 3, err: errors.New("busy")}))
}

func TestPrintSessions(t *testing.T) {
	var buf bytes.Buffer
	printSessions(&buf, []protocol.SessionInfo{{ID: "abc", State: "DONE", App: "demetra", Jdk: "jdk17", UserDir: "---", Runs: 2, ErrorCode: "LAUNCH"}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "STATE", "APP", "JDK", "USERDIR", "RUNS", "ERROR"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"abc", "DONE", "demetra", "jdk17", "---", "2", "LAUNCH"}, strings.Fields(lines[1]))
}

func TestDiscoverCmd(t *testing.T) {
	root := t.TempDir()
	nbm := filepath.Join(root, "plugins", "sa.nbm")
	require.NoError(t, os.MkdirAll(filepath.Dir(nbm), 0o755))
	require.NoError(t, os.WriteFile(nbm, nil, 0o644))

	var out bytes.Buffer
	DiscoverCmd.SetOut(&out)
	DiscoverCmd.SetArgs([]string{root, "--java-home=false"})
	require.NoError(t, DiscoverCmd.Execute())

	assert.Contains(t, out.String(), "label: sa.nbm")
	assert.Contains(t, out.String(), nbm)
}

func TestPrepareCmd_KeepsUserdir(t *testing.T) {
	dir := t.TempDir()
	resources := filepath.Join(dir, "resources.yaml")
	require.NoError(t, os.WriteFile(resources, []byte(`
apps:
  - label: demetra
    file: /opt/demetra/bin/nbdemetra64.exe
jdks:
  - label: jdk17
    java_home: /opt/jdk17
`), 0o644))

	settings := launch.DefaultSettings()
	settings.TempDir = t.TempDir()
	configloader.StoreConfig(&configcli.Config{Resources: resources, Launch: settings})
	t.Cleanup(lifecycle.Default.Run)

	var out bytes.Buffer
	PrepareCmd.SetOut(&out)
	PrepareCmd.SetArgs([]string{"-a", "demetra", "-j", "jdk17", "--keep"})
	require.NoError(t, PrepareCmd.Execute())

	userdir := strings.TrimSpace(out.String())
	require.NotEmpty(t, userdir)
	assert.Equal(t, settings.TempDir, filepath.Dir(userdir))

	conf, err := os.ReadFile(filepath.Join(userdir, "etc", "nbdemetra.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), `jdkhome="/opt/jdk17"`)
}
