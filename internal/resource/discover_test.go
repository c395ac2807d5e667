package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o755))
	return p
}

func withGOOS(t *testing.T, value string) {
	t.Helper()
	old := goos
	goos = value
	t.Cleanup(func() { goos = old })
}

func TestDiscover_Windows(t *testing.T) {
	withGOOS(t, "windows")
	root := t.TempDir()

	exe := touch(t, root, "jdemetra-3.2.2", "bin", "nbdemetra64.exe")
	touch(t, root, "jdemetra-3.2.2", "bin", "nbdemetra.exe")
	touch(t, root, "jdk-21", "bin", "javaw.exe")
	touch(t, root, "jdk-21", "bin", "java.exe")
	nbm := touch(t, root, "downloads", "sa.nbm")
	touch(t, root, "misc", "nbdemetra64.exe")

	c, err := Discover(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, c.Apps, 1)
	assert.Equal(t, AppSpec{Label: "nbdemetra", File: exe}, c.Apps[0])

	require.Len(t, c.Jdks, 1)
	assert.Equal(t, filepath.Join(root, "jdk-21"), c.Jdks[0].JavaHome)
	assert.Equal(t, "jdk-21", c.Jdks[0].Label)

	require.Len(t, c.Plugins, 1)
	assert.Equal(t, PluginSpec{Label: "sa.nbm", File: nbm}, c.Plugins[0])
}

func TestDiscover_UnixUsesShellLauncher(t *testing.T) {
	withGOOS(t, "linux")
	root := t.TempDir()

	touch(t, root, "a", "bin", "nbdemetra64.exe")
	launcher := touch(t, root, "a", "bin", "nbdemetra")
	touch(t, root, "b", "bin", "orphan64.exe")

	c, err := Discover(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, c.Apps, 1)
	assert.Equal(t, launcher, c.Apps[0].File)
	assert.Equal(t, "nbdemetra", c.Apps[0].Label)
}

func TestDiscover_DisambiguatesLabels(t *testing.T) {
	withGOOS(t, "windows")
	root := t.TempDir()

	touch(t, root, "v2", "bin", "nbdemetra64.exe")
	touch(t, root, "v3", "bin", "nbdemetra64.exe")

	c, err := Discover(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, c.Apps, 2)
	assert.Equal(t, "nbdemetra (v2)", c.Apps[0].Label)
	assert.Equal(t, "nbdemetra (v3)", c.Apps[1].Label)

	// the result must be loadable as a catalog
	out, err := c.Marshal()
	require.NoError(t, err)
	_, err = ParseCatalog(out)
	assert.NoError(t, err)
}

func TestDiscover_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "x.nbm")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJdkFromEnvironment(t *testing.T) {
	t.Setenv("JAVA_HOME", "/opt/jdk")
	jdk, ok := JdkFromEnvironment()
	require.True(t, ok)
	assert.Equal(t, JdkSpec{Label: "JAVA_HOME", JavaHome: "/opt/jdk"}, jdk)

	t.Setenv("JAVA_HOME", "")
	_, ok = JdkFromEnvironment()
	assert.False(t, ok)
}

func TestCatalog_Merge(t *testing.T) {
	c := &Catalog{Jdks: []JdkSpec{{Label: "a", JavaHome: "/a"}}}
	c.Merge(&Catalog{
		Jdks:    []JdkSpec{{Label: "a", JavaHome: "/other"}, {Label: "b", JavaHome: "/b"}},
		Plugins: []PluginSpec{{Label: "p", File: "/p.nbm"}},
	})

	assert.Equal(t, []JdkSpec{{Label: "a", JavaHome: "/a"}, {Label: "b", JavaHome: "/b"}}, c.Jdks)
	assert.Len(t, c.Plugins, 1)
}

func TestBuild_FileThenDiscoveryThenEnvironment(t *testing.T) {
	withGOOS(t, "windows")
	t.Setenv("JAVA_HOME", "/opt/env-jdk")

	dir := t.TempDir()
	file := filepath.Join(dir, "resources.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
jdks:
  - label: jdk-21
    java_home: /opt/pinned-jdk21
`), 0o644))

	root := t.TempDir()
	touch(t, root, "jdk-21", "bin", "java.exe")
	touch(t, root, "jdk-17", "bin", "java.exe")

	c, err := Build(context.Background(), file, []string{root})
	require.NoError(t, err)

	require.Len(t, c.Jdks, 3)
	assert.Equal(t, JdkSpec{Label: "jdk-21", JavaHome: "/opt/pinned-jdk21"}, c.Jdks[0])
	assert.Equal(t, "jdk-17", c.Jdks[1].Label)
	assert.Equal(t, JdkSpec{Label: "JAVA_HOME", JavaHome: "/opt/env-jdk"}, c.Jdks[2])
}

func TestBuild_Empty(t *testing.T) {
	t.Setenv("JAVA_HOME", "")
	c, err := Build(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, c.Jdks)

	_, err = Build(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
