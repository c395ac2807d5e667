package platformconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_HomeOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "nbdemetra.conf")

	require.NoError(t, Write(path, resource.JdkSpec{Label: "jdk8", JavaHome: "/opt/jdk8"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jdkhome=\"/opt/jdk8\"\n", string(data))
}

func TestWrite_AllEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "app.conf")
	jdk := resource.JdkSpec{
		Label:    "jdk17",
		JavaHome: "/opt/jdk17",
		Options:  "-J-Xmx2g",
		Clusters: []string{"/opt/c1", "/opt/c2"},
	}

	require.NoError(t, Write(path, jdk))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sep := string(os.PathListSeparator)
	assert.Equal(t,
		"jdkhome=\"/opt/jdk17\"\n"+
			"default_options=\"-J-Xmx2g\"\n"+
			"extra_clusters=\"/opt/c1"+sep+"/opt/c2\"\n",
		string(data))
}

func TestWrite_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new one\n"), 0o644))

	require.NoError(t, Write(path, resource.JdkSpec{JavaHome: "/j"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jdkhome=\"/j\"\n", string(data))
}

func TestWrite_FailureIsCoded(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "etc")
	require.NoError(t, os.WriteFile(blocker, []byte("a file, not a directory"), 0o644))

	err := Write(filepath.Join(blocker, "app.conf"), resource.JdkSpec{JavaHome: "/j"})
	require.Error(t, err)
	assert.True(t, launcherr.Is(err, launcherr.CodeConfigWrite))
}

func TestEntries_Order(t *testing.T) {
	entries := Entries(resource.JdkSpec{JavaHome: "/j", Clusters: []string{"/c"}})
	require.Len(t, entries, 2)
	assert.Equal(t, "jdkhome", entries[0].Key)
	assert.Equal(t, "extra_clusters", entries[1].Key)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/u", "etc", "nbdemetra.conf"), Path("/u", "nbdemetra"))
}
