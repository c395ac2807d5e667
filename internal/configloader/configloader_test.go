package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct{ Name string }

func TestRegistry(t *testing.T) {
	t.Cleanup(unregisterConfig[*sampleConfig])

	_, ok := TryGetConfig[*sampleConfig]()
	assert.False(t, ok)
	assert.Panics(t, func() { MustGetConfig[*sampleConfig]() })

	RegisterConfig(&sampleConfig{Name: "first"})
	assert.Equal(t, "first", MustGetConfig[*sampleConfig]().Name)
	assert.Panics(t, func() { RegisterConfig(&sampleConfig{}) })

	StoreConfig(&sampleConfig{Name: "second"})
	cfg, ok := TryGetConfig[*sampleConfig]()
	require.True(t, ok)
	assert.Equal(t, "second", cfg.Name)
}

func TestResolveConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfig, "")

	oldSystem := SystemDir
	SystemDir = t.TempDir()
	t.Cleanup(func() { SystemDir = oldSystem })

	_, err := ResolveConfigPath("", "launchgeistd", "launchgeistd.yaml")
	assert.True(t, errors.Is(err, ErrNoConfig))

	system := filepath.Join(SystemDir, "launchgeistd.yaml")
	require.NoError(t, os.WriteFile(system, nil, 0o644))
	got, err := ResolveConfigPath("", "launchgeistd", "launchgeistd.yaml")
	require.NoError(t, err)
	assert.Equal(t, system, got)

	user := filepath.Join(home, ".launchgeist", "launchgeistd", "launchgeistd.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(user), 0o755))
	require.NoError(t, os.WriteFile(user, nil, 0o644))
	got, err = ResolveConfigPath("", "launchgeistd", "launchgeistd.yaml")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	t.Setenv(EnvConfig, "/from/env.yaml")
	got, err = ResolveConfigPath("", "launchgeistd", "launchgeistd.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/from/env.yaml", got)

	got, err = ResolveConfigPath("/explicit.yaml", "launchgeistd", "launchgeistd.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/explicit.yaml", got)
}
