package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelAndStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := New(&Config{Level: "warn", ToStdout: true}, &stdout, &stderr).Sugar()

	log.Info("hidden")
	log.Warn("visible")
	require.NoError(t, log.Sync())

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "visible")
	assert.Empty(t, stderr.String())
}

func TestNew_FallsBackToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := New(&Config{Level: "bogus"}, &stdout, &stderr).Sugar()

	log.Info("fallback")
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "fallback")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchgeist.log")
	log := New(&Config{Level: "debug", ToFile: true, FilePath: path, MaxSizeMB: 1}, &bytes.Buffer{}, &bytes.Buffer{}).Sugar()

	log.Debugw("written", "session", "abc")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
	assert.Contains(t, string(data), "abc")
}

func TestConfigure(t *testing.T) {
	old := Log
	t.Cleanup(func() {
		_ = Configure(DefaultConfig())
		Log = old
	})

	require.NoError(t, Configure(&Config{Level: "error", ToStderr: true}))
	assert.NotNil(t, Named("test"))
	assert.False(t, Log.Desugar().Core().Enabled(zapcore.DebugLevel))
}
