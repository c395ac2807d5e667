package launch

import (
	"fmt"
	"os"

	"github.com/mfulz/launchgeist/interfaces/irunner"
	"github.com/mfulz/launchgeist/internal/archive"
	"github.com/mfulz/launchgeist/internal/lifecycle"
	"github.com/mfulz/launchgeist/internal/userdir"
)

// Settings is the "launch" block shared by the daemon and client configs.
type Settings struct {
	TempDir        string            `mapstructure:"temp_dir"`        // parent of ephemeral userdirs, empty for the OS default
	PluginRoot     string            `mapstructure:"plugin_root"`     // directory inside plugin archives copied into the userdir
	Runner         string            `mapstructure:"runner"`          // runner method, e.g. "exec" or "wrapper"
	RunnerSettings map[string]any    `mapstructure:"runner_settings"` // method-specific runner settings
	InheritStdio   bool              `mapstructure:"inherit_stdio"`   // forward the application's output to ours
	Env            []string          `mapstructure:"env"`             // extra KEY=VALUE environment for the application
}

// DefaultSettings returns the settings used when no launch block is configured.
func DefaultSettings() Settings {
	return Settings{
		PluginRoot: archive.DefaultRootEntry,
		Runner:     "exec",
	}
}

// Options builds the plan collaborators described by s. Ephemeral userdirs
// are registered with hooks.
func (s Settings) Options(hooks *lifecycle.Hooks) (Options, error) {
	method := s.Runner
	if method == "" {
		method = "exec"
	}
	runner, err := irunner.GetRunner(method, s.RunnerSettings)
	if err != nil {
		return Options{}, fmt.Errorf("launch runner: %w", err)
	}

	env, err := irunner.ParseEnv(s.Env)
	if err != nil {
		return Options{}, fmt.Errorf("launch env: %w", err)
	}

	opts := Options{
		Provisioner: userdir.NewProvisioner(s.TempDir, hooks),
		Extractor:   archive.New(s.PluginRoot),
		Runner:      runner,
		Env:         env,
	}
	if s.InheritStdio {
		opts.Stdout = os.Stdout
		opts.Stderr = os.Stderr
	}
	return opts, nil
}
