package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/mfulz/launchgeist/interfaces/irunner"
)

// WrapperSettings configures the wrapper runner. Command is the prefix put in
// front of the application; its elements may use the placeholders {{APP}}
// (executable path), {{NAME}} (executable base name), {{DIR}} (the
// application's userdir) and {{ID}} (short random id, unique per run).
type WrapperSettings struct {
	Command []string `mapstructure:"command"`
	Env     []string `mapstructure:"env"` // KEY=VALUE
}

type wrapperRunner struct {
	command []string
	env     map[string]string
}

func init() {
	irunner.RegisterRunner("wrapper", newWrapperRunner)
}

func newWrapperRunner(settings map[string]any) (irunner.Runner, error) {
	var s WrapperSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, fmt.Errorf("wrapper runner settings: %w", err)
	}
	if len(s.Command) == 0 || s.Command[0] == "" {
		return nil, fmt.Errorf("wrapper runner: command is required")
	}
	env, err := irunner.ParseEnv(s.Env)
	if err != nil {
		return nil, fmt.Errorf("wrapper runner settings: %w", err)
	}
	return &wrapperRunner{command: s.Command, env: env}, nil
}

// Method returns the unique identifier for this runner.
func (w *wrapperRunner) Method() string {
	return "wrapper"
}

// Run starts the wrapper command with the application appended and waits for it.
func (w *wrapperRunner) Run(ctx context.Context, cmd irunner.Command) (irunner.Result, error) {
	argv := w.argv(cmd, uuid.New().String()[:8])
	return run(argv[0], argv[1:], mergeEnv(w.env, cmd.Env), cmd)
}

func (w *wrapperRunner) argv(cmd irunner.Command, id string) []string {
	r := strings.NewReplacer(
		"{{APP}}", cmd.Path,
		"{{NAME}}", filepath.Base(cmd.Path),
		"{{DIR}}", cmd.UserDir,
		"{{ID}}", id,
	)

	argv := make([]string, 0, len(w.command)+1+len(cmd.Args))
	for _, a := range w.command {
		argv = append(argv, r.Replace(a))
	}
	argv = append(argv, cmd.Path)
	return append(argv, cmd.Args...)
}
