// Package runner provides the process runners registered with irunner.
//
// "exec" starts the application directly. "wrapper" starts it through a
// configurable prefix command such as systemd-run or firejail.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mfulz/launchgeist/interfaces/irunner"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/logging"
)

// ExecSettings configures the exec runner.
type ExecSettings struct {
	Env []string `mapstructure:"env"` // KEY=VALUE
}

type execRunner struct {
	env map[string]string
}

func init() {
	irunner.RegisterRunner("exec", newExecRunner)
}

func newExecRunner(settings map[string]any) (irunner.Runner, error) {
	var s ExecSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, fmt.Errorf("exec runner settings: %w", err)
	}
	env, err := irunner.ParseEnv(s.Env)
	if err != nil {
		return nil, fmt.Errorf("exec runner settings: %w", err)
	}
	return &execRunner{env: env}, nil
}

// Method returns the unique identifier for this runner.
func (r *execRunner) Method() string {
	return "exec"
}

// Run starts cmd and waits for it to exit.
func (r *execRunner) Run(ctx context.Context, cmd irunner.Command) (irunner.Result, error) {
	return run(cmd.Path, cmd.Args, mergeEnv(r.env, cmd.Env), cmd)
}

// run starts name with args and waits for it. A started process is never
// killed from here; it runs until it exits on its own.
func run(name string, args []string, env map[string]string, cmd irunner.Command) (irunner.Result, error) {
	var res irunner.Result

	path, err := resolve(name)
	if err != nil {
		return res, launcherr.ErrExecutableNotFound(name, err)
	}

	c := exec.Command(path, args...)
	c.Dir = cmd.Dir
	c.Env = environ(env)
	c.Stdout = writerOrDiscard(cmd.Stdout)
	c.Stderr = writerOrDiscard(cmd.Stderr)

	start := time.Now()
	if err := c.Start(); err != nil {
		return res, launcherr.ErrProcessStartFailed(path, err)
	}
	res.Pid = c.Process.Pid
	logging.Log.Infof("[runner] started %s (pid %d)", path, res.Pid)

	err = c.Wait()
	res.Duration = time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, launcherr.ErrProcessWaitFailed(path, err)
	}

	logging.Log.Infof("[runner] %s (pid %d) exited with code %d after %s", path, res.Pid, res.ExitCode, res.Duration.Round(time.Millisecond))
	return res, nil
}

// resolve checks that name is an executable file, looking it up in PATH when
// it has no directory component.
func resolve(name string) (string, error) {
	if !strings.ContainsRune(name, os.PathSeparator) && !strings.ContainsRune(name, '/') {
		return exec.LookPath(name)
	}
	info, err := os.Stat(name)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", &os.PathError{Op: "exec", Path: name, Err: errors.New("is a directory")}
	}
	return name, nil
}

func mergeEnv(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// environ appends env to the inherited environment in a stable order.
func environ(env map[string]string) []string {
	out := os.Environ()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
