// Package irunner defines the pluggable process runners used to start the
// launched application. Runners register a factory under a method name
// (e.g. "exec", "wrapper") and are selected by the launch configuration.
package irunner

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Command describes one application process.
type Command struct {
	Path    string            // executable
	Args    []string          // arguments, without the executable
	Env     map[string]string // added to the inherited environment
	Dir     string            // working directory, empty for the current one
	UserDir string            // userdir the application runs against
	Stdout  io.Writer         // nil discards
	Stderr  io.Writer         // nil discards
}

// Result is what a runner observed about a finished process.
type Result struct {
	Pid      int
	ExitCode int
	Duration time.Duration
}

// Runner starts a command and waits for it to exit. A non-zero exit code is
// not an error; only failures to start or wait are.
type Runner interface {
	Method() string
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Factory builds a runner from its method-specific settings.
type Factory func(settings map[string]any) (Runner, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterRunner adds a runner factory under method. Registering the same
// method twice panics.
func RegisterRunner(method string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[method]; exists {
		panic(fmt.Sprintf("runner already registered: %s", method))
	}
	factories[method] = f
}

// GetRunner builds the runner registered under method.
func GetRunner(method string, settings map[string]any) (Runner, error) {
	mu.RLock()
	f, ok := factories[method]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown runner method: %s", method)
	}
	return f(settings)
}

// Methods lists the registered runner methods.
func Methods() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for m := range factories {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// ParseEnv converts KEY=VALUE entries into a map. Later entries win.
func ParseEnv(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment entry %q, want KEY=VALUE", e)
		}
		out[k] = v
	}
	return out, nil
}
