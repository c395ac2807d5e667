// Package launch turns a resolved Configuration into a running application:
// it provisions the userdir, writes the platform config, extracts the plugins
// and finally runs the application against the prepared directory.
package launch

import (
	"context"
	"fmt"
	"io"

	"github.com/mfulz/launchgeist/interfaces/irunner"
	"github.com/mfulz/launchgeist/internal/archive"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/platformconf"
	"github.com/mfulz/launchgeist/internal/resource"
	_ "github.com/mfulz/launchgeist/internal/runner"
	"github.com/mfulz/launchgeist/internal/tree"
	"github.com/mfulz/launchgeist/internal/userdir"
)

// Provisioner creates the working directory of a launch.
type Provisioner interface {
	Provision(spec *resource.UserDirSpec) (userdir.WorkingDirectory, error)
}

// Extractor unpacks one plugin archive into a directory.
type Extractor interface {
	Extract(archivePath, dst string) (tree.Stats, error)
}

// Options holds the collaborators of a Plan. Nil collaborators get defaults.
type Options struct {
	Provisioner Provisioner
	Extractor   Extractor
	Runner      irunner.Runner
	Env         map[string]string
	Stdout      io.Writer
	Stderr      io.Writer
}

// Plan is a validated Configuration bound to its collaborators.
type Plan struct {
	cfg  resource.Configuration
	opts Options
}

// NewPlan validates cfg and fills in default collaborators.
func NewPlan(cfg resource.Configuration, opts Options) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Provisioner == nil {
		opts.Provisioner = userdir.NewProvisioner("", nil)
	}
	if opts.Extractor == nil {
		opts.Extractor = archive.New("")
	}
	if opts.Runner == nil {
		r, err := irunner.GetRunner("exec", nil)
		if err != nil {
			return nil, fmt.Errorf("default runner: %w", err)
		}
		opts.Runner = r
	}
	return &Plan{cfg: cfg, opts: opts}, nil
}

// Configuration returns the configuration the plan was built from.
func (p *Plan) Configuration() resource.Configuration {
	return p.cfg
}

// Branding returns the application's branding name.
func (p *Plan) Branding() string {
	return p.cfg.App.Branding()
}

// ConfigPath returns where the platform config goes inside dir.
func (p *Plan) ConfigPath(dir string) string {
	return platformconf.Path(dir, p.Branding())
}

// Init provisions the working directory and prepares it. On failure the
// directory is still returned when one was created.
func (p *Plan) Init(ctx context.Context) (userdir.WorkingDirectory, error) {
	spec := p.cfg.ResolvedUserDir()
	dir, err := p.opts.Provisioner.Provision(&spec)
	if err != nil {
		return dir, err
	}
	logging.Log.Infof("[launch] %s: userdir %s (ephemeral=%t)", p.cfg.App.Label, dir.Path, dir.Ephemeral)

	if err := p.Prepare(ctx, dir.Path); err != nil {
		return dir, err
	}
	return dir, nil
}

// Prepare writes the platform config into dir and extracts the plugins in
// list order, later archives overwriting earlier ones. It stops at the
// first failure and leaves whatever was written in place.
func (p *Plan) Prepare(ctx context.Context, dir string) error {
	conf := p.ConfigPath(dir)
	if err := platformconf.Write(conf, p.cfg.Jdk); err != nil {
		return err
	}
	logging.Log.Debugf("[launch] wrote %s for jdk %s", conf, p.cfg.Jdk.Label)

	for i, plugin := range p.cfg.Plugins {
		stats, err := p.opts.Extractor.Extract(plugin.File, dir)
		if err != nil {
			return fmt.Errorf("plugin %d (%s): %w", i+1, plugin.Label, err)
		}
		logging.Log.Debugf("[launch] extracted plugin %s (%d files)", plugin.Label, stats.Files)
	}
	return nil
}

// Command returns the process description for a launch against dir.
func (p *Plan) Command(dir string) irunner.Command {
	return irunner.Command{
		Path:    p.cfg.App.File,
		Args:    []string{"--userdir", dir},
		Env:     p.opts.Env,
		UserDir: dir,
		Stdout:  p.opts.Stdout,
		Stderr:  p.opts.Stderr,
	}
}

// Launch runs the application against dir and blocks until it exits. The
// exit code is logged, not interpreted.
func (p *Plan) Launch(ctx context.Context, dir string) error {
	res, err := p.opts.Runner.Run(ctx, p.Command(dir))
	if err != nil {
		return err
	}
	logging.Log.Infof("[launch] %s exited with code %d", p.cfg.App.Label, res.ExitCode)
	return nil
}
