// Package userdir provisions the working directory ("userdir") a launched
// application runs against.
package userdir

import (
	"os"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/lifecycle"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/internal/tree"
)

// TempPrefix is the name prefix of ephemeral userdirs.
const TempPrefix = "userdir"

// WorkingDirectory is a provisioned userdir.
type WorkingDirectory struct {
	Path      string
	Ephemeral bool // removed by the exit hooks
}

// Provisioner creates working directories according to a UserDirSpec.
type Provisioner struct {
	// TempRoot is the parent of ephemeral directories; empty means os.TempDir().
	TempRoot string
	Hooks    *lifecycle.Hooks
}

// NewProvisioner returns a Provisioner that registers cleanup with hooks.
func NewProvisioner(tempRoot string, hooks *lifecycle.Hooks) *Provisioner {
	if hooks == nil {
		hooks = lifecycle.Default
	}
	return &Provisioner{TempRoot: tempRoot, Hooks: hooks}
}

// Provision returns the working directory for spec:
//
//   - nil or temp: a fresh empty ephemeral directory
//   - clone: an ephemeral directory holding a copy of spec.Folder
//   - otherwise: spec.Folder itself, used in place
//
// Ephemeral directories are registered for removal before anything is
// copied into them, so they are cleaned up even if cloning fails.
func (p *Provisioner) Provision(spec *resource.UserDirSpec) (WorkingDirectory, error) {
	if !spec.IsTemp() && !spec.Clone {
		return WorkingDirectory{Path: spec.Folder}, nil
	}

	dir, err := p.ephemeral()
	if err != nil {
		return WorkingDirectory{}, err
	}
	if spec == nil || !spec.Clone {
		return dir, nil
	}

	if err := checkSource(spec.Folder); err != nil {
		return dir, launcherr.ErrCloneSourceUnavailable(spec.Folder, err)
	}
	stats, err := tree.CopyDir(spec.Folder, dir.Path)
	if err != nil {
		return dir, launcherr.ErrCloneFailed(spec.Folder, dir.Path, err)
	}
	logging.Log.Infof("[userdir] cloned %s into %s (%d files, %d links, %d skipped)", spec.Folder, dir.Path, stats.Files, stats.Links, stats.Skipped)
	return dir, nil
}

func (p *Provisioner) ephemeral() (WorkingDirectory, error) {
	path, err := os.MkdirTemp(p.TempRoot, TempPrefix)
	if err != nil {
		return WorkingDirectory{}, launcherr.ErrTempDirFailed(p.TempRoot, err)
	}

	hooks := p.Hooks
	if hooks == nil {
		hooks = lifecycle.Default
	}
	hooks.Register("remove "+path, func() error {
		return os.RemoveAll(path)
	})

	logging.Log.Debugf("[userdir] created ephemeral userdir %s", path)
	return WorkingDirectory{Path: path, Ephemeral: true}, nil
}

func checkSource(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "clone", Path: folder, Err: os.ErrInvalid}
	}
	f, err := os.Open(folder)
	if err != nil {
		return err
	}
	return f.Close()
}
