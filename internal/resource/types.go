// Package resource holds the data model of a launch: the JDKs, applications,
// plugins and user directories a client can choose from, and the resolved
// Configuration a launch is built from.
package resource

import (
	"path/filepath"
	"strings"

	"github.com/mfulz/launchgeist/internal/launcherr"
)

// TempLabel is the label of the ephemeral userdir sentinel.
const TempLabel = "---"

// JdkSpec describes a Java installation.
type JdkSpec struct {
	Label    string   `yaml:"label"`
	JavaHome string   `yaml:"java_home"`
	Options  string   `yaml:"options,omitempty"`
	Clusters []string `yaml:"clusters,omitempty"`
}

// AppSpec describes a launchable platform application.
type AppSpec struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
}

// Branding derives the application's branding name from its executable:
// a trailing ".exe" (any case) is dropped, then a trailing "64".
func (a AppSpec) Branding() string {
	name := filepath.Base(a.File)
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		name = name[:len(name)-len(".exe")]
	}
	return strings.TrimSuffix(name, "64")
}

// PluginSpec describes a plugin archive.
type PluginSpec struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
}

// UserDirSpec describes the working directory policy of a launch.
type UserDirSpec struct {
	Label  string `yaml:"label"`
	Folder string `yaml:"folder,omitempty"`
	Clone  bool   `yaml:"clone,omitempty"`
}

// TempUserDir is the sentinel for "use a fresh ephemeral directory".
var TempUserDir = UserDirSpec{Label: TempLabel}

// IsTemp reports whether u asks for an empty ephemeral directory.
func (u *UserDirSpec) IsTemp() bool {
	return u == nil || u.Folder == ""
}

// Configuration is everything needed to launch an application once.
type Configuration struct {
	App     AppSpec
	Jdk     JdkSpec
	UserDir *UserDirSpec // nil means TEMP
	Plugins []PluginSpec
}

// ResolvedUserDir returns the effective userdir policy.
func (c Configuration) ResolvedUserDir() UserDirSpec {
	if c.UserDir == nil {
		return TempUserDir
	}
	return *c.UserDir
}

// Validate checks that the configuration can be launched.
func (c Configuration) Validate() error {
	switch {
	case c.App.Label == "":
		return launcherr.ErrInvalidConfiguration("application label is empty")
	case c.App.File == "":
		return launcherr.ErrInvalidConfiguration("application file is empty").WithContext("app", c.App.Label)
	case c.Jdk.Label == "":
		return launcherr.ErrInvalidConfiguration("jdk label is empty")
	case c.Jdk.JavaHome == "":
		return launcherr.ErrInvalidConfiguration("jdk java_home is empty").WithContext("jdk", c.Jdk.Label)
	}

	if c.UserDir != nil && c.UserDir.Clone && c.UserDir.Folder == "" {
		return launcherr.ErrInvalidConfiguration("clone requested without a source folder").
			WithContext("userdir", c.UserDir.Label)
	}

	for i, p := range c.Plugins {
		if p.File == "" {
			return launcherr.ErrInvalidConfiguration("plugin file is empty").
				WithContext("index", i).
				WithContext("plugin", p.Label)
		}
	}
	return nil
}

// Selection names the resources a client picked, by label.
type Selection struct {
	App     string   `json:"app"`
	Jdk     string   `json:"jdk"`
	UserDir string   `json:"userdir,omitempty"`
	Plugins []string `json:"plugins,omitempty"`
}
