package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"gopkg.in/yaml.v3"
)

// Catalog is the set of resources a client can choose from.
type Catalog struct {
	Jdks     []JdkSpec     `yaml:"jdks"`
	Apps     []AppSpec     `yaml:"apps"`
	UserDirs []UserDirSpec `yaml:"user_dirs"`
	Plugins  []PluginSpec  `yaml:"plugins"`
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog and checks labels are unique per kind.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal encodes the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Catalog) check() error {
	seen := map[string]map[string]bool{}
	dup := func(kind, label string) error {
		if label == "" {
			return fmt.Errorf("%s without label", kind)
		}
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][label] {
			return fmt.Errorf("duplicate %s label %q", kind, label)
		}
		seen[kind][label] = true
		return nil
	}

	for _, j := range c.Jdks {
		if err := dup("jdk", j.Label); err != nil {
			return err
		}
	}
	for _, a := range c.Apps {
		if err := dup("app", a.Label); err != nil {
			return err
		}
	}
	for _, u := range c.UserDirs {
		if isTempLabel(u.Label) {
			return fmt.Errorf("userdir label %q is reserved", u.Label)
		}
		if err := dup("userdir", u.Label); err != nil {
			return err
		}
	}
	for _, p := range c.Plugins {
		if err := dup("plugin", p.Label); err != nil {
			return err
		}
	}
	return nil
}

func isTempLabel(label string) bool {
	return label == "" || label == TempLabel || strings.EqualFold(label, "TEMP")
}

// Jdk looks up a JDK by label.
func (c *Catalog) Jdk(label string) (JdkSpec, bool) {
	for _, j := range c.Jdks {
		if j.Label == label {
			return j, true
		}
	}
	return JdkSpec{}, false
}

// App looks up an application by label.
func (c *Catalog) App(label string) (AppSpec, bool) {
	for _, a := range c.Apps {
		if a.Label == label {
			return a, true
		}
	}
	return AppSpec{}, false
}

// UserDir looks up a userdir by label.
func (c *Catalog) UserDir(label string) (UserDirSpec, bool) {
	for _, u := range c.UserDirs {
		if u.Label == label {
			return u, true
		}
	}
	return UserDirSpec{}, false
}

// Plugin looks up a plugin by label.
func (c *Catalog) Plugin(label string) (PluginSpec, bool) {
	for _, p := range c.Plugins {
		if p.Label == label {
			return p, true
		}
	}
	return PluginSpec{}, false
}

// Resolve turns a Selection into a validated Configuration. Plugin order is
// kept. An empty, "---" or "TEMP" userdir label selects an ephemeral directory.
func (c *Catalog) Resolve(sel Selection) (Configuration, error) {
	var cfg Configuration

	app, ok := c.App(sel.App)
	if !ok {
		return cfg, launcherr.ErrInvalidConfiguration("unknown application").WithContext("app", sel.App)
	}
	jdk, ok := c.Jdk(sel.Jdk)
	if !ok {
		return cfg, launcherr.ErrInvalidConfiguration("unknown jdk").WithContext("jdk", sel.Jdk)
	}
	cfg.App = app
	cfg.Jdk = jdk

	if !isTempLabel(sel.UserDir) {
		u, ok := c.UserDir(sel.UserDir)
		if !ok {
			return Configuration{}, launcherr.ErrInvalidConfiguration("unknown userdir").WithContext("userdir", sel.UserDir)
		}
		cfg.UserDir = &u
	}

	for _, label := range sel.Plugins {
		p, ok := c.Plugin(label)
		if !ok {
			return Configuration{}, launcherr.ErrInvalidConfiguration("unknown plugin").WithContext("plugin", label)
		}
		cfg.Plugins = append(cfg.Plugins, p)
	}

	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}
