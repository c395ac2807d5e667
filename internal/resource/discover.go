package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Patterns used to classify files found during discovery. Matched against
// slash-separated paths relative to the search root.
const (
	AppPattern    = "**/bin/*64.exe"
	JdkPattern    = "**/bin/{java,javaw,java.exe,javaw.exe}"
	PluginPattern = "**/*.nbm"
)

var goos = runtime.GOOS

// Discover walks roots and returns a catalog of the applications, JDKs and
// plugins found below them. Unreadable directories are skipped. Results are
// deduplicated and sorted by location.
func Discover(ctx context.Context, roots ...string) (*Catalog, error) {
	var (
		mu      sync.Mutex
		apps    = map[string]AppSpec{}
		jdks    = map[string]JdkSpec{}
		plugins = map[string]PluginSpec{}
	)

	for _, root := range roots {
		root = filepath.Clean(root)
		conf := fastwalk.Config{Follow: false}

		err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil || d.IsDir() {
				return nil
			}

			rel, rerr := filepath.Rel(root, p)
			if rerr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			switch {
			case match(AppPattern, rel):
				if app, ok := appFromLauncher(p); ok {
					mu.Lock()
					apps[app.File] = app
					mu.Unlock()
				}
			case match(JdkPattern, rel):
				home := filepath.Dir(filepath.Dir(p))
				mu.Lock()
				jdks[home] = JdkSpec{Label: filepath.Base(home), JavaHome: home}
				mu.Unlock()
			case match(PluginPattern, rel):
				mu.Lock()
				plugins[p] = PluginSpec{Label: filepath.Base(p), File: p}
				mu.Unlock()
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover in %s: %w", root, err)
		}
	}

	c := &Catalog{}
	for _, a := range apps {
		c.Apps = append(c.Apps, a)
	}
	for _, j := range jdks {
		c.Jdks = append(c.Jdks, j)
	}
	for _, p := range plugins {
		c.Plugins = append(c.Plugins, p)
	}

	sort.Slice(c.Apps, func(i, j int) bool { return c.Apps[i].File < c.Apps[j].File })
	sort.Slice(c.Jdks, func(i, j int) bool { return c.Jdks[i].JavaHome < c.Jdks[j].JavaHome })
	sort.Slice(c.Plugins, func(i, j int) bool { return c.Plugins[i].File < c.Plugins[j].File })

	uniqueLabels(len(c.Apps), func(i int) *string { return &c.Apps[i].Label }, func(i int) string { return c.Apps[i].File })
	uniqueLabels(len(c.Jdks), func(i int) *string { return &c.Jdks[i].Label }, func(i int) string { return c.Jdks[i].JavaHome })
	uniqueLabels(len(c.Plugins), func(i int) *string { return &c.Plugins[i].Label }, func(i int) string { return c.Plugins[i].File })

	return c, nil
}

func match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// appFromLauncher maps a bin/<name>64.exe launcher to an AppSpec. Outside
// Windows the platform's shell launcher bin/<name> is used instead and must exist.
func appFromLauncher(p string) (AppSpec, bool) {
	file := p
	if goos != "windows" {
		base := filepath.Base(p)
		file = filepath.Join(filepath.Dir(p), base[:len(base)-len("64.exe")])
		if info, err := os.Stat(file); err != nil || info.IsDir() {
			return AppSpec{}, false
		}
	}
	app := AppSpec{File: file}
	app.Label = app.Branding()
	return app, app.Label != ""
}

// uniqueLabels suffixes colliding labels with the parent directory of the
// resource so the catalog stays loadable.
func uniqueLabels(n int, label func(int) *string, location func(int) string) {
	count := map[string]int{}
	for i := 0; i < n; i++ {
		count[*label(i)]++
	}
	for i := 0; i < n; i++ {
		l := label(i)
		if count[*l] > 1 {
			*l = fmt.Sprintf("%s (%s)", *l, installName(location(i)))
		}
	}
}

func installName(p string) string {
	dir := filepath.Dir(p)
	if filepath.Base(dir) == "bin" {
		dir = filepath.Dir(dir)
	}
	return filepath.Base(dir)
}

// JdkFromEnvironment returns the JDK named by $JAVA_HOME, if set.
func JdkFromEnvironment() (JdkSpec, bool) {
	home := strings.TrimSpace(os.Getenv("JAVA_HOME"))
	if home == "" {
		return JdkSpec{}, false
	}
	return JdkSpec{Label: "JAVA_HOME", JavaHome: home}, true
}

// Merge appends the entries of o whose labels are not yet present in c.
func (c *Catalog) Merge(o *Catalog) {
	for _, j := range o.Jdks {
		if _, ok := c.Jdk(j.Label); !ok {
			c.Jdks = append(c.Jdks, j)
		}
	}
	for _, a := range o.Apps {
		if _, ok := c.App(a.Label); !ok {
			c.Apps = append(c.Apps, a)
		}
	}
	for _, u := range o.UserDirs {
		if _, ok := c.UserDir(u.Label); !ok {
			c.UserDirs = append(c.UserDirs, u)
		}
	}
	for _, p := range o.Plugins {
		if _, ok := c.Plugin(p.Label); !ok {
			c.Plugins = append(c.Plugins, p)
		}
	}
}

// Build assembles the catalog a process works with: the catalog file at
// path (if any), then discovered resources, then the $JAVA_HOME JDK.
// Earlier sources win on label collisions.
func Build(ctx context.Context, path string, roots []string) (*Catalog, error) {
	c := &Catalog{}
	if path != "" {
		loaded, err := LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}
	if len(roots) > 0 {
		found, err := Discover(ctx, roots...)
		if err != nil {
			return nil, err
		}
		c.Merge(found)
	}
	if jdk, ok := JdkFromEnvironment(); ok {
		c.Merge(&Catalog{Jdks: []JdkSpec{jdk}})
	}
	return c, nil
}
