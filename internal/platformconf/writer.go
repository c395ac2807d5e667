// Package platformconf writes the platform configuration file
// (<userdir>/etc/<branding>.conf) that tells the launched application which
// JDK to run on.
package platformconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/resource"
)

// Entry is one key="value" line of the config file.
type Entry struct {
	Key   string
	Value string
}

// Entries returns the config entries for jdk in file order.
func Entries(jdk resource.JdkSpec) []Entry {
	entries := []Entry{{Key: "jdkhome", Value: jdk.JavaHome}}
	if jdk.Options != "" {
		entries = append(entries, Entry{Key: "default_options", Value: jdk.Options})
	}
	if len(jdk.Clusters) > 0 {
		entries = append(entries, Entry{
			Key:   "extra_clusters",
			Value: strings.Join(jdk.Clusters, string(os.PathListSeparator)),
		})
	}
	return entries
}

// Render formats entries as the file content.
func Render(entries []Entry) []byte {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s=\"%s\"\n", e.Key, e.Value)
	}
	return []byte(b.String())
}

// Path returns the config file location for a branding inside dir.
func Path(dir, branding string) string {
	return filepath.Join(dir, "etc", branding+".conf")
}

// Write creates or truncates path and writes the entries for jdk.
func Write(path string, jdk resource.JdkSpec) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return launcherr.ErrConfigWriteFailed(path, err)
	}
	if err := os.WriteFile(path, Render(Entries(jdk)), 0o644); err != nil {
		return launcherr.ErrConfigWriteFailed(path, err)
	}
	return nil
}
