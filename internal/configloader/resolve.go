package configloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfig names the environment variable that overrides config lookup.
const EnvConfig = "LAUNCHGEIST_CONFIG"

// SystemDir is the system-wide config directory.
var SystemDir = "/etc/launchgeist"

// ErrNoConfig is returned when no config file exists in any location.
var ErrNoConfig = errors.New("no config found")

// ResolveConfigPath returns the config path for a subsystem and file name.
// Lookup order:
//  1. explicit, if not empty
//  2. $LAUNCHGEIST_CONFIG
//  3. ~/.launchgeist/<subsystem>/<file>
//  4. /etc/launchgeist/<file>
//
// Explicit and environment paths are returned as-is, even if missing, so
// the caller reports the real read error.
func ResolveConfigPath(explicit, subsystem, file string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".launchgeist", subsystem, file)
		if _, err := os.Stat(userPath); err == nil {
			return userPath, nil
		}
	}
	systemPath := filepath.Join(SystemDir, file)
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath, nil
	}
	return "", fmt.Errorf("%w for %s/%s", ErrNoConfig, subsystem, file)
}
