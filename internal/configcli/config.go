// Package configcli handles loading and managing local launchgeist configuration.
// This includes user tokens, known daemon connection targets and the
// settings used when the client launches applications itself.
package configcli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/launch"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/spf13/viper"
)

// UserConfig represents authentication info for a specific logical user.
type UserConfig struct {
	Token string `mapstructure:"token"`
}

// DaemonConfig represents one connection target (unix socket or TCP).
type DaemonConfig struct {
	Socket string `mapstructure:"socket,omitempty"`
	TCP    string `mapstructure:"tcp,omitempty"`
}

// Config holds the entire client-side launchgeist configuration.
type Config struct {
	Users         map[string]UserConfig   `mapstructure:"users"`
	Daemons       map[string]DaemonConfig `mapstructure:"daemons"`
	DefaultDaemon string                  `mapstructure:"default_daemon"`
	DefaultUser   string                  `mapstructure:"default_user"`
	Resources     string                  `mapstructure:"resources"` // catalog used by "run" and "prepare"
	Discover      []string                `mapstructure:"discover"`
	Launch        launch.Settings         `mapstructure:"launch"`
	Logger        logging.Config          `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	d := launch.DefaultSettings()
	v.SetDefault("default_user", "admin")
	v.SetDefault("launch.plugin_root", d.PluginRoot)
	v.SetDefault("launch.runner", d.Runner)
	v.SetDefault("launch.inherit_stdio", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.to_stderr", true)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the client config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfig resolves and loads the client config (explicit wins). A missing
// config is not an error: defaults are used. The result and its logging block
// are registered in configloader.
func LoadConfig(explicit string) (*Config, error) {
	var cfg *Config
	path, err := configloader.ResolveConfigPath(explicit, "launchgeist", "launchgeist.yaml")
	switch {
	case errors.Is(err, configloader.ErrNoConfig):
		cfg = Default()
	case err != nil:
		return nil, err
	default:
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	if err := logging.Configure(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("[launchgeist] failed to init logger: %w", err)
	}
	configloader.StoreConfig(cfg)
	return cfg, nil
}

// Daemon returns the named daemon target. An empty name selects
// DefaultDaemon, or the only/first configured daemon.
func (c *Config) Daemon(name string) (string, DaemonConfig, error) {
	if name == "" {
		name = c.DefaultDaemon
	}
	if name == "" {
		names := c.DaemonNames()
		if len(names) == 0 {
			return "", DaemonConfig{}, fmt.Errorf("no daemons configured")
		}
		name = names[0]
	}
	d, ok := c.Daemons[name]
	if !ok {
		return "", DaemonConfig{}, fmt.Errorf("daemon '%s' not found", name)
	}
	return name, d, nil
}

// DaemonNames returns the configured daemon names, sorted.
func (c *Config) DaemonNames() []string {
	names := make([]string, 0, len(c.Daemons))
	for name := range c.Daemons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// User returns the control user name to authenticate as.
func (c *Config) User(name string) string {
	if name != "" {
		return name
	}
	return c.DefaultUser
}

// Token returns the token configured for user, if any.
func (c *Config) Token(user string) string {
	return c.Users[user].Token
}
