// Package configd loads the launchgeistd daemon configuration with Viper and
// registers it, together with its logging block, in the configloader registry.
package configd

import (
	"fmt"

	"github.com/mfulz/launchgeist/internal/auth"
	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/launch"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/spf13/viper"
)

// Config represents the full structure of the launchgeistd configuration file.
type Config struct {
	Resources string                  `mapstructure:"resources"` // path of the resource catalog (YAML)
	Discover  []string                `mapstructure:"discover"`  // directories searched for more resources at startup
	Launch    launch.Settings         `mapstructure:"launch"`
	Control   ControlMultiConfig      `mapstructure:"control"`
	Auth      auth.Config             `mapstructure:"auth"`
	AppRules  map[string]auth.RuleSet `mapstructure:"app_rules"` // per-application launch rules by app label
	Metrics   MetricsConfig           `mapstructure:"metrics"`
	Logger    logging.Config          `mapstructure:"log"`
}

// ControlInstance describes a single control interface (e.g. unix socket or TCP listener).
type ControlInstance struct {
	Name    string `mapstructure:"name"`    // instance identifier
	Enabled bool   `mapstructure:"enabled"` // whether this instance is active
	Mode    string `mapstructure:"mode"`    // "unix" or "tcp"
	Listen  string `mapstructure:"listen"`  // address or socket path
}

// ControlMultiConfig supports multiple control instances with distinct settings.
type ControlMultiConfig struct {
	Instances []ControlInstance `mapstructure:"instances"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Listen    string `mapstructure:"listen"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	d := launch.DefaultSettings()
	v.SetDefault("launch.plugin_root", d.PluginRoot)
	v.SetDefault("launch.runner", d.Runner)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "launchgeist")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.to_stderr", true)
}

// Load reads and validates the config file at path.
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the control instances.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, inst := range c.Control.Instances {
		name := inst.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate control instance %q", name)
		}
		seen[name] = true
		if !inst.Enabled {
			continue
		}
		if inst.Mode != "unix" && inst.Mode != "tcp" {
			return fmt.Errorf("control instance %s: unsupported mode %q", name, inst.Mode)
		}
		if inst.Listen == "" {
			return fmt.Errorf("control instance %s: listen is empty", name)
		}
	}
	return nil
}

// LoadConfig resolves the daemon config path (explicit wins), loads it,
// reconfigures logging from its "log" block and registers it.
func LoadConfig(explicit string) (*Config, error) {
	path, err := configloader.ResolveConfigPath(explicit, "launchgeistd", "launchgeistd.yaml")
	if err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := logging.Configure(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("[launchgeistd] failed to init logger: %w", err)
	}

	configloader.StoreConfig(cfg)
	logging.Log.Debugf("[configd] loaded %s", path)
	return cfg, nil
}
