// Package config loads settings from an optional YAML file and JBSEARCH_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/gurisko/jbsearch/internal/discovery"
	"github.com/gurisko/jbsearch/internal/launcher"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/paths"
)

const (
	// BusName is the well-known name the service owns on the session bus.
	BusName = "io.github.gurisko.jbsearch.SearchProvider"
	// ObjectPath is where the search provider object lives.
	ObjectPath = "/io/github/gurisko/jbsearch/SearchProvider"

	envPrefix = "JBSEARCH"
)

// ErrConfigNotFound is returned when an explicitly requested file is missing
var ErrConfigNotFound = errors.New("config file not found")

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Bus       BusConfig       `mapstructure:"bus"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Products  ProductsConfig  `mapstructure:"products"`
	Launch    LaunchConfig    `mapstructure:"launch"`
	Paths     PathsConfig     `mapstructure:"paths"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusConfig struct {
	Name       string `mapstructure:"name"`
	ObjectPath string `mapstructure:"object_path"`
}

type DiscoveryConfig struct {
	AllVersions      bool `mapstructure:"all_versions"`
	ReadProjectNames bool `mapstructure:"read_project_names"`
	GitBranch        bool `mapstructure:"git_branch"`
	Workers          int  `mapstructure:"workers"`
}

type ProductsConfig struct {
	Disabled    []string          `mapstructure:"disabled"`
	Executables map[string]string `mapstructure:"executables"`
}

type LaunchConfig struct {
	ScopePrefix    string `mapstructure:"scope_prefix"`
	DefaultProduct string `mapstructure:"default_product"`
}

type PathsConfig struct {
	Home       string `mapstructure:"home"`
	ConfigHome string `mapstructure:"config_home"`
	DataHome   string `mapstructure:"data_home"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("bus.name", BusName)
	v.SetDefault("bus.object_path", ObjectPath)
	v.SetDefault("discovery.all_versions", false)
	v.SetDefault("discovery.read_project_names", true)
	v.SetDefault("discovery.git_branch", false)
	v.SetDefault("discovery.workers", 4)
	v.SetDefault("products.disabled", []string{})
	v.SetDefault("products.executables", map[string]string{})
	v.SetDefault("launch.scope_prefix", launcher.DefaultScopePrefix)
	v.SetDefault("launch.default_product", "")
	v.SetDefault("paths.home", "")
	v.SetDefault("paths.config_home", "")
	v.SetDefault("paths.data_home", "")
}

// Load reads configuration. With an empty path the default location is
// tried and silently skipped when absent; an explicit path must exist.
// The second return value is the file actually read, if any.
func Load(path string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = paths.DefaultConfigPath()
	}

	resolved := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
		}
		resolved = path
	} else if explicit {
		return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Discovery.Workers <= 0 {
		return nil, "", fmt.Errorf("discovery.workers must be positive, got %d", cfg.Discovery.Workers)
	}
	return &cfg, resolved, nil
}

// Dirs returns the base directories discovery resolves against.
func (c *Config) Dirs() paths.Dirs {
	return paths.Dirs{Home: c.Paths.Home, ConfigHome: c.Paths.ConfigHome, DataHome: c.Paths.DataHome}
}

// Logging converts to the logging package's settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// DiscoveryOptions converts to the discovery package's settings.
func (c *Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		Dirs:             c.Dirs(),
		AllVersions:      c.Discovery.AllVersions,
		ReadProjectNames: c.Discovery.ReadProjectNames,
		GitBranch:        c.Discovery.GitBranch,
		Workers:          c.Discovery.Workers,
	}
}

// LauncherConfig converts to the launcher package's settings.
func (c *Config) LauncherConfig() launcher.Config {
	return launcher.Config{ScopePrefix: c.Launch.ScopePrefix, Executables: c.Products.Executables}
}
