package paths

import (
	"os"
	"path/filepath"
)

const appName = "jbsearch"

// Dirs holds the base directories that discovery and configuration resolve
// against. Zero fields fall back to the XDG defaults.
type Dirs struct {
	Home       string
	ConfigHome string
	DataHome   string
}

func (d Dirs) home() string {
	if d.Home != "" {
		return d.Home
	}
	return DefaultHome()
}

// HomeDir returns the user's home directory.
func (d Dirs) HomeDir() string { return d.home() }

// ConfigDir returns $XDG_CONFIG_HOME (or ~/.config).
func (d Dirs) ConfigDir() string {
	if d.ConfigHome != "" {
		return d.ConfigHome
	}
	if d.Home == "" {
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			return x
		}
	}
	return filepath.Join(d.home(), ".config")
}

// DataDir returns $XDG_DATA_HOME (or ~/.local/share).
func (d Dirs) DataDir() string {
	if d.DataHome != "" {
		return d.DataHome
	}
	if d.Home == "" {
		if x := os.Getenv("XDG_DATA_HOME"); x != "" {
			return x
		}
	}
	return filepath.Join(d.home(), ".local", "share")
}

// Expand substitutes ${HOME}, ${XDG_CONFIG_HOME} and ${XDG_DATA_HOME} in a
// config-root pattern. Other variables come from the process environment.
func (d Dirs) Expand(pattern string) string {
	return os.Expand(pattern, func(key string) string {
		switch key {
		case "HOME":
			return d.home()
		case "XDG_CONFIG_HOME":
			return d.ConfigDir()
		case "XDG_DATA_HOME":
			return d.DataDir()
		}
		return os.Getenv(key)
	})
}

func DefaultHome() string {
	home, _ := os.UserHomeDir()
	return home
}

func DefaultConfigPath() string {
	return filepath.Join(Dirs{}.ConfigDir(), appName, "config.yaml")
}
