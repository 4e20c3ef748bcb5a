// Package settings holds confstack's own knobs, as opposed to the project
// configuration the tool resolves. Settings are layered the usual way:
// command-line flags over environment variables over the confstack.ini file
// in the platform config directory over built-in defaults.
package settings

import (
	"os"
	"path/filepath"
	"runtime"
)

// Settings is the resolved tool configuration.
type Settings struct {
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `ini:"log-level" env:"LOG_LEVEL"`
	// NoColor disables colored diagnostics output.
	NoColor bool `ini:"no-color" env:"NO_COLOR"`
	// Project is the path of the project configuration file.
	Project string `ini:"project" env:"PROJECT"`
	// DropInDir holds override fragments applied after the project file.
	DropInDir string `ini:"drop-in-dir" env:"DROP_IN_DIR"`
	// EnvPrefix marks environment variables forming the top override layer
	// of the resolved project configuration.
	EnvPrefix string `ini:"env-prefix" env:"ENV_PREFIX"`
}

func defaults() *Settings {
	return &Settings{
		LogLevel:  "info",
		Project:   "pyproject.toml",
		DropInDir: "pyproject.toml.d",
		EnvPrefix: "CONFSTACK_SET_",
	}
}

// ConfigDir returns the platform configuration directory for confstack:
// Application Support on macOS, APPDATA on Windows, XDG config elsewhere.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "confstack")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "confstack")
	default:
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" {
			xdg = filepath.Join(home, ".config")
		}
		return filepath.Join(xdg, "confstack")
	}
}

// DefaultFilePath is the expected location of the tool's own INI file.
func DefaultFilePath() string {
	return filepath.Join(ConfigDir(), "confstack.ini")
}
