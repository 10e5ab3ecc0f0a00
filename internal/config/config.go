// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "fxmod"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

// configDirOverride lets tests point Load at a private directory.
var configDirOverride string

// Config holds tool-level defaults. Every field can be overridden on the
// command line.
type Config struct {
	// GitModulesFile is the default manifest filename.
	GitModulesFile string
	// Exclude lists submodule names dropped from every invocation.
	Exclude []string
	// Verbose raises the default log level to info.
	Verbose bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		GitModulesFile: ".gitmodules",
	}
}

// ConfigDir returns the fxmod configuration directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// SetConfigDirOverride points Load at dir instead of the platform config
// directory. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Load reads the optional config file and FXMOD_* environment variables.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("gitmodules_file", defaults.GitModulesFile)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix("FXMOD")
	v.AutomaticEnv()

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &Config{
		GitModulesFile: v.GetString("gitmodules_file"),
		Exclude:        v.GetStringSlice("exclude"),
		Verbose:        v.GetBool("verbose"),
	}, nil
}
