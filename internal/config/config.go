// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package config handles application configuration including reading and writing
// configuration files, managing SSH host definitions, and providing the
// defaults applied to the batch commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SSHHost represents a remote SSH host configuration. Remote hosts are used
// by the fixtz command to run exiftool next to the files, typically on a NAS
// holding the photo archive.
type SSHHost struct {
	// Name is the unique identifier for this host configuration
	Name string `yaml:"name"`

	// Hostname is the server address (IP or domain)
	Hostname string `yaml:"hostname"`

	// User is the SSH username for authentication
	User string `yaml:"user"`

	// Port is the SSH port number (optional, defaults to standard SSH port)
	Port int `yaml:"port,omitempty"`

	// KeyPath is the path to the SSH private key file
	KeyPath string `yaml:"key_path,omitempty"`

	// Password is an optional authentication method (plaintext, discouraged)
	Password string `yaml:"password,omitempty"`

	// Disabled indicates whether this host should be skipped
	Disabled bool `yaml:"disabled,omitempty"`
}

// Defaults supplies the shrink flag defaults when the flags are not given
// on the command line.
type Defaults struct {
	// OutFormat is the output image format ("jpeg" or "png")
	OutFormat string `yaml:"out_format,omitempty"`

	// Quality is the JPEG quality, 1-95
	Quality int `yaml:"quality,omitempty"`

	// MaxEdge is the maximum long-edge in pixels after shrinking
	MaxEdge int `yaml:"max_edge,omitempty"`

	// Workers is the number of parallel workers for batch processing
	Workers int `yaml:"workers,omitempty"`
}

// Config represents the top-level application configuration
type Config struct {
	// Defaults for the shrink command (optional)
	Defaults Defaults `yaml:"defaults,omitempty"`

	// SSHHosts is a list of remote SSH host configurations
	SSHHosts []SSHHost `yaml:"ssh_hosts"`
}

// FindHost returns the named host, or nil if it is not configured.
func (c Config) FindHost(name string) *SSHHost {
	for i := range c.SSHHosts {
		if c.SSHHosts[i].Name == name {
			return &c.SSHHosts[i]
		}
	}
	return nil
}

// EffectiveDefaults fills in the hardcoded fallbacks for any defaults the
// config file leaves unset.
func (c Config) EffectiveDefaults() Defaults {
	d := c.Defaults
	if d.OutFormat == "" {
		d.OutFormat = "jpeg"
	}
	if d.Quality == 0 {
		d.Quality = 80
	}
	if d.MaxEdge == 0 {
		d.MaxEdge = 6000
	}
	if d.Workers == 0 {
		d.Workers = runtime.NumCPU()
	}
	return d
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "photobatch", "config.yaml"), nil
}

func LoadConfig() (Config, error) {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg.SSHHosts = slices.DeleteFunc(cfg.SSHHosts, func(h SSHHost) bool {
		return h.Disabled
	})

	return cfg, nil
}

func EnsureConfigDir() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(configPath)
	err = os.MkdirAll(configDir, 0750) // rwxr-x---
	if err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}

func SaveConfig(cfg Config) error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}

	err = EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Write with permissions rw-r----- (0640)
	err = os.WriteFile(configPath, data, 0640)
	if err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configPath, err)
	}

	return nil
}

func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
