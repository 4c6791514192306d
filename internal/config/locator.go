package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names the environment variable pointing at a build profile.
const EnvConfigPath = "BINDBUILD_CONFIG"

// ConfigSource identifies where the build profile was discovered.
type ConfigSource string

const (
	ConfigSourceExplicit   ConfigSource = "explicit"
	ConfigSourceEnv        ConfigSource = "env"
	ConfigSourceWorkingDir ConfigSource = "working-dir"
	ConfigSourceXDG        ConfigSource = "xdg"
	ConfigSourceHome       ConfigSource = "home"
)

// LocationResult describes the discovered build profile.
type LocationResult struct {
	Path   string
	Source ConfigSource
}

// ErrConfigNotFound is returned when no build profile can be located.
var ErrConfigNotFound = errors.New("build profile not found")

// LocateConfig finds the build profile: explicit path, then BINDBUILD_CONFIG, ./bindbuild.yaml,
// $XDG_CONFIG_HOME/bindbuild/config.yaml and finally ~/.config/bindbuild/config.yaml.
// An explicit path or env value that does not exist is an error rather than a fallthrough.
func LocateConfig(explicitPath string) (LocationResult, error) {
	if path := strings.TrimSpace(explicitPath); path != "" {
		return mustExist(path, ConfigSourceExplicit)
	}

	if path, ok := os.LookupEnv(EnvConfigPath); ok && strings.TrimSpace(path) != "" {
		return mustExist(path, ConfigSourceEnv)
	}

	if wd, err := os.Getwd(); err == nil {
		path := filepath.Join(wd, "bindbuild.yaml")
		if exists(path) {
			return LocationResult{Path: path, Source: ConfigSourceWorkingDir}, nil
		}
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		path := filepath.Join(xdg, "bindbuild", "config.yaml")
		if exists(path) {
			return LocationResult{Path: path, Source: ConfigSourceXDG}, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		path := filepath.Join(home, ".config", "bindbuild", "config.yaml")
		if exists(path) {
			return LocationResult{Path: path, Source: ConfigSourceHome}, nil
		}
	}

	return LocationResult{}, ErrConfigNotFound
}

func mustExist(path string, source ConfigSource) (LocationResult, error) {
	abs, err := toAbsolute(filepath.Clean(strings.TrimSpace(path)))
	if err != nil {
		return LocationResult{}, err
	}
	if !exists(abs) {
		return LocationResult{}, fmt.Errorf("%w: %s", ErrConfigNotFound, abs)
	}
	return LocationResult{Path: abs, Source: source}, nil
}

func toAbsolute(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	return abs, nil
}

func exists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}
