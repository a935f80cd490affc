// Package context resolves which project config a command operates on.
package context

import (
	"errors"
	"os"
	"path/filepath"
)

// ProjectConfigName is the file name searched for when no config is given.
const ProjectConfigName = "project_config.yaml"

// ConfigEnvVar names an explicit project config path.
const ConfigEnvVar = "PEPPY_CONFIG"

// ErrNoProjectConfig is returned when no project config can be found
var ErrNoProjectConfig = errors.New("no project config found (use --config or $PEPPY_CONFIG)")

// Context holds the resolved runtime context for peppy CLI commands.
type Context struct {
	ConfigPath string // Absolute path to the project config
	ProjectDir string // Directory containing the project config
}

// Resolve determines the project config:
// 1. --config flag
// 2. $PEPPY_CONFIG
// 3. project_config.yaml in the working directory or a parent
func Resolve(configFlag string) (*Context, error) {
	path := configFlag
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path == "" {
		path = FindProjectConfig()
	}
	if path == "" {
		return nil, ErrNoProjectConfig
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		return nil, ErrNoProjectConfig
	}

	return &Context{
		ConfigPath: abs,
		ProjectDir: filepath.Dir(abs),
	}, nil
}

// FindProjectConfig returns the path to the nearest project_config.yaml,
// searching the working directory and its parents. Returns empty string
// if not found.
func FindProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findProjectConfigFrom(dir)
}

func findProjectConfigFrom(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
