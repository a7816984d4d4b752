// Package config loads marmot settings from layered YAML files.
//
// Precedence, lowest to highest: built-in defaults, the global file
// (~/.marmot/config.yaml), the project file (<project>/.marmot.yaml),
// then explicit overrides supplied by the caller. Missing files are
// fine; malformed files are errors. The result is a fixed, fully
// resolved Settings value — no layer survives past Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// GlobalFileName is the per-user settings file under ~/.marmot.
const GlobalFileName = "config.yaml"

// ProjectFileName is the per-project settings file at the project root.
const ProjectFileName = ".marmot.yaml"

// Settings is the resolved configuration consumed by the rest of marmot.
type Settings struct {
	// StorageRoot holds the day files, audit file and session tree.
	StorageRoot string
	// LoggingEnabled gates the event log writer.
	LoggingEnabled bool
	// ScopeFilters restricts memory read paths to matching scopes.
	// Patterns use glob syntax ("auth", "api-*"). Empty means no filter.
	ScopeFilters []string
	// RecallLimit is the default recall result cap.
	RecallLimit int
}

// Overlay is one settings layer. Nil fields leave the lower layers'
// values in place; ScopeFilters replaces as a whole when non-nil.
type Overlay struct {
	StorageRoot    *string  `yaml:"storage_root"`
	LoggingEnabled *bool    `yaml:"logging_enabled"`
	ScopeFilters   []string `yaml:"scope_filters"`
	RecallLimit    *int     `yaml:"recall_limit"`
}

// Defaults returns the built-in settings layer.
func Defaults() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		StorageRoot:    filepath.Join(home, ".marmot", "memory"),
		LoggingEnabled: true,
		RecallLimit:    20,
	}
}

// Load resolves settings for a project directory: defaults, then the
// global file, then the project file, then the given override layer.
// projectRoot may be empty to skip the project layer.
func Load(projectRoot string, override Overlay) (Settings, error) {
	s := Defaults()

	home, err := os.UserHomeDir()
	if err == nil {
		s, err = applyFile(s, filepath.Join(home, ".marmot", GlobalFileName))
		if err != nil {
			return Settings{}, err
		}
	}

	if projectRoot != "" {
		s, err = applyFile(s, filepath.Join(projectRoot, ProjectFileName))
		if err != nil {
			return Settings{}, err
		}
	}

	return apply(s, override), nil
}

// CompileScopeFilters turns the filter patterns into glob matchers.
func (s Settings) CompileScopeFilters() ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, p := range s.ScopeFilters {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("config: scope filter %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func applyFile(s Settings, path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return apply(s, o), nil
}

func apply(s Settings, o Overlay) Settings {
	if o.StorageRoot != nil {
		s.StorageRoot = *o.StorageRoot
	}
	if o.LoggingEnabled != nil {
		s.LoggingEnabled = *o.LoggingEnabled
	}
	if o.ScopeFilters != nil {
		s.ScopeFilters = o.ScopeFilters
	}
	if o.RecallLimit != nil {
		s.RecallLimit = *o.RecallLimit
	}
	return s
}
