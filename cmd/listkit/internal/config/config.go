// Package config loads the optional listkit.yaml file and resolves the
// settings used by the listkit command.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/listkit/pkg/errors"
)

// FileName is the name of the configuration file.
const FileName = "listkit.yaml"

// Config represents the optional listkit.yaml configuration.
type Config struct {
	App  AppConfig  `yaml:"app"`
	List ListConfig `yaml:"list"`
	Log  LogConfig  `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// ListConfig describes the simulated list. Zero values take defaults.
type ListConfig struct {
	Items       int     `yaml:"items,omitempty"`
	ItemExtent  float64 `yaml:"item_extent,omitempty"`
	CacheExtent float64 `yaml:"cache_extent,omitempty"`
	Viewport    float64 `yaml:"viewport,omitempty"`
	CacheItems  int     `yaml:"cache_items,omitempty"`
	SpareItems  int     `yaml:"spare_items,omitempty"`
	Step        float64 `yaml:"step,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Defaults applied by Resolve.
const (
	DefaultItems       = 1000
	DefaultItemExtent  = 48
	DefaultCacheExtent = 96
	DefaultViewport    = 800
	DefaultCacheItems  = 16
	DefaultSpareItems  = 8
	DefaultLogLevel    = "info"
)

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	AppName     string
	Items       int
	ItemExtent  float64
	CacheExtent float64
	Viewport    float64
	CacheItems  int
	SpareItems  int
	Step        float64
	LogLevel    string
}

// LoadOptional reads listkit.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads listkit.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	r := &Resolved{
		Root:        dir,
		ModulePath:  modulePath,
		AppName:     appName,
		Items:       orInt(cfg.List.Items, DefaultItems),
		ItemExtent:  orFloat(cfg.List.ItemExtent, DefaultItemExtent),
		CacheExtent: orFloat(cfg.List.CacheExtent, DefaultCacheExtent),
		Viewport:    orFloat(cfg.List.Viewport, DefaultViewport),
		CacheItems:  orInt(cfg.List.CacheItems, DefaultCacheItems),
		SpareItems:  orInt(cfg.List.SpareItems, DefaultSpareItems),
		Step:        cfg.List.Step,
		LogLevel:    strings.ToLower(strings.TrimSpace(cfg.Log.Level)),
	}
	if r.Step == 0 {
		r.Step = r.Viewport / 2
	}
	if r.LogLevel == "" {
		r.LogLevel = DefaultLogLevel
	}

	if err := r.validate(); err != nil {
		return nil, &errors.KitError{Op: "config.Resolve", Kind: errors.KindConfig, Err: err, Position: -1}
	}
	return r, nil
}

// FindProjectRoot walks up from the current directory to the first
// directory containing listkit.yaml or go.mod. It falls back to the current
// directory.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

func (r *Resolved) validate() error {
	switch {
	case r.Items < 0:
		return fmt.Errorf("list.items cannot be negative (got %d)", r.Items)
	case r.ItemExtent < 0:
		return fmt.Errorf("list.item_extent must be positive (got %v)", r.ItemExtent)
	case r.CacheExtent < 0:
		return fmt.Errorf("list.cache_extent cannot be negative (got %v)", r.CacheExtent)
	case r.Viewport < 0:
		return fmt.Errorf("list.viewport must be positive (got %v)", r.Viewport)
	case r.Step < 0:
		return fmt.Errorf("list.step must be positive (got %v)", r.Step)
	}
	switch r.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", r.LogLevel)
	}
	return nil
}

// modulePath returns the module path of dir/go.mod, or "" when there is no
// go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "listkit"
	}
	return base
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
