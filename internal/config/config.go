package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents a comprehend.yaml project file.
type Config struct {
	// Elem, Key and Value are the default Go types used for sinks.
	Elem  string `yaml:"elem,omitempty"`
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`

	// Dup selects the duplication policy: per_pass (default) or hoisted.
	Dup string `yaml:"dup,omitempty"`

	// Cache is the path of the SQLite compilation cache used by generate.
	// Relative paths are resolved against the config file's directory.
	// Empty disables caching.
	Cache string `yaml:"cache,omitempty"`

	// Manifest is the default manifest for generate.
	Manifest string `yaml:"manifest,omitempty"`

	Log LogConfig `yaml:"log,omitempty"`

	// dir is the directory holding the file, used to resolve relative paths.
	dir string
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a comprehend.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses comprehend.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for comprehend.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest project file above dir, or the defaults.
func Discover(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	if _, err := ParseDupPolicy(c.Dup); err != nil {
		return fmt.Errorf("%s: dup: %w", path, err)
	}
	for field, typ := range map[string]string{"elem": c.Elem, "key": c.Key, "value": c.Value} {
		if strings.ContainsAny(typ, "\n;") {
			return fmt.Errorf("%s: %s: %q is not a Go type", path, field, typ)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%s: log.format must be text or json, got %q", path, c.Log.Format)
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Elem == "" {
		c.Elem = DefaultType
	}
	if c.Key == "" {
		c.Key = DefaultType
	}
	if c.Value == "" {
		c.Value = DefaultType
	}
	if c.Dup == "" {
		c.Dup = PerPass.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Options converts the file settings into code generation options.
func (c *Config) Options() Options {
	dup, _ := ParseDupPolicy(c.Dup) // validated on load
	return Options{Elem: c.Elem, Key: c.Key, Value: c.Value, Dup: dup}.WithDefaults()
}

// Resolve makes a path from the file relative to the file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Dir is the directory of the loaded file, or "" for defaults.
func (c *Config) Dir() string {
	return c.dir
}
