// Package config loads relmap settings from defaults, a YAML file,
// RELMAP_ environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/roach88/relmap/internal/dialect"
	"github.com/roach88/relmap/internal/store"
)

// Defaults.
const (
	DefaultDriver   = store.DriverSQLite
	DefaultDSN      = "relmap.db"
	DefaultSpecsDir = "specs"
	DefaultFormat   = "text"

	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "RELMAP_"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"relmap.yaml", "relmap.yml"}

// Config holds all relmap settings.
type Config struct {
	Driver   string            `koanf:"driver"`
	DSN      string            `koanf:"dsn"`
	Dialect  string            `koanf:"dialect"` // empty means the driver's dialect
	SpecsDir string            `koanf:"specs_dir"`
	Format   string            `koanf:"format"`
	Verbose  bool              `koanf:"verbose"`
	Pragmas  map[string]string `koanf:"pragmas"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"db": "dsn",
}

// Load builds a Config. Precedence, highest first: flags that were
// explicitly set, environment variables, the config file, defaults.
//
// cfgFile names the config file; when empty, FileNames are looked up in
// dir. flags may be nil.
func Load(cfgFile, dir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"driver":    DefaultDriver,
		"dsn":       DefaultDSN,
		"dialect":   "",
		"specs_dir": DefaultSpecsDir,
		"format":    DefaultFormat,
		"verbose":   false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile, dir)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// RELMAP_SPECS_DIR -> specs_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns explicit if set, otherwise the first of FileNames
// present in dir, otherwise "".
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Validate checks driver, dialect and output format, normalizing the
// driver name.
func (c *Config) Validate() error {
	driver, err := store.NormalizeDriver(c.Driver)
	if err != nil {
		return fmt.Errorf("invalid driver: %w", err)
	}
	c.Driver = driver

	if c.Dialect != "" {
		if _, err := dialect.Lookup(c.Dialect); err != nil {
			return fmt.Errorf("invalid dialect: %w", err)
		}
	}

	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be text or json", c.Format)
	}
	return nil
}

// DialectFor returns the configured dialect, or the driver's when none
// is set.
func (c *Config) DialectFor() (dialect.Dialect, error) {
	if c.Dialect != "" {
		return dialect.Lookup(c.Dialect)
	}
	return dialect.Lookup(c.Driver)
}

// StoreOptions converts c into options for store.Open.
func (c *Config) StoreOptions() (store.Options, error) {
	d, err := c.DialectFor()
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{
		Driver:  c.Driver,
		DSN:     c.DSN,
		Pragmas: c.Pragmas,
		Dialect: d,
	}, nil
}
