// Package config loads kdeps settings from a TOML file.
//
// A configuration file is optional. When present it supplies defaults for
// the command-line flags; an explicitly set flag always wins:
//
//	output        = "lib"
//	pom_dir       = "pom"
//	repository    = "https://repo1.maven.org/maven2"
//	exclusion_key = "version"   # version, module or legacy
//	workers       = 4
//	max_depth     = 0           # 0 means unlimited
//	retries       = 1
//	skip_optional = false
//	skip_audit    = false
//	placeholders  = ["${project.parent.version}", "${parent.version}"]
//
//	[cache]
//	disabled = false
//	ttl      = "24h"
//	redis    = "redis://localhost:6379/0"
//
//	[headers]
//	Authorization = "Bearer …"
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kdeps/pkg/cache"
	"github.com/matzehuels/kdeps/pkg/deps"
	"github.com/matzehuels/kdeps/pkg/errors"
	"github.com/matzehuels/kdeps/pkg/maven"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "kdeps.toml"

// Config holds every setting that can come from a configuration file.
type Config struct {
	Output       string            `toml:"output"`
	PomDir       string            `toml:"pom_dir"`
	Repository   string            `toml:"repository"`
	ExclusionKey string            `toml:"exclusion_key"`
	Workers      int               `toml:"workers"`
	MaxDepth     int               `toml:"max_depth"`
	Retries      int               `toml:"retries"`
	SkipOptional bool              `toml:"skip_optional"`
	SkipAudit    bool              `toml:"skip_audit"`
	Placeholders []string          `toml:"placeholders"`
	Cache        Cache             `toml:"cache"`
	Headers      map[string]string `toml:"headers"`
}

// Cache configures the metadata cache.
type Cache struct {
	Disabled bool     `toml:"disabled"`
	TTL      Duration `toml:"ttl"`
	Redis    string   `toml:"redis"`
	Dir      string   `toml:"dir"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Output:       deps.DefaultOutputDir,
		PomDir:       deps.DefaultMetadataDir,
		Repository:   maven.DefaultBaseURL,
		ExclusionKey: maven.KeyWithVersion.String(),
		Workers:      deps.DefaultWorkers,
		Retries:      1,
		Cache:        Cache{TTL: Duration{cache.DefaultTTL}},
	}
}

// Load reads the file at path on top of [Default]. Unknown keys are
// rejected so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Find returns the path of FileName in dir, if it exists.
func Find(dir string) (string, bool) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must be at least 1, got %d", c.Retries)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if _, err := c.KeyMode(); err != nil {
		return err
	}
	u, err := url.Parse(c.Repository)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "repository must be an http(s) URL, got %q", c.Repository)
	}
	return nil
}

// KeyMode parses ExclusionKey.
func (c Config) KeyMode() (maven.KeyMode, error) {
	m, err := maven.ParseKeyMode(c.ExclusionKey)
	if err != nil {
		return m, errors.Wrap(errors.ErrCodeInvalidConfig, err, "exclusion_key")
	}
	return m, nil
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}
