// Package config loads kernc.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file searched for upward from the working
// directory.
const FileName = "kernc.toml"

// DefaultEnvVar is the environment variable read for a target override.
const DefaultEnvVar = "KERNC_TARGET"

// Config is the decoded kernc.toml.
type Config struct {
	Target TargetConfig `toml:"target"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`

	// Path is the file the configuration was loaded from, "" for defaults.
	Path string `toml:"-"`
}

type TargetConfig struct {
	// Override is used when neither a --target flag nor the environment
	// variable is set.
	Override string `toml:"override"`
	// Env names the environment variable read for an override.
	Env string `toml:"env"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	Codec   string `toml:"codec"`  // none | zstd | lz4
	Remote  string `toml:"remote"` // none | s3 | minio

	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Secure   bool   `toml:"secure"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // text | json
}

// Error reports an invalid configuration value.
type Error struct {
	Path string
	Key  string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	loc := e.Path
	if loc == "" {
		loc = FileName
	}
	switch {
	case e.Err != nil && e.Key == "":
		return fmt.Sprintf("%s: %v", loc, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", loc, e.Key, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", loc, e.Key, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Default returns the configuration used when no kernc.toml exists.
func Default() Config {
	return Config{
		Target: TargetConfig{Env: DefaultEnvVar},
		Cache: CacheConfig{
			Enabled: true,
			Codec:   "zstd",
			Remote:  "none",
			Prefix:  "kernc/",
			Secure:  true,
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Find walks from startDir to the filesystem root looking for kernc.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest kernc.toml above startDir, or the defaults when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, &Error{Path: path, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, &Error{Path: path, Key: undecoded[0].String(), Msg: "unknown key"}
	}
	if meta.IsDefined("target", "env") && strings.TrimSpace(cfg.Target.Env) == "" {
		return Config{}, &Error{Path: path, Key: "target.env", Msg: "must not be empty"}
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate checks enumerated values and remote cache requirements.
func (c *Config) Validate() error {
	oneOf := func(key, v string, allowed ...string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return &Error{Path: c.Path, Key: key, Msg: fmt.Sprintf("%q is not one of %s", v, strings.Join(allowed, ", "))}
	}
	if err := oneOf("cache.codec", c.Cache.Codec, "none", "zstd", "lz4"); err != nil {
		return err
	}
	if err := oneOf("cache.remote", c.Cache.Remote, "none", "s3", "minio"); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, "text", "json"); err != nil {
		return err
	}
	if c.Cache.Remote != "none" && strings.TrimSpace(c.Cache.Bucket) == "" {
		return &Error{Path: c.Path, Key: "cache.bucket", Msg: "required when cache.remote is " + c.Cache.Remote}
	}
	if c.Cache.Remote == "minio" && strings.TrimSpace(c.Cache.Endpoint) == "" {
		return &Error{Path: c.Path, Key: "cache.endpoint", Msg: "required when cache.remote is minio"}
	}
	return nil
}

// CacheDir returns the local cache directory, defaulting to
// $XDG_CACHE_HOME/kernc or ~/.cache/kernc.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "kernc"), nil
}
