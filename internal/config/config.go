// Package config discovers and decodes phpext configuration files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ben-ranford/phpext/internal/safeio"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

var (
	ErrNotFound      = errors.New("config file not found")
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultNames are tried in order when no config path is given.
var DefaultNames = []string{".phpext.yml", ".phpext.yaml", ".phpext.toml", "phpext.json"}

// File holds the settings a config file may carry. Nil and empty fields were
// not set.
type File struct {
	Suffixes   []string `yaml:"suffixes" toml:"suffixes" json:"suffixes"`
	Exclude    []string `yaml:"exclude" toml:"exclude" json:"exclude"`
	Gitignore  *bool    `yaml:"gitignore" toml:"gitignore" json:"gitignore"`
	PHPVersion string   `yaml:"php_version" toml:"php_version" json:"php_version"`
	Catalogs   []string `yaml:"catalogs" toml:"catalogs" json:"catalogs"`
	Format     string   `yaml:"format" toml:"format" json:"format"`
	Jobs       *int     `yaml:"jobs" toml:"jobs" json:"jobs"`
	CacheDir   string   `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
}

// Load reads explicitPath, or the first default config found in dir. It
// returns the zero File and an empty path when there is nothing to load.
// Relative catalog and cache paths are resolved against the config file's
// directory.
func Load(dir, explicitPath string) (File, string, error) {
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return File{}, "", fmt.Errorf("resolve config dir: %w", err)
	}
	path, found, err := resolveConfigPath(dirAbs, strings.TrimSpace(explicitPath))
	if err != nil || !found {
		return File{}, "", err
	}
	data, err := safeio.ReadFile(path)
	if err != nil {
		return File{}, "", fmt.Errorf(readConfigFileErrFmt, path, err)
	}
	cfg, err := parse(path, data)
	if err != nil {
		return File{}, "", fmt.Errorf(parseConfigErrFmt, path, err)
	}
	if err := cfg.validate(); err != nil {
		return File{}, "", fmt.Errorf(parseConfigErrFmt, path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, path, nil
}

func resolveConfigPath(dir, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("%w: %s", ErrNotFound, candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range DefaultNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

func parse(path string, data []byte) (File, error) {
	var cfg File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return File{}, fmt.Errorf("%w: JSON: %v", ErrInvalidConfig, err)
		}
		if decoder.More() {
			return File{}, fmt.Errorf("%w: JSON: multiple JSON values", ErrInvalidConfig)
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return File{}, fmt.Errorf("%w: TOML: %v", ErrInvalidConfig, err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return cfg, nil
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return File{}, fmt.Errorf("%w: YAML: %v", ErrInvalidConfig, err)
		}
	}
	return cfg, nil
}

func (f File) validate() error {
	if f.Jobs != nil && *f.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalidConfig, *f.Jobs)
	}
	for _, suffix := range f.Suffixes {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("%w: suffixes must not contain empty entries", ErrInvalidConfig)
		}
	}
	return nil
}

func (f *File) resolvePaths(base string) {
	for i, path := range f.Catalogs {
		f.Catalogs[i] = resolveAgainst(base, path)
	}
	if f.CacheDir != "" {
		f.CacheDir = resolveAgainst(base, f.CacheDir)
	}
}

func resolveAgainst(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Override returns f with every field set in o taking precedence. A nil slice
// or pointer and an empty string mean "not set"; an empty non-nil slice clears
// the list.
func (f File) Override(o File) File {
	if o.Suffixes != nil {
		f.Suffixes = o.Suffixes
	}
	if o.Exclude != nil {
		f.Exclude = o.Exclude
	}
	if o.Gitignore != nil {
		f.Gitignore = o.Gitignore
	}
	if o.PHPVersion != "" {
		f.PHPVersion = o.PHPVersion
	}
	if o.Catalogs != nil {
		f.Catalogs = o.Catalogs
	}
	if o.Format != "" {
		f.Format = o.Format
	}
	if o.Jobs != nil {
		f.Jobs = o.Jobs
	}
	if o.CacheDir != "" {
		f.CacheDir = o.CacheDir
	}
	return f
}
