package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"chataudio/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Source describes where attachment records come from.
type Source struct {
	DatabasePath  string `toml:"database_path"`
	Contact       string `toml:"contact"`
	MIMEPrefix    string `toml:"mime_prefix"`
	TimestampUnit string `toml:"timestamp_unit"`
}

// Export contains configuration for the copy stage.
type Export struct {
	OutputDir string `toml:"output_dir"`
	Workers   int    `toml:"workers"`
	Verify    bool   `toml:"verify"`
}

// Manifest contains configuration for the JSON listing of exported files.
type Manifest struct {
	Enabled    bool     `toml:"enabled"`
	Path       string   `toml:"path"`
	URLPrefix  string   `toml:"url_prefix"`
	Extensions []string `toml:"extensions"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for chataudio.
//
// Configuration sections:
//   - Source: message database location, contact filter, timestamp unit
//   - Export: output directory, worker count, copy verification
//   - Manifest: JSON listing of exported audio files
//   - Logging: log format, level, and optional file
//   - Metrics: Prometheus textfile path for cron-style runs
type Config struct {
	Source   Source   `toml:"source"`
	Export   Export   `toml:"export"`
	Manifest Manifest `toml:"manifest"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chataudio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the parent directories of the configured log and
// metrics files. The output directory is created by the exporter itself so
// dry runs leave the filesystem untouched.
func (c *Config) EnsureDirectories() error {
	for _, file := range []string{c.Logging.File, c.Metrics.Textfile} {
		if strings.TrimSpace(file) == "" {
			continue
		}
		dir := filepath.Dir(file)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ManifestPath returns the manifest location, defaulting to a file inside the
// output directory.
func (c *Config) ManifestPath() string {
	return c.ManifestPathFor(c.Export.OutputDir)
}

// ManifestPathFor returns the configured manifest path, or the default
// manifest file inside dir when none is configured.
func (c *Config) ManifestPathFor(dir string) string {
	if strings.TrimSpace(c.Manifest.Path) != "" {
		return c.Manifest.Path
	}
	return filepath.Join(dir, defaultManifestName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := fileutil.ExpandHome(pathValue)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Overrides carries command-line values that take precedence over the file
// and environment. Zero values leave the loaded setting untouched.
type Overrides struct {
	Contact      string
	DatabasePath string
	OutputDir    string
	Workers      int
	Verify       bool
	Manifest     bool
}

// Apply layers the overrides onto the config, then re-expands paths and
// re-validates.
func (c *Config) Apply(o Overrides) error {
	if v := strings.TrimSpace(o.Contact); v != "" {
		c.Source.Contact = v
	}
	if v := strings.TrimSpace(o.DatabasePath); v != "" {
		c.Source.DatabasePath = v
	}
	if v := strings.TrimSpace(o.OutputDir); v != "" {
		c.Export.OutputDir = v
	}
	if o.Workers != 0 {
		c.Export.Workers = o.Workers
	}
	if o.Verify {
		c.Export.Verify = true
	}
	if o.Manifest {
		c.Manifest.Enabled = true
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	return c.Validate()
}
