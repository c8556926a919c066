package config

import (
	"fmt"
	"os"
	"strings"
)

// envOverrides maps environment variables onto the fields they replace.
// Precedence is defaults < config file < environment < command-line flags.
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"CHATAUDIO_CONTACT", func(c *Config) *string { return &c.Source.Contact }},
	{"CHATAUDIO_DB", func(c *Config) *string { return &c.Source.DatabasePath }},
	{"CHATAUDIO_OUTPUT_DIR", func(c *Config) *string { return &c.Export.OutputDir }},
}

func (c *Config) applyEnv() {
	for _, override := range envOverrides {
		if value, ok := os.LookupEnv(override.name); ok && strings.TrimSpace(value) != "" {
			*override.field(c) = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizeSource(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	if err := c.normalizeManifest(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeSource() error {
	c.Source.Contact = strings.TrimSpace(c.Source.Contact)
	if strings.TrimSpace(c.Source.DatabasePath) == "" {
		c.Source.DatabasePath = defaultDatabasePath
	}
	var err error
	if c.Source.DatabasePath, err = expandPath(c.Source.DatabasePath); err != nil {
		return fmt.Errorf("source.database_path: %w", err)
	}
	if strings.TrimSpace(c.Source.MIMEPrefix) == "" {
		c.Source.MIMEPrefix = defaultMIMEPrefix
	}
	c.Source.MIMEPrefix = strings.ToLower(strings.TrimSpace(c.Source.MIMEPrefix))
	c.Source.TimestampUnit = strings.ToLower(strings.TrimSpace(c.Source.TimestampUnit))
	if c.Source.TimestampUnit == "" {
		c.Source.TimestampUnit = defaultTimestampUnit
	}
	return nil
}

func (c *Config) normalizeExport() error {
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		c.Export.OutputDir = defaultOutputDir
	}
	var err error
	if c.Export.OutputDir, err = expandPath(c.Export.OutputDir); err != nil {
		return fmt.Errorf("export.output_dir: %w", err)
	}
	if c.Export.Workers == 0 {
		c.Export.Workers = defaultWorkers
	}
	return nil
}

func (c *Config) normalizeManifest() error {
	var err error
	if strings.TrimSpace(c.Manifest.Path) != "" {
		if c.Manifest.Path, err = expandPath(strings.TrimSpace(c.Manifest.Path)); err != nil {
			return fmt.Errorf("manifest.path: %w", err)
		}
	}
	if strings.TrimSpace(c.Manifest.URLPrefix) == "" {
		c.Manifest.URLPrefix = defaultURLPrefix
	}
	if len(c.Manifest.Extensions) == 0 {
		c.Manifest.Extensions = append([]string(nil), defaultManifestExtensions...)
		return nil
	}
	exts := make([]string, 0, len(c.Manifest.Extensions))
	seen := make(map[string]struct{}, len(c.Manifest.Extensions))
	for _, ext := range c.Manifest.Extensions {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Manifest.Extensions = exts
	return nil
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File == "" {
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
