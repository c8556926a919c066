package config

import (
	"errors"
	"fmt"
	"strings"

	"chataudio/internal/timestamps"
)

// Validate ensures the configuration is usable. The contact filter is not
// required here because only the export and list commands need it; see
// RequireContact.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireContact reports an actionable error when no contact filter is set.
func (c *Config) RequireContact() error {
	if strings.TrimSpace(c.Source.Contact) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("source.contact is required. Pass --contact, set CHATAUDIO_CONTACT, or edit %s (create with 'chataudio config init')", defaultPath)
}

func (c *Config) validateSource() error {
	if strings.TrimSpace(c.Source.DatabasePath) == "" {
		return errors.New("source.database_path must be set")
	}
	if strings.TrimSpace(c.Source.MIMEPrefix) == "" {
		return errors.New("source.mime_prefix must be set")
	}
	if _, err := timestamps.ParseUnit(c.Source.TimestampUnit); err != nil {
		return fmt.Errorf("source.timestamp_unit: %w", err)
	}
	return nil
}

func (c *Config) validateExport() error {
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		return errors.New("export.output_dir must be set")
	}
	if c.Export.Workers < 1 {
		return errors.New("export.workers must be positive")
	}
	return nil
}

func (c *Config) validateManifest() error {
	if len(c.Manifest.Extensions) == 0 {
		return errors.New("manifest.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
