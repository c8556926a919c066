package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"chataudio/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"CHATAUDIO_CONTACT", "CHATAUDIO_DB", "CHATAUDIO_OUTPUT_DIR"} {
		t.Setenv(name, "")
	}
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(home, ".config", "chataudio", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Source.DatabasePath != filepath.Join(home, "Library", "Messages", "chat.db") {
		t.Fatalf("unexpected database path: %q", cfg.Source.DatabasePath)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Export.OutputDir != filepath.Join(wd, "chat-audio") {
		t.Fatalf("unexpected output dir: %q", cfg.Export.OutputDir)
	}
	if cfg.Source.Contact != "" {
		t.Fatalf("expected no default contact, got %q", cfg.Source.Contact)
	}
	if cfg.Source.MIMEPrefix != "audio/" || cfg.Source.TimestampUnit != "auto" {
		t.Fatalf("unexpected source defaults: %+v", cfg.Source)
	}
	if cfg.Export.Workers != 1 || cfg.Export.Verify {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.ManifestPath() != filepath.Join(cfg.Export.OutputDir, "audio_files.json") {
		t.Fatalf("unexpected manifest path: %q", cfg.ManifestPath())
	}
	if err := cfg.RequireContact(); err == nil || !strings.Contains(err.Error(), "--contact") {
		t.Fatalf("expected actionable contact error, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	home := isolate(t)
	configPath := filepath.Join(t.TempDir(), "chataudio.toml")

	type payload struct {
		Source struct {
			DatabasePath  string `toml:"database_path"`
			Contact       string `toml:"contact"`
			TimestampUnit string `toml:"timestamp_unit"`
		} `toml:"source"`
		Export struct {
			OutputDir string `toml:"output_dir"`
			Workers   int    `toml:"workers"`
			Verify    bool   `toml:"verify"`
		} `toml:"export"`
		Manifest struct {
			Enabled    bool     `toml:"enabled"`
			Extensions []string `toml:"extensions"`
		} `toml:"manifest"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Source.DatabasePath = "~/backup/chat.db"
	custom.Source.Contact = "  +18324524392 "
	custom.Source.TimestampUnit = "NS"
	custom.Export.OutputDir = "~/audio"
	custom.Export.Workers = 4
	custom.Export.Verify = true
	custom.Manifest.Enabled = true
	custom.Manifest.Extensions = []string{".M4A", "caf", "m4a", " "}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Source.DatabasePath != filepath.Join(home, "backup", "chat.db") {
		t.Fatalf("unexpected database path: %q", cfg.Source.DatabasePath)
	}
	if cfg.Source.Contact != "+18324524392" {
		t.Fatalf("expected trimmed contact, got %q", cfg.Source.Contact)
	}
	if cfg.Source.TimestampUnit != "ns" {
		t.Fatalf("unexpected timestamp unit: %q", cfg.Source.TimestampUnit)
	}
	if cfg.Export.OutputDir != filepath.Join(home, "audio") || cfg.Export.Workers != 4 || !cfg.Export.Verify {
		t.Fatalf("unexpected export section: %+v", cfg.Export)
	}
	if diff := cmp.Diff([]string{"m4a", "caf"}, cfg.Manifest.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.Manifest.URLPrefix != "/" {
		t.Fatalf("expected default url prefix, got %q", cfg.Manifest.URLPrefix)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	home := isolate(t)
	configPath := filepath.Join(t.TempDir(), "chataudio.toml")
	content := "[source]\ncontact = \"file-contact\"\ndatabase_path = \"/file/chat.db\"\n\n[export]\noutput_dir = \"/file/out\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CHATAUDIO_CONTACT", "env-contact")
	t.Setenv("CHATAUDIO_DB", "~/env/chat.db")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Source.Contact != "env-contact" {
		t.Errorf("expected contact from env, got %q", cfg.Source.Contact)
	}
	if cfg.Source.DatabasePath != filepath.Join(home, "env", "chat.db") {
		t.Errorf("expected database path from env, got %q", cfg.Source.DatabasePath)
	}
	if cfg.Export.OutputDir != "/file/out" {
		t.Errorf("expected output dir from file, got %q", cfg.Export.OutputDir)
	}
}

func TestApplyOverridesWinOverEverything(t *testing.T) {
	home := isolate(t)
	t.Setenv("CHATAUDIO_CONTACT", "env-contact")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	err = cfg.Apply(config.Overrides{
		Contact:   "flag-contact",
		OutputDir: "~/flag-out",
		Workers:   3,
		Manifest:  true,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if cfg.Source.Contact != "flag-contact" {
		t.Fatalf("expected flag contact, got %q", cfg.Source.Contact)
	}
	if cfg.Export.OutputDir != filepath.Join(home, "flag-out") {
		t.Fatalf("expected expanded flag output dir, got %q", cfg.Export.OutputDir)
	}
	if cfg.Export.Workers != 3 || !cfg.Manifest.Enabled {
		t.Fatalf("unexpected overrides applied: %+v %+v", cfg.Export, cfg.Manifest)
	}
	if cfg.Export.Verify {
		t.Fatal("unset verify flag must not enable verification")
	}

	if err := cfg.Apply(config.Overrides{Workers: -1}); err == nil {
		t.Fatal("expected negative workers override to fail validation")
	}
}

func TestEnsureDirectoriesCreatesOnlyFileParents(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	cfg := config.Default()
	cfg.Export.OutputDir = filepath.Join(base, "out")
	cfg.Logging.File = filepath.Join(base, "logs", "chataudio.log")
	cfg.Metrics.Textfile = filepath.Join(base, "metrics", "chataudio.prom")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"logs", "metrics"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.Export.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("output directory should be left to the exporter, stat err = %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[source]") {
		t.Fatalf("sample config missing source section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Source.Contact == "" || cfg.Source.DatabasePath == "" {
		t.Fatalf("sample should demonstrate contact and database path: %+v", cfg.Source)
	}
	if diff := cmp.Diff(config.Default().Manifest.Extensions, cfg.Manifest.Extensions); diff != "" {
		t.Fatalf("sample extensions drifted from defaults (-default +sample):\n%s", diff)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"empty database": func(c *config.Config) { c.Source.DatabasePath = "" },
		"empty mime":     func(c *config.Config) { c.Source.MIMEPrefix = " " },
		"bad unit":       func(c *config.Config) { c.Source.TimestampUnit = "fortnights" },
		"empty output":   func(c *config.Config) { c.Export.OutputDir = "" },
		"zero workers":   func(c *config.Config) { c.Export.Workers = 0 },
		"no extensions":  func(c *config.Config) { c.Manifest.Extensions = nil },
		"bad log level":  func(c *config.Config) { c.Logging.Level = "chatty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[source\ncontact = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
