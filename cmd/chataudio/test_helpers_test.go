package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chataudio/internal/config"
	"chataudio/internal/testsupport"
)

const testContact = "+15551234567"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	homeDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, name := range []string{"CHATAUDIO_CONTACT", "CHATAUDIO_DB", "CHATAUDIO_OUTPUT_DIR"} {
		t.Setenv(name, "")
	}

	cfg := testsupport.NewConfig(t, testsupport.WithContact(testContact))

	fx := testsupport.NewChatDB(t, cfg.Source.DatabasePath)
	chat := fx.AddChat(testContact)
	other := fx.AddChat("someone@example.com")
	fx.AddAttachment(chat, "~/Library/Messages/Attachments/aa/voice.caf", "audio/x-caf", 694224000)
	fx.AddAttachment(chat, "~/Library/Messages/Attachments/bb/gone.m4a", "audio/mp4", 694224060)
	fx.AddAttachment(chat, "~/Library/Messages/Attachments/cc/photo.heic", "image/heic", 694224120)
	fx.AddAttachment(other, "~/Library/Messages/Attachments/dd/theirs.caf", "audio/x-caf", 694224180)
	if err := fx.Close(); err != nil {
		t.Fatalf("close fixture db: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(homeDir, "Library/Messages/Attachments/aa/voice.caf"), []byte("caff-audio"))
	testsupport.WriteFile(t, filepath.Join(homeDir, "Library/Messages/Attachments/dd/theirs.caf"), []byte("not ours"))

	configPath := filepath.Join(base, "chataudio.toml")
	writeTestConfig(t, configPath, cfg, "")

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		homeDir:    homeDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig writes the source and export sections of cfg plus any
// extra TOML appended verbatim.
func writeTestConfig(t *testing.T, path string, cfg *config.Config, extra string) {
	t.Helper()
	content := fmt.Sprintf(
		"[source]\ndatabase_path = %q\ncontact = %q\n\n[export]\noutput_dir = %q\n\n[logging]\nlevel = \"error\"\n\n%s",
		cfg.Source.DatabasePath,
		cfg.Source.Contact,
		cfg.Export.OutputDir,
		extra,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
