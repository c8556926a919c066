package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chataudio/internal/config"
	"chataudio/internal/fileutil"
	"chataudio/internal/messages"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set source.contact (or export CHATAUDIO_CONTACT) before exporting.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and report what an export would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("chataudio configuration", colorize)
			if ctx.configSeen {
				lines = append(lines, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Config", statusInfo, "defaults (no file at "+ctx.configPath+")", colorize))
			}

			var problems int
			present, _ := fileutil.Exists(cfg.Source.DatabasePath)
			if !present {
				lines = append(lines, renderStatusLine("Database", statusWarn, "not found at "+cfg.Source.DatabasePath, colorize))
			} else if err := probeMessageStore(cmd.Context(), cfg.Source.DatabasePath); err != nil {
				problems++
				lines = append(lines, renderStatusLine("Database", statusError, err.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Database", statusOK, cfg.Source.DatabasePath, colorize))
			}

			if cfg.RequireContact() == nil {
				lines = append(lines, renderStatusLine("Contact", statusOK, cfg.Source.Contact, colorize))
			} else {
				lines = append(lines, renderStatusLine("Contact", statusWarn, "not set (pass --contact when exporting)", colorize))
			}

			lines = append(lines,
				renderStatusLine("Output", statusInfo, cfg.Export.OutputDir, colorize),
				renderStatusLine("Workers", statusInfo, fmt.Sprintf("%d (verify: %s)", cfg.Export.Workers, yesNo(cfg.Export.Verify)), colorize),
				renderStatusLine("Timestamps", statusInfo, cfg.Source.TimestampUnit, colorize),
			)
			if cfg.Manifest.Enabled {
				lines = append(lines, renderStatusLine("Manifest", statusInfo, cfg.ManifestPath(), colorize))
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if problems > 0 {
				return fmt.Errorf("configuration has %d problem(s)", problems)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// probeMessageStore opens path read-only and checks the Messages schema.
func probeMessageStore(ctx context.Context, path string) error {
	store, err := messages.Open(ctx, path)
	if err != nil {
		return err
	}
	return store.Close()
}
