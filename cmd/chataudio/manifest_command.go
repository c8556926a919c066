package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chataudio/internal/config"
	"chataudio/internal/logging"
	"chataudio/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var dirFlag, outFlag, prefixFlag string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write a JSON listing of exported audio files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := cfg.Export.OutputDir
			if v := strings.TrimSpace(dirFlag); v != "" {
				if dir, err = config.ExpandPath(v); err != nil {
					return fmt.Errorf("resolve audio directory: %w", err)
				}
			}
			out := cfg.ManifestPathFor(dir)
			if v := strings.TrimSpace(outFlag); v != "" {
				if out, err = config.ExpandPath(v); err != nil {
					return fmt.Errorf("resolve manifest path: %w", err)
				}
			}
			opts := manifestOptions(cfg)
			if cmd.Flags().Changed("prefix") {
				opts.URLPrefix = prefixFlag
			}

			logger, _, closeLog, err := ctx.runLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			logger = logging.NewComponentLogger(logger, "manifest")

			entries, err := manifest.Generate(dir, out, opts)
			if err != nil {
				logger.Error("manifest generation failed; wrote empty list",
					logging.String("path", out),
					logging.Error(err),
				)
				return fmt.Errorf("generate audio list: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated audio list with %d files\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Directory of exported audio (default: export.output_dir)")
	cmd.Flags().StringVar(&outFlag, "out", "", "Manifest destination (default: manifest.path or <dir>/audio_files.json)")
	cmd.Flags().StringVar(&prefixFlag, "prefix", "", "URL prefix for each entry path (default: manifest.url_prefix)")
	return cmd
}
