package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"chataudio/internal/config"
	"chataudio/internal/export"
	"chataudio/internal/logging"
	"chataudio/internal/manifest"
	"chataudio/internal/telemetry"
	"chataudio/internal/timestamps"
)

type exportPayload struct {
	RunID    string          `json:"run_id"`
	DryRun   bool            `json:"dry_run"`
	Output   string          `json:"output_dir"`
	Summary  export.Summary  `json:"summary"`
	Results  []export.Result `json:"results"`
	Manifest string          `json:"manifest,omitempty"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var overrides config.Overrides
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a contact's audio attachments into the output directory",
		Long: "Query the Messages database for the contact's audio attachments and copy each one\n" +
			"into the output directory as <YYYYMMDD_HHMMSS>_<original name>.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Apply(overrides); err != nil {
				return err
			}
			if err := cfg.RequireContact(); err != nil {
				return err
			}
			unit, err := timestamps.ParseUnit(cfg.Source.TimestampUnit)
			if err != nil {
				return err
			}

			logger, runCtx, closeLog, err := ctx.runLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			runID, _ := logging.RunIDFromContext(runCtx)

			var reportOut io.Writer = cmd.OutOrStdout()
			if jsonOut {
				reportOut = io.Discard
			}
			exporter := export.New(export.Options{
				Contact:      cfg.Source.Contact,
				DatabasePath: cfg.Source.DatabasePath,
				OutputDir:    cfg.Export.OutputDir,
				MIMEPrefix:   cfg.Source.MIMEPrefix,
				Unit:         unit,
				Workers:      cfg.Export.Workers,
				Verify:       cfg.Export.Verify,
				DryRun:       dryRun,
			}, export.NewReporter(reportOut), logger)

			summary, runErr := exporter.Export(runCtx)
			if !dryRun {
				recordRunMetrics(cfg, summary, runErr, logger)
			}
			if runErr != nil {
				return runErr
			}

			payload := exportPayload{
				RunID:   runID,
				DryRun:  dryRun,
				Output:  cfg.Export.OutputDir,
				Summary: summary,
				Results: exporter.Results(),
			}
			if cfg.Manifest.Enabled && !dryRun {
				path := cfg.ManifestPath()
				entries, err := manifest.Generate(cfg.Export.OutputDir, path, manifestOptions(cfg))
				if err != nil {
					return fmt.Errorf("generate manifest: %w", err)
				}
				logger.Info("manifest written", logging.String("path", path), logging.Int("entries", len(entries)))
				payload.Manifest = path
			}

			if jsonOut {
				return writeJSON(cmd, payload)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.Contact, "contact", "", "Chat identifier to match (phone number or email)")
	flags.StringVarP(&overrides.OutputDir, "output", "o", "", "Directory receiving the renamed copies")
	flags.StringVar(&overrides.DatabasePath, "db", "", "Path to the Messages chat.db")
	flags.IntVarP(&overrides.Workers, "workers", "w", 0, "Concurrent copies (report order is preserved)")
	flags.BoolVar(&overrides.Verify, "verify", false, "Verify each copy with SHA-256")
	flags.BoolVar(&overrides.Manifest, "manifest", false, "Write the JSON audio manifest after exporting")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be copied without writing anything")
	flags.BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON instead of the text report")
	return cmd
}

func manifestOptions(cfg *config.Config) manifest.Options {
	return manifest.Options{
		Extensions: cfg.Manifest.Extensions,
		URLPrefix:  cfg.Manifest.URLPrefix,
	}
}

func recordRunMetrics(cfg *config.Config, summary export.Summary, runErr error, logger *slog.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	rec := telemetry.NewRecorder()
	rec.Observe(telemetry.RunStats{
		Found:    summary.Found,
		Copied:   summary.Copied,
		Missing:  summary.Missing,
		Duration: summary.Elapsed,
		Finished: time.Now(),
		Success:  runErr == nil,
	})
	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that metrics.textfile points to a writable directory"),
		)
	}
}
