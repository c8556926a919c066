package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chataudio/internal/config"
	"chataudio/internal/export"
	"chataudio/internal/fileutil"
	"chataudio/internal/messages"
	"chataudio/internal/timestamps"
)

var listColumns = []tableColumn{
	{Header: "#", Align: alignRight},
	{Header: "File"},
	{Header: "Created (UTC)"},
	{Header: "Present"},
	{Header: "Size", Align: alignRight},
	{Header: "Source"},
}

type listEntry struct {
	FileName   string  `json:"file_name"`
	Created    string  `json:"created"`
	RawCreated float64 `json:"raw_created"`
	SourcePath string  `json:"source_path"`
	Present    bool    `json:"present"`
	SizeBytes  int64   `json:"size_bytes,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var overrides config.Overrides
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a contact's audio attachments without copying them",
		Args:  cobra.NoArgs,
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

			store, err := messages.Open(cmd.Context(), cfg.Source.DatabasePath)
			if err != nil {
				return fmt.Errorf("open message store: %w", err)
			}
			defer store.Close()

			records, err := store.AudioAttachments(cmd.Context(), messages.Filter{
				Contact:    cfg.Source.Contact,
				MIMEPrefix: cfg.Source.MIMEPrefix,
			})
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(records))
			for _, record := range records {
				plan, err := export.Plan(record, cfg.Export.OutputDir, unit)
				if err != nil {
					return err
				}
				present, _ := fileutil.Exists(plan.ResolvedPath)
				var size int64
				if present {
					if info, err := os.Stat(plan.ResolvedPath); err == nil {
						size = info.Size()
					}
				}
				entries = append(entries, listEntry{
					FileName:   plan.FileName,
					Created:    plan.Timestamp.UTC().Format("2006-01-02 15:04:05"),
					RawCreated: record.Created,
					SourcePath: record.SourcePath,
					Present:    present,
					SizeBytes:  size,
				})
			}

			if jsonOut {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No audio attachments found for %s\n", cfg.Source.Contact)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			missing := 0
			for i, entry := range entries {
				size := "-"
				if entry.Present {
					size = humanize.Bytes(uint64(entry.SizeBytes))
				} else {
					missing++
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					entry.FileName,
					entry.Created,
					yesNo(entry.Present),
					size,
					entry.SourcePath,
				})
			}
			fmt.Fprintln(out, renderTable(listColumns, rows,
				fmt.Sprintf("%d attachments, %d missing on disk", len(entries), missing)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.Contact, "contact", "", "Chat identifier to match (phone number or email)")
	flags.StringVar(&overrides.DatabasePath, "db", "", "Path to the Messages chat.db")
	flags.BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
