// Package logging assembles the slog loggers used by chataudio.
//
// Console output is a compact human layout (header line plus indented
// fields); JSON output is one object per line for machine consumption. Both
// write to stderr so stdout stays reserved for the export report. Context
// helpers tag every line of a run with its run id.
package logging
