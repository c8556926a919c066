package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const headerTimeLayout = "2006-01-02 15:04:05"

// formatTimestamp renders the console header time in the local zone.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(headerTimeLayout)
}

// attrString returns the bare text of v for header fields.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		return anyString(v.Any())
	default:
		return formatValue(v)
	}
}

// formatValue renders an attribute value for a detail line. Time values are
// attachment dates and stay in UTC so they line up with exported file names.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		return quoteIfNeeded(anyString(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func anyString(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}

// quoteIfNeeded leaves ordinary paths readable and quotes anything with
// control characters, quotes, or leading/trailing blanks.
func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for i, r := range s {
		if r < ' ' || r == '"' || r == 0x7f {
			return strconv.Quote(s)
		}
		if r == ' ' && (i == 0 || i == len(s)-1) {
			return strconv.Quote(s)
		}
	}
	return s
}
