package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes a one-line header per record followed by indented
// "- Label: value" detail lines:
//
//	2024-05-01 10:00:00 INFO [export] run 1a2b3c4d – export finished
//	    - Copied: 12
//
// Attributes bound with WithAttrs are flattened once, when they are bound.
type prettyHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool

	prefix    string // dotted group path for attributes added later
	bound     []field
	component string
	runID     string
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.Enabled(context.Background(), r.Level) {
		return nil
	}
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	component, runID := h.component, h.runID
	fields := make([]field, 0, len(h.bound)+r.NumAttrs())
	fields = append(fields, h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})

	verbose := r.Level < slog.LevelInfo
	details := fields[:0:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			if component == "" {
				component = attrString(f.value)
			}
			continue
		case FieldRunID:
			if runID == "" {
				runID = attrString(f.value)
			}
			if !verbose {
				continue
			}
		}
		details = append(details, f)
	}
	details = lastWins(details)

	var buf bytes.Buffer
	buf.Grow(128 + 32*len(details))
	h.writeHeader(&buf, ts, r, component, runID)
	for _, f := range details {
		buf.WriteString("    - ")
		if verbose {
			buf.WriteString(f.key)
		} else {
			buf.WriteString(displayLabel(f.key))
		}
		buf.WriteString(": ")
		buf.WriteString(formatValue(f.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, ts time.Time, r slog.Record, component, runID string) {
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(r.Level))
	if component != "" {
		buf.WriteString(" [" + component + "]")
	}
	if runID != "" {
		buf.WriteString(" run " + shortRunID(runID))
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(" – " + msg)
	if h.addSource {
		if src := r.Source(); src != nil && src.File != "" {
			buf.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	buf.WriteByte('\n')
}

// shortRunID keeps console headers narrow; JSON output carries the full id.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.bound = make([]field, len(h.bound), len(h.bound)+len(attrs))
	copy(next.bound, h.bound)
	for _, a := range attrs {
		if h.prefix == "" {
			switch a.Key {
			case FieldComponent:
				next.component = attrString(a.Value)
				continue
			case FieldRunID:
				next.runID = attrString(a.Value)
			}
		}
		next.bound = appendField(next.bound, h.prefix, a)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

// appendField flattens a into dst, joining group names with dots.
func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = joinKey(prefix, a.Key)
		}
		for _, g := range a.Value.Group() {
			dst = appendField(dst, inner, g)
		}
		return dst
	}
	key := joinKey(prefix, a.Key)
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, value: a.Value})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// lastWins drops repeated keys, keeping the first position and the last value.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

var fieldLabels = map[string]string{
	FieldContact:   "Contact",
	FieldDatabase:  "Database",
	FieldOutputDir: "Output",
	FieldEventType: "Event",
	FieldErrorHint: "Hint",
	"source_path":  "Source",
	"destination":  "Destination",
}

func displayLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return titleizeKey(key)
}

// titleizeKey turns "bytes_copied" into "Bytes Copied".
func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
