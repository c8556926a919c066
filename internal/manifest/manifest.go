package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/natefinch/atomic"
)

// DateLayout renders entry dates, e.g. "3:30PM Jan 1, 2023".
const DateLayout = "3:04PM Jan 2, 2006"

// DefaultExtensions are the audio extensions listed when Options leaves
// Extensions empty.
var DefaultExtensions = []string{"m4a", "mp3", "wav", "ogg", "caf"}

// Entry is one listed file.
type Entry struct {
	Path string  `json:"path"`
	Name string  `json:"name"`
	Date *string `json:"date,omitempty"`
	MIME string  `json:"mime,omitempty"`
}

// Options controls which files are listed and how their paths are built.
type Options struct {
	// Extensions without the leading dot; matched case-insensitively.
	Extensions []string
	// URLPrefix is prepended verbatim to each file name.
	URLPrefix string
}

func (o Options) extensions() []string {
	src := o.Extensions
	if len(src) == 0 {
		src = DefaultExtensions
	}
	out := make([]string, 0, len(src))
	for _, ext := range src {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			out = append(out, regexp.QuoteMeta(ext))
		}
	}
	return out
}

type matcher struct {
	ext     *regexp.Regexp
	stamped *regexp.Regexp
}

func newMatcher(opts Options) (*matcher, error) {
	exts := opts.extensions()
	if len(exts) == 0 {
		return nil, errors.New("manifest requires at least one extension")
	}
	alt := strings.Join(exts, "|")
	return &matcher{
		ext:     regexp.MustCompile(`(?i)\.(` + alt + `)$`),
		stamped: regexp.MustCompile(`(?i)^(\d{8})_(\d{6})_(.+)\.(` + alt + `)$`),
	}, nil
}

// Build scans dir (not recursively) and returns entries sorted by file name,
// newest stamp first.
func Build(dir string, opts Options) ([]Entry, error) {
	m, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read audio directory: %w", err)
	}

	var names []string
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		if m.ext.MatchString(de.Name()) {
			names = append(names, de.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entry := m.entry(name, opts.URLPrefix)
		mtype, err := mimetype.DetectFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("detect type of %s: %w", name, err)
		}
		entry.MIME = mtype.String()
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *matcher) entry(name, prefix string) Entry {
	entry := Entry{Path: prefix + name}
	if match := m.stamped.FindStringSubmatch(name); match != nil {
		entry.Name = match[3]
		if date, ok := formatDate(match[1], match[2]); ok {
			entry.Date = &date
		}
		return entry
	}
	entry.Name = m.ext.ReplaceAllString(name, "")
	return entry
}

func formatDate(day, clock string) (string, bool) {
	t, err := time.Parse("20060102150405", day+clock)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// Write stores entries at path as indented JSON, replacing any previous
// file atomically.
func Write(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Generate builds the manifest for dir and writes it to out. When the scan
// fails an empty list is written so consumers never read a stale manifest;
// the scan error is still returned.
func Generate(dir, out string, opts Options) ([]Entry, error) {
	entries, err := Build(dir, opts)
	if err != nil {
		if writeErr := Write(out, nil); writeErr != nil {
			return nil, errors.Join(err, writeErr)
		}
		return nil, err
	}
	if err := Write(out, entries); err != nil {
		return nil, err
	}
	return entries, nil
}
