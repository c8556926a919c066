package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const (
	markCopied  = "✓"
	markMissing = "✗"
	markPlanned = "•"
)

// Reporter writes the human-readable export report.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	colorize bool
}

// NewReporter reports to w, colouring marks only when w is a terminal.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, colorize: ColorEnabled(w)}
}

// ColorEnabled reports whether w is a terminal that should receive ANSI
// colours. Setting NO_COLOR disables colour everywhere.
func ColorEnabled(w io.Writer) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Start writes the header naming the record count and destination.
func (r *Reporter) Start(found int, outputDir string) {
	dir := strings.TrimRight(outputDir, "/")
	r.printf("Found %d audio messages. Copying to %s/\n\n", found, dir)
}

// Record writes the line for one processed record.
func (r *Reporter) Record(res Result) {
	switch res.Status {
	case StatusCopied:
		r.printf("%s %s\n", r.paint(ansiGreen, markCopied), res.FileName)
	case StatusMissing:
		r.printf("%s %s (file not found at %s)\n", r.paint(ansiRed, markMissing), res.FileName, res.OriginalPath)
	case StatusPlanned:
		r.printf("%s %s -> %s\n", markPlanned, res.FileName, res.DestinationPath)
	}
}

// Done writes the closing count line.
func (r *Reporter) Done(processed int) {
	r.printf("\nDone! %d files processed.\n", processed)
}

func (r *Reporter) paint(color, mark string) string {
	if !r.colorize {
		return mark
	}
	return color + mark + ansiReset
}

func (r *Reporter) printf(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}
