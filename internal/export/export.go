package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"chataudio/internal/fileutil"
	"chataudio/internal/logging"
	"chataudio/internal/messages"
	"chataudio/internal/timestamps"
)

// Status is the outcome of one record.
type Status string

const (
	StatusCopied  Status = "copied"
	StatusMissing Status = "missing"
	StatusPlanned Status = "planned"
)

// Result is the per-record outcome. Err is set only for failures that halt
// the run.
type Result struct {
	Descriptor
	Status Status `json:"status"`
	Bytes  int64  `json:"bytes,omitempty"`
	Err    error  `json:"-"`
}

// Summary tallies a finished run.
type Summary struct {
	Found   int           `json:"found"`
	Copied  int           `json:"copied"`
	Missing int           `json:"missing"`
	Planned int           `json:"planned"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Options is everything one export run needs.
type Options struct {
	Contact      string
	DatabasePath string
	OutputDir    string
	MIMEPrefix   string
	Unit         timestamps.Unit
	Workers      int
	Verify       bool
	DryRun       bool
}

// Exporter copies attachment records into Options.OutputDir.
type Exporter struct {
	opts     Options
	reporter *Reporter
	logger   *slog.Logger
	results  []Result
}

// New builds an Exporter. A nil reporter discards the report; a nil logger
// discards logs.
func New(opts Options, reporter *Reporter, logger *slog.Logger) *Exporter {
	if reporter == nil {
		reporter = NewReporter(nil)
	}
	if opts.Unit == "" {
		opts.Unit = timestamps.Auto
	}
	return &Exporter{
		opts:     opts,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "export"),
	}
}

// Results returns the outcomes of the last run in record order.
func (e *Exporter) Results() []Result {
	out := make([]Result, len(e.results))
	copy(out, e.results)
	return out
}

// Export opens the message database, queries attachments for the configured
// contact, and runs the copy. The store is closed before Export returns.
func (e *Exporter) Export(ctx context.Context) (Summary, error) {
	if strings.TrimSpace(e.opts.Contact) == "" {
		return Summary{}, errors.New("export requires a contact identifier")
	}

	store, err := messages.Open(ctx, e.opts.DatabasePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open message store: %w", err)
	}
	defer store.Close()

	records, err := store.AudioAttachments(ctx, messages.Filter{
		Contact:    e.opts.Contact,
		MIMEPrefix: e.opts.MIMEPrefix,
	})
	if err != nil {
		return Summary{}, err
	}
	e.logger.Info("attachments queried",
		logging.String(logging.FieldContact, e.opts.Contact),
		logging.String(logging.FieldDatabase, store.Path()),
		logging.Int("found", len(records)),
	)
	return e.Run(ctx, records)
}

// Run plans and copies records. Report lines follow record order regardless
// of the worker count. The first copy failure cancels outstanding work and is
// returned; missing sources are reported and counted but are not errors.
func (e *Exporter) Run(ctx context.Context, records []messages.AttachmentRecord) (Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	summary := Summary{Found: len(records)}
	e.results = nil

	plans, err := PlanAll(records, e.opts.OutputDir, e.opts.Unit)
	if err != nil {
		return summary, err
	}

	if !e.opts.DryRun {
		if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
			return summary, fmt.Errorf("create output directory: %w", err)
		}
		unlock, err := lockOutputDir(e.opts.OutputDir)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := unlock(); err != nil {
				e.logger.Warn("release output lock failed", logging.Error(err))
			}
		}()
	}

	e.reporter.Start(len(records), e.opts.OutputDir)

	results := make([]Result, len(plans))
	ready := make([]chan struct{}, len(plans))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers())
	done := make(chan error, 1)
	go func() {
		for i := range plans {
			group.Go(func() error {
				defer close(ready[i])
				if err := groupCtx.Err(); err != nil {
					results[i] = Result{Descriptor: plans[i], Err: err}
					return err
				}
				results[i] = e.process(plans[i])
				return results[i].Err
			})
		}
		done <- group.Wait()
	}()

	var fatal error
	for i := range plans {
		<-ready[i]
		res := results[i]
		if res.Err != nil {
			fatal = res.Err
			break
		}
		e.results = append(e.results, res)
		e.reporter.Record(res)
		switch res.Status {
		case StatusCopied:
			summary.Copied++
		case StatusMissing:
			summary.Missing++
		case StatusPlanned:
			summary.Planned++
		}
	}
	if waitErr := <-done; fatal == nil {
		fatal = waitErr
	}
	summary.Elapsed = time.Since(start)
	if fatal != nil {
		return summary, fatal
	}

	e.reporter.Done(len(records))
	e.logger.Info("export finished",
		logging.String(logging.FieldOutputDir, e.opts.OutputDir),
		logging.Int("found", summary.Found),
		logging.Int("copied", summary.Copied),
		logging.Int("missing", summary.Missing),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (e *Exporter) workers() int {
	if e.opts.Workers < 1 {
		return 1
	}
	return e.opts.Workers
}

func (e *Exporter) process(d Descriptor) Result {
	res := Result{Descriptor: d}

	exists, err := fileutil.Exists(d.ResolvedPath)
	if err != nil {
		e.logger.Debug("source stat failed", logging.String("source_path", d.ResolvedPath), logging.Error(err))
	}
	if !exists {
		res.Status = StatusMissing
		logging.WarnWithContext(e.logger, "attachment file not found", "attachment_missing",
			logging.String("source_path", d.OriginalPath),
			logging.String("destination", d.FileName),
			logging.String(logging.FieldErrorHint, "open the conversation in Messages to download the attachment"),
		)
		return res
	}

	if e.opts.DryRun {
		res.Status = StatusPlanned
		return res
	}

	if err := e.copy(d); err != nil {
		res.Err = fmt.Errorf("copy %s to %s: %w", d.ResolvedPath, d.DestinationPath, err)
		return res
	}
	if info, err := os.Stat(d.DestinationPath); err == nil {
		res.Bytes = info.Size()
	}
	res.Status = StatusCopied
	e.logger.Debug("attachment copied",
		logging.String("source_path", d.ResolvedPath),
		logging.String("destination", d.DestinationPath),
		logging.Int64("bytes", res.Bytes),
	)
	return res
}

func (e *Exporter) copy(d Descriptor) error {
	copyFn := fileutil.CopyFileAtomic
	if e.opts.Verify {
		copyFn = fileutil.CopyFileVerified
	}
	if err := copyFn(d.ResolvedPath, d.DestinationPath); err != nil {
		return err
	}
	return fileutil.PreserveMetadata(d.ResolvedPath, d.DestinationPath)
}
