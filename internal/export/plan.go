package export

import (
	"fmt"
	"path/filepath"
	"time"

	"chataudio/internal/fileutil"
	"chataudio/internal/messages"
	"chataudio/internal/textutil"
	"chataudio/internal/timestamps"
)

// Descriptor is the planned copy for one attachment record.
type Descriptor struct {
	DestinationPath string    `json:"destination_path"`
	OriginalPath    string    `json:"original_path"`
	ResolvedPath    string    `json:"resolved_path"`
	FileName        string    `json:"file_name"`
	Timestamp       time.Time `json:"timestamp"`
}

// Plan derives the destination for record inside outputDir. The file name is
// "<YYYYMMDD_HHMMSS>_<original name>"; two records with the same name and
// second map to the same destination.
func Plan(record messages.AttachmentRecord, outputDir string, unit timestamps.Unit) (Descriptor, error) {
	resolved, err := fileutil.ExpandHome(record.SourcePath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve %q: %w", record.SourcePath, err)
	}

	var original string
	if resolved != "" {
		original = filepath.Base(resolved)
	}

	created := timestamps.Convert(record.Created, unit)
	name := timestamps.Format(created) + "_" + textutil.NormalizeFileName(original)

	return Descriptor{
		DestinationPath: filepath.Join(outputDir, name),
		OriginalPath:    record.SourcePath,
		ResolvedPath:    resolved,
		FileName:        name,
		Timestamp:       created,
	}, nil
}

// PlanAll plans every record, preserving order.
func PlanAll(records []messages.AttachmentRecord, outputDir string, unit timestamps.Unit) ([]Descriptor, error) {
	plans := make([]Descriptor, 0, len(records))
	for _, record := range records {
		d, err := Plan(record, outputDir, unit)
		if err != nil {
			return nil, err
		}
		plans = append(plans, d)
	}
	return plans, nil
}
