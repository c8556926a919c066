package messages

import "database/sql"

// AttachmentRecord is one attachment row selected by AudioAttachments.
// SourcePath may begin with "~" and is empty when the row has no filename.
// Created is the raw offset from 2001-01-01; its unit is decided by the caller.
type AttachmentRecord struct {
	SourcePath string  `json:"source_path"`
	Created    float64 `json:"created"`
}

// Filter selects attachments by chat identifier substring and MIME prefix.
type Filter struct {
	Contact    string
	MIMEPrefix string
}

type attachmentRow struct {
	Filename    sql.NullString  `db:"filename"`
	CreatedDate sql.NullFloat64 `db:"created_date"`
}

func (r attachmentRow) record() AttachmentRecord {
	return AttachmentRecord{
		SourcePath: r.Filename.String,
		Created:    r.CreatedDate.Float64,
	}
}
