package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const audioAttachmentsQuery = `
SELECT
    attachment.filename AS filename,
    attachment.created_date AS created_date
FROM attachment
JOIN message_attachment_join ON attachment.ROWID = message_attachment_join.attachment_id
JOIN message ON message_attachment_join.message_id = message.ROWID
JOIN chat_message_join ON message.ROWID = chat_message_join.message_id
JOIN chat ON chat_message_join.chat_id = chat.ROWID
WHERE attachment.mime_type LIKE ?
AND chat.chat_identifier LIKE ?
ORDER BY attachment.created_date DESC`

// DefaultMIMEPrefix selects audio attachments.
const DefaultMIMEPrefix = "audio/"

// AudioAttachments returns attachments whose MIME type starts with
// filter.MIMEPrefix and whose chat identifier contains filter.Contact,
// newest first. Both filters are SQL LIKE patterns, so "%" and "_" in the
// inputs act as wildcards.
func (s *Store) AudioAttachments(ctx context.Context, filter Filter) ([]AttachmentRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("message store is closed")
	}
	ctx = ensureContext(ctx)

	prefix := strings.TrimSpace(filter.MIMEPrefix)
	if prefix == "" {
		prefix = DefaultMIMEPrefix
	}

	var rows []attachmentRow
	if err := s.db.SelectContext(ctx, &rows, audioAttachmentsQuery, prefix+"%", "%"+filter.Contact+"%"); err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}

	records := make([]AttachmentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}
