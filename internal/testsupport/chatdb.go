package testsupport

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// chatSchema is the subset of the Messages schema the attachment query reads.
const chatSchema = `
CREATE TABLE chat (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, chat_identifier TEXT);
CREATE TABLE message (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, text TEXT);
CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
CREATE TABLE attachment (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, filename TEXT, mime_type TEXT, created_date INTEGER);
CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER);
`

// ChatDB builds a throwaway Messages database for tests.
type ChatDB struct {
	t    testing.TB
	db   *sql.DB
	Path string
}

// NewChatDB creates the schema at path. The writer is closed automatically at
// test cleanup; call Close earlier to release it before reading.
func NewChatDB(t testing.TB, path string) *ChatDB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	if _, err := db.Exec(chatSchema); err != nil {
		_ = db.Close()
		t.Fatalf("create fixture schema: %v", err)
	}
	c := &ChatDB{t: t, db: db, Path: path}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// AddChat inserts a chat row and returns its ROWID.
func (c *ChatDB) AddChat(identifier string) int64 {
	c.t.Helper()
	res, err := c.db.Exec("INSERT INTO chat (chat_identifier) VALUES (?)", identifier)
	if err != nil {
		c.t.Fatalf("insert chat: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		c.t.Fatalf("chat id: %v", err)
	}
	return id
}

// AddAttachment inserts a message in chatID carrying one attachment.
func (c *ChatDB) AddAttachment(chatID int64, filename, mimeType string, created int64) {
	c.t.Helper()
	c.addAttachment(chatID, filename, mimeType, created)
}

// AddNullAttachment inserts an attachment whose filename and created_date are NULL.
func (c *ChatDB) AddNullAttachment(chatID int64, mimeType string) {
	c.t.Helper()
	c.addAttachment(chatID, nil, mimeType, nil)
}

func (c *ChatDB) addAttachment(chatID int64, filename any, mimeType string, created any) {
	c.t.Helper()
	tx, err := c.db.Begin()
	if err != nil {
		c.t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	msg, err := tx.Exec("INSERT INTO message (text) VALUES ('')")
	if err != nil {
		c.t.Fatalf("insert message: %v", err)
	}
	msgID, err := msg.LastInsertId()
	if err != nil {
		c.t.Fatalf("message id: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)", chatID, msgID); err != nil {
		c.t.Fatalf("insert chat_message_join: %v", err)
	}
	att, err := tx.Exec("INSERT INTO attachment (filename, mime_type, created_date) VALUES (?, ?, ?)", filename, mimeType, created)
	if err != nil {
		c.t.Fatalf("insert attachment: %v", err)
	}
	attID, err := att.LastInsertId()
	if err != nil {
		c.t.Fatalf("attachment id: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (?, ?)", msgID, attID); err != nil {
		c.t.Fatalf("insert message_attachment_join: %v", err)
	}
	if err := tx.Commit(); err != nil {
		c.t.Fatalf("commit: %v", err)
	}
}

// Close releases the writer connection.
func (c *ChatDB) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
