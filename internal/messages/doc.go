// Package messages reads attachment records from a Messages chat database.
//
// The Store opens the SQLite file read-only, confirms the tables the export
// joins across are present, and answers a single question: which attachments
// with a given MIME prefix belong to chats whose identifier contains a
// substring. The database is never written.
//
// The contact filter is a LIKE substring match on chat.chat_identifier, so a
// filter of "+15551234567" also selects a chat named "+1555123456799". That
// over-match is intentional and covered by tests.
package messages
