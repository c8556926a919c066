package messages

import "errors"

// ErrDatabaseNotFound indicates the configured database path does not exist.
var ErrDatabaseNotFound = errors.New("message database not found")

// ErrSchemaMismatch indicates the database lacks a table the attachment query needs.
var ErrSchemaMismatch = errors.New("message database schema mismatch")
