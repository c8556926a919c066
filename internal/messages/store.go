package messages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// busyTimeoutMillis lets reads wait out the Messages app's own writes.
const busyTimeoutMillis = 5000

// requiredTables lists every table the attachment query joins across.
var requiredTables = []string{
	"attachment",
	"message_attachment_join",
	"message",
	"chat_message_join",
	"chat",
}

// Store is a read-only handle on a Messages chat database.
type Store struct {
	db   *sqlx.DB
	path string
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Open connects to the database at path in read-only mode and verifies the
// schema. The caller must Close the returned Store.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path %q: %w", path, err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, absolute)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path %s is a directory", absolute)
	}

	db, err := sqlx.Open(driverName, readOnlyDSN(absolute))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection for the whole run; the export issues a single query.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{db: db, path: absolute}
	if err := store.checkSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func readOnlyDSN(path string) string {
	query := url.Values{}
	query.Set("mode", "ro")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	query.Add("_pragma", "query_only(1)")
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: query.Encode()}
	return u.String()
}

func (s *Store) checkSchema(ctx context.Context) error {
	var present []string
	query, args, err := sqlx.In(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN (?)",
		requiredTables,
	)
	if err != nil {
		return fmt.Errorf("build schema query: %w", err)
	}
	if err := s.db.SelectContext(ctx, &present, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	found := make(map[string]struct{}, len(present))
	for _, name := range present {
		found[name] = struct{}{}
	}
	var missing []string
	for _, name := range requiredTables {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing table(s) %s in %s", ErrSchemaMismatch, strings.Join(missing, ", "), s.path)
	}
	return nil
}

// Path returns the absolute database path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
