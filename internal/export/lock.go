package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another run holds the output directory.
type ErrLocked struct {
	Path string
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("output directory is in use by another chataudio run (lock %s)", e.Path)
}

// LockPath returns the lock file guarding dir. It lives in the system temp
// directory, keyed by the absolute output path, so the output directory only
// ever holds exported files.
func LockPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(os.TempDir(), "chataudio-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// lockOutputDir takes an exclusive, non-blocking lock on dir. The returned
// function releases it.
func lockOutputDir(dir string) (func() error, error) {
	path, err := LockPath(dir)
	if err != nil {
		return nil, err
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, &ErrLocked{Path: path}
	}
	return lock.Unlock, nil
}
