package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/gdpr-toolkit/obfuscator/pkg/location"
)

// Local reads and overwrites files on the local filesystem.
type Local struct{}

// NewLocal returns a local-disk store.
func NewLocal() *Local { return &Local{} }

// Fetch implements Store. A missing file wraps ErrNotFound so the
// engine can report it as a distinct not-found result.
func (l *Local) Fetch(_ context.Context, loc location.Location) ([]byte, error) {
	data, err := os.ReadFile(loc.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc.Path)
		}
		return nil, fmt.Errorf("reading %s: %w", loc.Path, err)
	}
	return data, nil
}

// Store implements Store, overwriting the file in place. The existing
// file's permissions are preserved when it can be stat'ed.
func (l *Local) Store(_ context.Context, loc location.Location, data []byte, _ string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(loc.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(loc.Path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", loc.Path, err)
	}
	return nil
}
