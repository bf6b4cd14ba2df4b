// Package storage supplies the fetch/store capability pair behind the
// obfuscation engine: byte-level read and in-place overwrite of a named
// resource, abstracted over local disk and S3.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdpr-toolkit/obfuscator/pkg/location"
)

// ErrNotFound is wrapped by Fetch when the target does not exist.
var ErrNotFound = errors.New("file not found")

// Store reads and overwrites whole resources keyed by location.
// Implementations must be safe for concurrent use; each invocation of
// the engine shares no state with any other.
type Store interface {
	// Fetch returns the full content of the resource.
	Fetch(ctx context.Context, loc location.Location) ([]byte, error)

	// Store overwrites the resource with data. contentType is advisory
	// and only meaningful for object-store backends.
	Store(ctx context.Context, loc location.Location, data []byte, contentType string) error
}

// Router dispatches on location kind to the matching backend. It
// implements Store itself.
type Router struct {
	Local Store
	S3    Store
}

// Fetch implements Store.
func (r *Router) Fetch(ctx context.Context, loc location.Location) ([]byte, error) {
	backend, err := r.backend(loc)
	if err != nil {
		return nil, err
	}
	return backend.Fetch(ctx, loc)
}

// Store implements Store.
func (r *Router) Store(ctx context.Context, loc location.Location, data []byte, contentType string) error {
	backend, err := r.backend(loc)
	if err != nil {
		return err
	}
	return backend.Store(ctx, loc, data, contentType)
}

func (r *Router) backend(loc location.Location) (Store, error) {
	switch loc.Kind {
	case location.KindLocal:
		return r.Local, nil
	case location.KindS3:
		return r.S3, nil
	}
	return nil, fmt.Errorf("no storage backend for location kind %d", loc.Kind)
}
