// Package engine orchestrates the obfuscation pass: detect format,
// fetch, decode, validate, mask, encode, store. Every failure mode is
// mapped into a uniform result envelope; the original resource is
// overwritten only after the full transform succeeds in memory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gdpr-toolkit/obfuscator/pkg/codec"
	"github.com/gdpr-toolkit/obfuscator/pkg/location"
	"github.com/gdpr-toolkit/obfuscator/pkg/storage"
)

// Engine runs the decode/validate/mask/encode pipeline against a
// storage backend. Stateless; safe for concurrent use.
type Engine struct {
	store storage.Store
}

// New creates an engine over the given storage backend.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// Process masks the given fields in the resource at loc, overwriting it
// in place. It always returns an envelope: 200 on success, 404 for a
// missing local file, 500 for every other failure. A failure at any
// stage leaves the original resource untouched, because the store step
// runs last.
func (e *Engine) Process(ctx context.Context, loc location.Location, fields []string) Result {
	format, err := loc.Format()
	if err != nil {
		slog.Error("Unsupported format", "resource", loc.String(), "error", err)
		return Failure(http.StatusInternalServerError, err)
	}

	c, err := codec.ForFormat(format)
	if err != nil {
		return Failure(http.StatusInternalServerError, err)
	}

	data, err := e.store.Fetch(ctx, loc)
	if err != nil {
		slog.Error("Failed to fetch resource", "resource", loc.String(), "error", err)
		if loc.Kind == location.KindLocal && errors.Is(err, storage.ErrNotFound) {
			return Failure(http.StatusNotFound, err)
		}
		return Failure(http.StatusInternalServerError, err)
	}

	rs, err := c.Decode(data)
	if err != nil {
		slog.Error("Failed to decode resource", "resource", loc.String(), "format", format.String(), "error", err)
		return Failure(http.StatusInternalServerError, err)
	}

	if err := c.ValidateFields(rs, fields); err != nil {
		slog.Error("Field validation failed", "resource", loc.String(), "error", err)
		return Failure(http.StatusInternalServerError, err)
	}

	c.Mask(rs, fields)

	out, err := c.Encode(rs)
	if err != nil {
		slog.Error("Failed to encode resource", "resource", loc.String(), "format", format.String(), "error", err)
		return Failure(http.StatusInternalServerError, err)
	}

	if err := e.store.Store(ctx, loc, out, c.ContentType()); err != nil {
		slog.Error("Failed to store resource", "resource", loc.String(), "error", err)
		return Failure(http.StatusInternalServerError, err)
	}

	slog.Info("Obfuscated resource",
		"resource", loc.String(), "format", format.String(), "fields", len(fields))
	return Success(successMessage(loc), format.String())
}

func successMessage(loc location.Location) string {
	if loc.Kind == location.KindLocal {
		return fmt.Sprintf("Successfully processed and overwritten local file: %s", loc.Path)
	}
	return fmt.Sprintf("Successfully processed and overwritten %s", loc.String())
}
