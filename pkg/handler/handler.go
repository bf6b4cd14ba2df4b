// Package handler normalizes the two invocation payload shapes (direct
// request and S3 upload notification) into a location plus field list,
// and wraps the engine for the Lambda runtime. Validation failures are
// reported as 400-class envelopes before any I/O is attempted.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gdpr-toolkit/obfuscator/pkg/engine"
	"github.com/gdpr-toolkit/obfuscator/pkg/location"
)

// Event is the invocation payload. Exactly one shape is used per call:
// either FileToObfuscate + PIIFields, or Records from an S3 upload
// notification. Records is a pointer so an explicitly empty list can be
// told apart from an absent one.
type Event struct {
	FileToObfuscate string                `json:"file_to_obfuscate"`
	PIIFields       []string              `json:"pii_fields"`
	Records         *[]NotificationRecord `json:"Records"`
}

// NotificationRecord mirrors the s3 portion of an upload notification.
type NotificationRecord struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// ValidationError is a normalizer-level failure, reported as a
// 400-class envelope distinct from the engine's own errors.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Normalize converts an event into the (location, fields) pair consumed
// by the engine. For notification batches only the first record is
// processed; extra records are logged and skipped.
func Normalize(ev Event) (location.Location, []string, error) {
	if ev.Records != nil {
		records := *ev.Records
		if len(records) == 0 {
			return location.Location{}, nil, &ValidationError{Message: "no records found in S3 event"}
		}
		if len(records) > 1 {
			slog.Warn("Notification batch has multiple records, processing first only",
				"records", len(records))
		}
		r := records[0]
		loc := location.Location{
			Kind:   location.KindS3,
			Bucket: r.S3.Bucket.Name,
			Key:    r.S3.Object.Key,
		}
		return loc, ev.PIIFields, nil
	}

	if ev.FileToObfuscate == "" || len(ev.PIIFields) == 0 {
		return location.Location{}, nil, &ValidationError{Message: "missing required parameters: file_to_obfuscate and pii_fields"}
	}
	return location.Resolve(ev.FileToObfuscate), ev.PIIFields, nil
}

// Handler adapts the engine to raw invocation payloads.
type Handler struct {
	engine *engine.Engine
}

// New creates a handler over the given engine.
func New(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Handle processes a raw payload end to end and always returns an
// envelope, never an error. The payload may be a JSON object or a JSON
// string wrapping one.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) engine.Result {
	data := []byte(raw)

	// Some callers double-encode the event as a JSON string.
	var wrapped string
	if err := json.Unmarshal(data, &wrapped); err == nil {
		data = []byte(wrapped)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Error("Failed to parse invocation payload", "error", err)
		return engine.Failure(http.StatusBadRequest, errors.New("invalid input"))
	}

	loc, fields, err := Normalize(ev)
	if err != nil {
		slog.Error("Request validation failed", "error", err)
		return engine.Failure(http.StatusBadRequest, err)
	}

	return h.engine.Process(ctx, loc, fields)
}
