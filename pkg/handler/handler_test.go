package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdpr-toolkit/obfuscator/pkg/engine"
	"github.com/gdpr-toolkit/obfuscator/pkg/location"
	"github.com/gdpr-toolkit/obfuscator/pkg/storage"
)

func newLocalHandler() *Handler {
	return New(engine.New(&storage.Router{Local: storage.NewLocal()}))
}

func TestNormalize_DirectPayload(t *testing.T) {
	loc, fields, err := Normalize(Event{
		FileToObfuscate: "s3://bucket/data.csv",
		PIIFields:       []string{"name"},
	})
	require.NoError(t, err)
	assert.Equal(t, location.KindS3, loc.Kind)
	assert.Equal(t, "bucket", loc.Bucket)
	assert.Equal(t, "data.csv", loc.Key)
	assert.Equal(t, []string{"name"}, fields)
}

func TestNormalize_DirectPayload_Missing(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"missing identifier", Event{PIIFields: []string{"name"}}},
		{"empty field list", Event{FileToObfuscate: "data.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(tt.event)
			require.Error(t, err)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestNormalize_NotificationPayload(t *testing.T) {
	var records []NotificationRecord
	require.NoError(t, json.Unmarshal([]byte(`[
		{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "in/data.parquet"}}},
		{"s3": {"bucket": {"name": "other"}, "object": {"key": "ignored.csv"}}}
	]`), &records))

	loc, fields, err := Normalize(Event{Records: &records, PIIFields: []string{"email"}})
	require.NoError(t, err)
	// Only the first record of a batch is processed.
	assert.Equal(t, "uploads", loc.Bucket)
	assert.Equal(t, "in/data.parquet", loc.Key)
	assert.Equal(t, []string{"email"}, fields)
}

func TestNormalize_EmptyRecords(t *testing.T) {
	records := []NotificationRecord{}
	_, _, err := Normalize(Event{Records: &records, PIIFields: []string{"email"}})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "no records")
}

func TestHandle_DirectRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,John\n"), 0o644))

	payload, err := json.Marshal(map[string]any{
		"file_to_obfuscate": path,
		"pii_fields":        []string{"name"},
	})
	require.NoError(t, err)

	result := newLocalHandler().Handle(context.Background(), payload)
	assert.Equal(t, http.StatusOK, result.StatusCode)

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,****\n", string(updated))
}

func TestHandle_StringWrappedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"x"}]`), 0o644))

	inner, err := json.Marshal(map[string]any{
		"file_to_obfuscate": path,
		"pii_fields":        []string{"name"},
	})
	require.NoError(t, err)
	// The whole event arrives double-encoded as a JSON string.
	wrapped, err := json.Marshal(string(inner))
	require.NoError(t, err)

	result := newLocalHandler().Handle(context.Background(), wrapped)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestHandle_InvalidPayload(t *testing.T) {
	result := newLocalHandler().Handle(context.Background(), []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Body), &body))
	assert.Equal(t, "invalid input", body["error"])
}

func TestHandle_ValidationBeforeIO(t *testing.T) {
	result := newLocalHandler().Handle(context.Background(), []byte(`{"pii_fields":["name"]}`))

	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Body), &body))
	assert.Contains(t, body["error"], "missing required parameters")
}

func TestHandle_EmptyRecordsIsBadRequest(t *testing.T) {
	result := newLocalHandler().Handle(context.Background(),
		[]byte(`{"Records": [], "pii_fields": ["name"]}`))

	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}
