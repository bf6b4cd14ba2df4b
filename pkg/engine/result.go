package engine

import (
	"encoding/json"
	"net/http"
)

// Result is the envelope returned by every top-level operation. Body is
// a JSON document: {"message": …, "format": …} on success, {"error": …}
// on failure. The envelope is always fully populated and is never
// raised past the caller as an error.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type successBody struct {
	Message string `json:"message"`
	Format  string `json:"format"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Success builds a 200-class envelope.
func Success(message, format string) Result {
	body, _ := json.Marshal(successBody{Message: message, Format: format})
	return Result{StatusCode: http.StatusOK, Body: string(body)}
}

// Failure builds an error envelope with the given status class.
func Failure(statusCode int, err error) Result {
	body, _ := json.Marshal(errorBody{Error: err.Error()})
	return Result{StatusCode: statusCode, Body: string(body)}
}
