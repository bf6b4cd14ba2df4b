package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is the sentinel wrapped by every decode failure: bytes
// that do not parse into a valid record set for the declared format.
var ErrMalformed = errors.New("malformed input")

// malformedf wraps ErrMalformed with a format-specific detail message.
func malformedf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, a...)...)
}

// MissingFieldsError reports requested field names absent from the
// decoded schema. Masking is all-or-nothing: a single missing field
// aborts the operation before any mutation.
type MissingFieldsError struct {
	Format string   // format tag, for the error message
	Fields []string // every missing name, in request order
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("fields not found in %s: %s",
		e.Format, strings.Join(e.Fields, ", "))
}

// IsMissingFields reports whether err is a MissingFieldsError.
func IsMissingFields(err error) bool {
	var mfe *MissingFieldsError
	return errors.As(err, &mfe)
}
