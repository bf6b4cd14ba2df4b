package location

import "strings"

// Format is the closed set of file formats the obfuscator understands.
type Format int

const (
	// FormatCSV is delimited text with a header row.
	FormatCSV Format = iota
	// FormatJSON is a JSON array of objects.
	FormatJSON
	// FormatParquet is the Apache Parquet columnar format.
	FormatParquet
)

// String returns the lowercase format tag used in file extensions.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	}
	return "unknown"
}

// ContentType returns the MIME type attached when storing this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatParquet:
		return "application/parquet"
	}
	return "application/octet-stream"
}

// UnsupportedFormatError reports an identifier whose extension does not
// map onto a recognized format.
type UnsupportedFormatError struct {
	// Detail is the offending extension, or a description when no
	// extension is present at all.
	Detail string
}

// Error returns the message surfaced verbatim in result envelopes, so
// it is capitalized like a user-facing sentence rather than a wrapped
// error fragment.
func (e *UnsupportedFormatError) Error() string {
	return "Unsupported file format: " + e.Detail
}

// DetectFormat derives the format from the lowercase extension after
// the last dot in the identifier. Identifiers without a dot, or with an
// unrecognized extension, fail with UnsupportedFormatError.
func DetectFormat(identifier string) (Format, error) {
	i := strings.LastIndexByte(identifier, '.')
	if i < 0 {
		return 0, &UnsupportedFormatError{Detail: "No extension found"}
	}
	ext := strings.ToLower(identifier[i+1:])
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	}
	return 0, &UnsupportedFormatError{Detail: ext}
}
