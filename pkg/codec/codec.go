// Package codec implements the per-format decode/validate/mask/encode
// pipeline for the three supported file formats. Each codec shares the
// same contract but keeps its own encoding state so that re-encoding
// reproduces the original structure (header order, record key order,
// columnar schema).
package codec

import (
	"fmt"

	"github.com/gdpr-toolkit/obfuscator/pkg/location"
)

// MaskToken is the fixed value substituted for every masked field. Not
// configurable.
const MaskToken = "****"

// RecordSet is the decoded, format-independent view of a file: an
// ordered field schema and one map per record. Codecs attach private
// encoding state (raw JSON elements, Arrow column types) so that
// Encode can reproduce the original structure.
type RecordSet struct {
	// Fields is the schema in original order (header order for CSV,
	// first-appearance key order for JSON, column order for Parquet).
	Fields []string
	// Records maps field name to value, one map per record, in file
	// order. A record may lack keys for fields it does not carry.
	Records []map[string]any

	// native holds codec-private state needed by Encode.
	native any
}

// Codec is the uniform contract every format implements.
type Codec interface {
	// Decode parses raw bytes into a RecordSet. Inputs that do not
	// form a valid record set for the format fail with ErrMalformed.
	Decode(data []byte) (*RecordSet, error)

	// ValidateFields checks that every requested field exists in the
	// decoded schema, before any mutation. Absent names fail with a
	// MissingFieldsError carrying the full list.
	ValidateFields(rs *RecordSet, fields []string) error

	// Mask replaces the value of every listed field, in every record
	// that carries it, with MaskToken. In-place; order preserved.
	Mask(rs *RecordSet, fields []string)

	// Encode serializes the record set back to bytes in the original
	// format.
	Encode(rs *RecordSet) ([]byte, error)

	// ContentType is the MIME type attached when storing the output.
	ContentType() string
}

// ForFormat returns the codec for a format tag. The format set is
// closed; an unknown tag is a programming error surfaced as an error
// rather than a panic.
func ForFormat(f location.Format) (Codec, error) {
	switch f {
	case location.FormatCSV:
		return &CSVCodec{}, nil
	case location.FormatJSON:
		return &JSONCodec{}, nil
	case location.FormatParquet:
		return &ParquetCodec{}, nil
	}
	return nil, fmt.Errorf("no codec for format %q", f)
}

// missingFields returns the requested names absent from the schema, in
// request order.
func missingFields(schema []string, fields []string) []string {
	present := make(map[string]bool, len(schema))
	for _, f := range schema {
		present[f] = true
	}
	var missing []string
	for _, f := range fields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
