package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVCodec handles delimited text with a header row. The header defines
// the schema; rows shorter than the header simply lack those fields and
// are padded with empty values on re-encode.
type CSVCodec struct{}

// ContentType implements Codec.
func (c *CSVCodec) ContentType() string { return "text/csv" }

// Decode implements Codec. An input with no parsable header row, or
// with a header but no data rows, is malformed.
func (c *CSVCodec) Decode(data []byte) (*RecordSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are legal

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, malformedf("CSV file appears to be empty or malformed")
	}
	if err != nil {
		return nil, malformedf("parsing CSV header: %v", err)
	}

	rs := &RecordSet{Fields: header}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedf("parsing CSV row: %v", err)
		}
		rec := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			}
		}
		rs.Records = append(rs.Records, rec)
	}
	if len(rs.Records) == 0 {
		return nil, malformedf("CSV file appears to be empty or malformed")
	}
	return rs, nil
}

// ValidateFields implements Codec.
func (c *CSVCodec) ValidateFields(rs *RecordSet, fields []string) error {
	if missing := missingFields(rs.Fields, fields); len(missing) > 0 {
		return &MissingFieldsError{Format: "CSV", Fields: missing}
	}
	return nil
}

// Mask implements Codec.
func (c *CSVCodec) Mask(rs *RecordSet, fields []string) {
	for _, rec := range rs.Records {
		for _, f := range fields {
			if _, ok := rec[f]; ok {
				rec[f] = MaskToken
			}
		}
	}
}

// Encode implements Codec. The header row is emitted first, in original
// column order, then one row per record in original order. Quoting and
// escaping follow RFC 4180 (values containing the delimiter, quote, or
// newline are quoted).
func (c *CSVCodec) Encode(rs *RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rs.Fields); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	row := make([]string, len(rs.Fields))
	for _, rec := range rs.Records {
		for i, name := range rs.Fields {
			row[i] = ""
			if v, ok := rec[name]; ok {
				row[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV output: %w", err)
	}
	return buf.Bytes(), nil
}
