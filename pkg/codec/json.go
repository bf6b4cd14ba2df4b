package codec

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONCodec handles a JSON array of objects. Each record keeps its raw
// source text so that re-encoding preserves the original key order of
// every object, which map-based marshalling would destroy.
type JSONCodec struct{}

// jsonNative is the codec-private state: one raw JSON object per record.
type jsonNative struct {
	raws []string
}

// ContentType implements Codec.
func (c *JSONCodec) ContentType() string { return "application/json" }

// Decode implements Codec. The top-level value must be an array of
// objects; an explicit empty array is valid and round-trips to an empty
// array. A syntactically invalid payload reports a generic malformed
// message rather than a raw parser error.
func (c *JSONCodec) Decode(data []byte) (*RecordSet, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformedf("invalid JSON format")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, malformedf("JSON content must be a list of objects")
	}

	rs := &RecordSet{}
	native := &jsonNative{}
	seen := make(map[string]bool)
	for _, el := range root.Array() {
		if !el.IsObject() {
			return nil, malformedf("JSON content must be a list of objects")
		}
		rec := make(map[string]any)
		el.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if !seen[name] {
				seen[name] = true
				rs.Fields = append(rs.Fields, name)
			}
			rec[name] = value.Value()
			return true
		})
		rs.Records = append(rs.Records, rec)
		native.raws = append(native.raws, el.Raw)
	}
	rs.native = native
	return rs, nil
}

// ValidateFields implements Codec. Field presence per record is
// independent, so a name counts as present when any record carries it.
// An empty record sequence validates vacuously.
func (c *JSONCodec) ValidateFields(rs *RecordSet, fields []string) error {
	if len(rs.Records) == 0 {
		return nil
	}
	if missing := missingFields(rs.Fields, fields); len(missing) > 0 {
		return &MissingFieldsError{Format: "JSON", Fields: missing}
	}
	return nil
}

// Mask implements Codec. Records missing a listed key are skipped for
// that key, not given one.
func (c *JSONCodec) Mask(rs *RecordSet, fields []string) {
	native, _ := rs.native.(*jsonNative)
	for i, rec := range rs.Records {
		for _, f := range fields {
			if _, ok := rec[f]; !ok {
				continue
			}
			rec[f] = MaskToken
			if native == nil {
				continue
			}
			raw, err := sjson.Set(native.raws[i], escapePath(f), MaskToken)
			if err != nil {
				// sjson cannot address a few degenerate key names,
				// such as the empty string. Rewrite the object by
				// hand so the raw text never keeps an unmasked value.
				raw = maskRaw(native.raws[i], f)
			}
			native.raws[i] = raw
		}
	}
}

// Encode implements Codec.
func (c *JSONCodec) Encode(rs *RecordSet) ([]byte, error) {
	native, _ := rs.native.(*jsonNative)
	if native == nil || len(native.raws) == 0 {
		return []byte("[]"), nil
	}
	return []byte("[" + strings.Join(native.raws, ",") + "]"), nil
}

// maskRaw rewrites one raw JSON object, replacing the value of every
// occurrence of field with the mask token. Key order and the raw text
// of the other values are preserved.
func maskRaw(raw, field string) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	gjson.Parse(raw).ForEach(func(key, value gjson.Result) bool {
		if !first {
			b.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key.String())
		b.Write(k)
		b.WriteByte(':')
		if key.String() == field {
			b.WriteString(`"` + MaskToken + `"`)
		} else {
			b.WriteString(value.Raw)
		}
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// escapePath escapes gjson/sjson path metacharacters so that a field
// name containing dots or wildcards addresses the literal key.
func escapePath(field string) string {
	var b strings.Builder
	for _, r := range field {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
