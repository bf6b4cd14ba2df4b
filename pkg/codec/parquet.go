package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetCodec handles the self-describing Parquet columnar format. The
// file is materialized into an Arrow table and flattened into a row
// view for validation and masking; the Arrow column types travel with
// the record set so Encode can reproduce the schema. Masked columns are
// re-encoded as nullable UTF-8 strings regardless of their original
// type: masking intentionally widens numeric columns to text.
type ParquetCodec struct{}

// parquetNative is the codec-private state: one Arrow type per column,
// parallel to RecordSet.Fields.
type parquetNative struct {
	types []arrow.DataType
}

// ContentType implements Codec.
func (c *ParquetCodec) ContentType() string { return "application/parquet" }

// Decode implements Codec. A payload that is not a Parquet file, a
// table with no columns, and a table with no rows are all malformed.
func (c *ParquetCodec) Decode(data []byte) (*RecordSet, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, malformedf("parsing parquet file: %v", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, malformedf("reading parquet file: %v", err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, malformedf("reading parquet table: %v", err)
	}
	defer tbl.Release()

	if tbl.NumCols() == 0 || tbl.NumRows() == 0 {
		return nil, malformedf("parquet file appears to be empty")
	}

	ncols := int(tbl.NumCols())
	nrows := int(tbl.NumRows())
	schema := tbl.Schema()

	rs := &RecordSet{Fields: make([]string, ncols)}
	native := &parquetNative{types: make([]arrow.DataType, ncols)}
	columns := make([][]any, ncols)
	for i := 0; i < ncols; i++ {
		f := schema.Field(i)
		rs.Fields[i] = f.Name
		native.types[i] = f.Type
		vals := make([]any, 0, nrows)
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			vals, err = appendColumnValues(vals, chunk)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", f.Name, err)
			}
		}
		columns[i] = vals
	}

	rs.Records = make([]map[string]any, nrows)
	for r := 0; r < nrows; r++ {
		rec := make(map[string]any, ncols)
		for i, name := range rs.Fields {
			rec[name] = columns[i][r]
		}
		rs.Records[r] = rec
	}
	rs.native = native
	return rs, nil
}

// ValidateFields implements Codec.
func (c *ParquetCodec) ValidateFields(rs *RecordSet, fields []string) error {
	if missing := missingFields(rs.Fields, fields); len(missing) > 0 {
		return &MissingFieldsError{Format: "Parquet", Fields: missing}
	}
	return nil
}

// Mask implements Codec. The whole column is replaced, nulls included,
// and the column type is widened to string in the output schema.
func (c *ParquetCodec) Mask(rs *RecordSet, fields []string) {
	native, _ := rs.native.(*parquetNative)
	masked := make(map[string]bool, len(fields))
	for _, f := range fields {
		masked[f] = true
	}
	for i, name := range rs.Fields {
		if !masked[name] {
			continue
		}
		if native != nil {
			native.types[i] = arrow.BinaryTypes.String
		}
		for _, rec := range rs.Records {
			rec[name] = MaskToken
		}
	}
}

// Encode implements Codec. Column order, row order, and the Arrow types
// of unmasked columns are preserved exactly.
func (c *ParquetCodec) Encode(rs *RecordSet) ([]byte, error) {
	native, ok := rs.native.(*parquetNative)
	if !ok {
		return nil, errors.New("record set was not produced by the parquet codec")
	}

	mem := memory.DefaultAllocator
	arrowFields := make([]arrow.Field, len(rs.Fields))
	for i, name := range rs.Fields {
		arrowFields[i] = arrow.Field{Name: name, Type: native.types[i], Nullable: true}
	}
	schema := arrow.NewSchema(arrowFields, nil)

	cols := make([]arrow.Column, 0, len(rs.Fields))
	defer func() {
		for i := range cols {
			cols[i].Release()
		}
	}()
	for i, name := range rs.Fields {
		arr, err := buildColumnArray(mem, native.types[i], rs.Records, name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, arrow.NewColumnFromArr(schema.Field(i), arr))
		arr.Release()
	}

	tbl := array.NewTable(schema, cols, int64(len(rs.Records)))
	defer tbl.Release()

	var buf bytes.Buffer
	err := pqarrow.WriteTable(tbl, &buf, max(tbl.NumRows(), 1),
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("writing parquet table: %w", err)
	}
	return buf.Bytes(), nil
}

// appendColumnValues flattens one Arrow array chunk into Go values,
// appending to dst. Nulls become nil.
func appendColumnValues(dst []any, arr arrow.Array) ([]any, error) {
	appendVal := func(i int, v any) {
		if arr.IsNull(i) {
			dst = append(dst, nil)
		} else {
			dst = append(dst, v)
		}
	}
	switch a := arr.(type) {
	case *array.Boolean:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Int8:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Int16:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Int32:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Int64:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Uint8:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Uint16:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Uint32:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Uint64:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Float32:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Float64:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.LargeString:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Binary:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Date32:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Date64:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Timestamp:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Time32:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Time64:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Decimal128:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	case *array.Decimal256:
		for i := 0; i < a.Len(); i++ {
			appendVal(i, a.Value(i))
		}
	default:
		return nil, malformedf("unsupported parquet column type %s", arr.DataType())
	}
	return dst, nil
}

// buildColumnArray rebuilds one Arrow array from the record view.
func buildColumnArray(mem memory.Allocator, dt arrow.DataType, records []map[string]any, name string) (arrow.Array, error) {
	bldr := array.NewBuilder(mem, dt)
	defer bldr.Release()

	for _, rec := range records {
		v := rec[name]
		if v == nil {
			bldr.AppendNull()
			continue
		}
		if err := appendBuilderValue(bldr, v); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
	}
	return bldr.NewArray(), nil
}

// appendBuilderValue appends a single Go value to the matching builder.
func appendBuilderValue(bldr array.Builder, v any) error {
	switch b := bldr.(type) {
	case *array.BooleanBuilder:
		val, ok := v.(bool)
		if !ok {
			return fmt.Errorf("value %v is not a boolean", v)
		}
		b.Append(val)
	case *array.Int8Builder:
		val, ok := v.(int8)
		if !ok {
			return fmt.Errorf("value %v is not an int8", v)
		}
		b.Append(val)
	case *array.Int16Builder:
		val, ok := v.(int16)
		if !ok {
			return fmt.Errorf("value %v is not an int16", v)
		}
		b.Append(val)
	case *array.Int32Builder:
		val, ok := v.(int32)
		if !ok {
			return fmt.Errorf("value %v is not an int32", v)
		}
		b.Append(val)
	case *array.Int64Builder:
		val, ok := v.(int64)
		if !ok {
			return fmt.Errorf("value %v is not an int64", v)
		}
		b.Append(val)
	case *array.Uint8Builder:
		val, ok := v.(uint8)
		if !ok {
			return fmt.Errorf("value %v is not a uint8", v)
		}
		b.Append(val)
	case *array.Uint16Builder:
		val, ok := v.(uint16)
		if !ok {
			return fmt.Errorf("value %v is not a uint16", v)
		}
		b.Append(val)
	case *array.Uint32Builder:
		val, ok := v.(uint32)
		if !ok {
			return fmt.Errorf("value %v is not a uint32", v)
		}
		b.Append(val)
	case *array.Uint64Builder:
		val, ok := v.(uint64)
		if !ok {
			return fmt.Errorf("value %v is not a uint64", v)
		}
		b.Append(val)
	case *array.Float32Builder:
		val, ok := v.(float32)
		if !ok {
			return fmt.Errorf("value %v is not a float32", v)
		}
		b.Append(val)
	case *array.Float64Builder:
		val, ok := v.(float64)
		if !ok {
			return fmt.Errorf("value %v is not a float64", v)
		}
		b.Append(val)
	case *array.StringBuilder:
		val, ok := v.(string)
		if !ok {
			return fmt.Errorf("value %v is not a string", v)
		}
		b.Append(val)
	case *array.LargeStringBuilder:
		val, ok := v.(string)
		if !ok {
			return fmt.Errorf("value %v is not a string", v)
		}
		b.Append(val)
	case *array.BinaryBuilder:
		val, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("value %v is not a byte slice", v)
		}
		b.Append(val)
	case *array.Date32Builder:
		val, ok := v.(arrow.Date32)
		if !ok {
			return fmt.Errorf("value %v is not a date32", v)
		}
		b.Append(val)
	case *array.Date64Builder:
		val, ok := v.(arrow.Date64)
		if !ok {
			return fmt.Errorf("value %v is not a date64", v)
		}
		b.Append(val)
	case *array.TimestampBuilder:
		val, ok := v.(arrow.Timestamp)
		if !ok {
			return fmt.Errorf("value %v is not a timestamp", v)
		}
		b.Append(val)
	case *array.Time32Builder:
		val, ok := v.(arrow.Time32)
		if !ok {
			return fmt.Errorf("value %v is not a time32", v)
		}
		b.Append(val)
	case *array.Time64Builder:
		val, ok := v.(arrow.Time64)
		if !ok {
			return fmt.Errorf("value %v is not a time64", v)
		}
		b.Append(val)
	case *array.Decimal128Builder:
		val, ok := v.(decimal128.Num)
		if !ok {
			return fmt.Errorf("value %v is not a decimal128", v)
		}
		b.Append(val)
	case *array.Decimal256Builder:
		val, ok := v.(decimal256.Num)
		if !ok {
			return fmt.Errorf("value %v is not a decimal256", v)
		}
		b.Append(val)
	default:
		return fmt.Errorf("unsupported builder type %T", bldr)
	}
	return nil
}
