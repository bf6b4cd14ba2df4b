package codec

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildParquet serializes columns of int64 ids and string names into a
// parquet payload using the same arrow library the codec wraps.
func buildParquet(t *testing.T, ids []int64, names []string) []byte {
	t.Helper()

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()
	bldr.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	bldr.Field(1).(*array.StringBuilder).AppendValues(names, nil)

	rec := bldr.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, max(tbl.NumRows(), 1),
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	return buf.Bytes()
}

func TestParquetDecode(t *testing.T) {
	c := &ParquetCodec{}
	rs, err := c.Decode(buildParquet(t, []int64{1, 2}, []string{"John", "Jane"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, rs.Fields)
	require.Len(t, rs.Records, 2)
	assert.Equal(t, int64(1), rs.Records[0]["id"])
	assert.Equal(t, "John", rs.Records[0]["name"])
	assert.Equal(t, int64(2), rs.Records[1]["id"])
	assert.Equal(t, "Jane", rs.Records[1]["name"])
}

func TestParquetDecode_NotParquet(t *testing.T) {
	c := &ParquetCodec{}
	_, err := c.Decode([]byte("definitely not parquet"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParquetDecode_ZeroRows(t *testing.T) {
	c := &ParquetCodec{}
	_, err := c.Decode(buildParquet(t, nil, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "empty")
}

func TestParquetMask(t *testing.T) {
	c := &ParquetCodec{}
	rs, err := c.Decode(buildParquet(t, []int64{1, 2}, []string{"John", "Jane"}))
	require.NoError(t, err)

	require.NoError(t, c.ValidateFields(rs, []string{"name"}))
	c.Mask(rs, []string{"name"})

	out, err := c.Encode(rs)
	require.NoError(t, err)

	// Decode the re-encoded payload: name masked for every row, id intact.
	rs2, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rs2.Fields)
	require.Len(t, rs2.Records, 2)
	assert.Equal(t, "****", rs2.Records[0]["name"])
	assert.Equal(t, "****", rs2.Records[1]["name"])
	assert.Equal(t, int64(1), rs2.Records[0]["id"])
	assert.Equal(t, int64(2), rs2.Records[1]["id"])
}

func TestParquetMask_WidensColumnTypeToString(t *testing.T) {
	c := &ParquetCodec{}
	rs, err := c.Decode(buildParquet(t, []int64{1, 2}, []string{"John", "Jane"}))
	require.NoError(t, err)

	// Masking a numeric column turns it into a string column.
	c.Mask(rs, []string{"id"})
	out, err := c.Encode(rs)
	require.NoError(t, err)

	rs2, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "****", rs2.Records[0]["id"])
	assert.Equal(t, "****", rs2.Records[1]["id"])
	assert.Equal(t, "John", rs2.Records[0]["name"])
}

func TestParquetMask_TemporalColumnsPreserved(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "joined", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "last_seen", Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true},
	}, nil)

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()
	bldr.Field(0).(*array.StringBuilder).AppendValues([]string{"John", "Jane"}, nil)
	bldr.Field(1).(*array.Date32Builder).AppendValues([]arrow.Date32{19000, 19001}, nil)
	bldr.Field(2).(*array.TimestampBuilder).AppendValues(
		[]arrow.Timestamp{1700000000000000, 1700000001000000}, nil)

	rec := bldr.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, tbl.NumRows(),
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))

	c := &ParquetCodec{}
	rs, err := c.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "joined", "last_seen"}, rs.Fields)
	assert.Equal(t, arrow.Date32(19000), rs.Records[0]["joined"])

	c.Mask(rs, []string{"name"})
	out, err := c.Encode(rs)
	require.NoError(t, err)

	// Date and timestamp columns survive the round trip untouched.
	rs2, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "****", rs2.Records[0]["name"])
	assert.Equal(t, arrow.Date32(19001), rs2.Records[1]["joined"])
	assert.Equal(t, arrow.Timestamp(1700000000000000), rs2.Records[0]["last_seen"])
}

func TestParquetValidateFields_Missing(t *testing.T) {
	c := &ParquetCodec{}
	rs, err := c.Decode(buildParquet(t, []int64{1}, []string{"John"}))
	require.NoError(t, err)

	err = c.ValidateFields(rs, []string{"email"})
	require.Error(t, err)

	var mfe *MissingFieldsError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, []string{"email"}, mfe.Fields)
	assert.Equal(t, "fields not found in Parquet: email", err.Error())
}

func TestParquetRoundTrip_PreservesSchemaAndValues(t *testing.T) {
	c := &ParquetCodec{}
	data := buildParquet(t, []int64{10, 20, 30}, []string{"a", "b", "c"})

	rs, err := c.Decode(data)
	require.NoError(t, err)
	out, err := c.Encode(rs)
	require.NoError(t, err)

	rs2, err := c.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, rs.Fields, rs2.Fields)
	assert.Equal(t, rs.Records, rs2.Records)
}

func TestParquetMask_Idempotent(t *testing.T) {
	c := &ParquetCodec{}
	rs, err := c.Decode(buildParquet(t, []int64{1}, []string{"John"}))
	require.NoError(t, err)

	c.Mask(rs, []string{"name"})
	once, err := c.Encode(rs)
	require.NoError(t, err)

	rs2, err := c.Decode(once)
	require.NoError(t, err)
	c.Mask(rs2, []string{"name"})
	twice, err := c.Encode(rs2)
	require.NoError(t, err)

	rsA, err := c.Decode(once)
	require.NoError(t, err)
	rsB, err := c.Decode(twice)
	require.NoError(t, err)
	assert.Equal(t, rsA.Records, rsB.Records)
}
