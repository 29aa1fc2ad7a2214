package pgtype_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kanzidb/pgwire/pgtype"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, reg *pgtype.Registry, oid uint32, v pgtype.Value) pgtype.Value {
	t.Helper()
	buf, err := pgtype.EncodeValue(reg, oid, v)
	require.NoError(t, err)
	got, err := pgtype.DecodeValue(reg, oid, buf)
	require.NoError(t, err)
	return got
}

func TestScalarCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	b := roundTrip(t, reg, pgtype.BoolOID, pgtype.BoolValue(true))
	bv, err := b.Bool()
	require.NoError(t, err)
	require.True(t, bv)

	i4 := roundTrip(t, reg, pgtype.Int4OID, pgtype.Int64Value(-12345))
	i4v, err := i4.Int64()
	require.NoError(t, err)
	require.EqualValues(t, -12345, i4v)

	i8 := roundTrip(t, reg, pgtype.Int8OID, pgtype.Int64Value(1<<40))
	i8v, err := i8.Int64()
	require.NoError(t, err)
	require.EqualValues(t, 1<<40, i8v)

	f8 := roundTrip(t, reg, pgtype.Float8OID, pgtype.Float64Value(3.14159))
	f8v, err := f8.Float64()
	require.NoError(t, err)
	require.InDelta(t, 3.14159, f8v, 1e-9)

	s := roundTrip(t, reg, pgtype.TextOID, pgtype.StringValue("hello"))
	sv, err := s.String()
	require.NoError(t, err)
	require.Equal(t, "hello", sv)
}

func TestUUIDCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	want := uuid.New()

	got := roundTrip(t, reg, pgtype.UUIDOID, pgtype.UUIDValue(want))
	gv, err := got.UUID()
	require.NoError(t, err)
	require.Equal(t, want, gv)
}

func TestUUIDCodecRejectsWrongLength(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	_, err := pgtype.DecodeValue(reg, pgtype.UUIDOID, make([]byte, 15))
	require.Error(t, err)
}

func TestDateCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	want := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	got := roundTrip(t, reg, pgtype.DateOID, pgtype.DateValue(want))
	gv, err := got.Time()
	require.NoError(t, err)
	require.True(t, want.Equal(gv))
}

func TestTimestampTzCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	want := time.Date(2026, 8, 3, 12, 34, 56, 789000, time.UTC)

	got := roundTrip(t, reg, pgtype.TimestampTzOID, pgtype.TimeValue(want))
	gv, err := got.Time()
	require.NoError(t, err)
	require.True(t, want.Equal(gv))
}

func TestIntervalCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	want := pgtype.Interval{Microseconds: 1_500_000, Days: 2, Months: 3}

	got := roundTrip(t, reg, pgtype.IntervalOID, pgtype.IntervalValue(want))
	gv, err := got.Interval()
	require.NoError(t, err)
	require.Equal(t, want, gv)
}

func TestArrayCodecRoundTrip(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	require.NoError(t, reg.Load(context.Background(), fakeCatalog{
		"typelem": {{"1009", "25"}}, // text[] -> text
	}))

	elems := []pgtype.Value{pgtype.StringValue("a"), pgtype.StringValue("b"), pgtype.Null}
	buf, err := pgtype.EncodeValue(reg, 1009, pgtype.ArrayValue(elems))
	require.NoError(t, err)

	got, err := pgtype.DecodeValue(reg, 1009, buf)
	require.NoError(t, err)
	arr, err := got.Array()
	require.NoError(t, err)
	require.Len(t, arr, 3)
	s0, _ := arr[0].String()
	require.Equal(t, "a", s0)
	require.True(t, arr[2].IsNull())
}

func TestArrayCodecRoundTrip2D(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	require.NoError(t, reg.Load(context.Background(), fakeCatalog{
		"typelem": {{"1009", "25"}}, // text[] -> text
	}))

	rows := []pgtype.Value{
		pgtype.ArrayValue([]pgtype.Value{pgtype.StringValue("a"), pgtype.StringValue("b")}),
		pgtype.ArrayValue([]pgtype.Value{pgtype.StringValue("c"), pgtype.StringValue("d")}),
	}
	buf, err := pgtype.EncodeValue(reg, 1009, pgtype.ArrayValue(rows))
	require.NoError(t, err)

	got, err := pgtype.DecodeValue(reg, 1009, buf)
	require.NoError(t, err)
	outer, err := got.Array()
	require.NoError(t, err)
	require.Len(t, outer, 2)

	row0, err := outer[0].Array()
	require.NoError(t, err)
	require.Len(t, row0, 2)
	s0, _ := row0[0].String()
	s1, _ := row0[1].String()
	require.Equal(t, "a", s0)
	require.Equal(t, "b", s1)

	row1, err := outer[1].Array()
	require.NoError(t, err)
	s2, _ := row1[0].String()
	s3, _ := row1[1].String()
	require.Equal(t, "c", s2)
	require.Equal(t, "d", s3)
}

func TestArrayCodecRejectsRaggedDimensions(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	require.NoError(t, reg.Load(context.Background(), fakeCatalog{
		"typelem": {{"1009", "25"}},
	}))

	ragged := []pgtype.Value{
		pgtype.ArrayValue([]pgtype.Value{pgtype.StringValue("a")}),
		pgtype.ArrayValue([]pgtype.Value{pgtype.StringValue("b"), pgtype.StringValue("c")}),
	}
	_, err := pgtype.EncodeValue(reg, 1009, pgtype.ArrayValue(ragged))
	require.Error(t, err)
}

func TestDecodeValueAnonymousRecord(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	var buf []byte
	buf = appendInt32(buf, 2) // field count
	buf = appendUint32(buf, pgtype.TextOID)
	buf = appendInt32(buf, 5)
	buf = append(buf, "hello"...)
	buf = appendUint32(buf, pgtype.Int4OID)
	buf = appendInt32(buf, 4)
	buf = appendInt32(buf, 7)

	got, err := pgtype.DecodeValue(reg, pgtype.CompositeOID, buf)
	require.NoError(t, err)
	fields, err := got.Composite()
	require.NoError(t, err)
	require.Len(t, fields, 2)

	s, err := fields[0].String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	n, err := fields[1].Int64()
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}

func appendInt32(buf []byte, v int32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return appendInt32(buf, int32(v))
}

func TestEnumLabelValidation(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	require.NoError(t, reg.Load(context.Background(), fakeCatalog{
		"enumtypid": {{"5000", "1", "happy"}, {"5000", "2", "sad"}},
	}))

	buf, err := pgtype.EncodeValue(reg, 5000, pgtype.StringValue("happy"))
	require.NoError(t, err)
	require.Equal(t, "happy", string(buf))

	_, err = pgtype.EncodeValue(reg, 5000, pgtype.StringValue("furious"))
	require.Error(t, err)
}

// fakeCatalog implements pgtype.CatalogQuerier, matching each bootstrap
// query by a distinguishing substring so registry tests don't need a live
// server. An unmatched query returns no rows, same as an empty catalog.
type fakeCatalog map[string][][]string

func (f fakeCatalog) QueryCatalog(_ context.Context, sql string) ([][]string, error) {
	for substr, rows := range f {
		if strings.Contains(sql, substr) {
			return rows, nil
		}
	}
	return nil, nil
}
