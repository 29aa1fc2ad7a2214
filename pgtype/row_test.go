package pgtype_test

import (
	"testing"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/stretchr/testify/require"
)

func TestRowToScalar(t *testing.T) {
	t.Parallel()
	row := pgtype.NewRow([]string{"count"}, []uint32{pgtype.Int8OID}, []pgtype.Value{pgtype.Int64Value(7)})

	n, err := pgtype.RowTo[int64](row)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}

func TestRowToScalarWrongArity(t *testing.T) {
	t.Parallel()
	row := pgtype.NewRow([]string{"a", "b"}, []uint32{pgtype.Int8OID, pgtype.Int8OID},
		[]pgtype.Value{pgtype.Int64Value(1), pgtype.Int64Value(2)})

	_, err := pgtype.RowTo[int64](row)
	require.Error(t, err)
}

func TestRowToStructByPos(t *testing.T) {
	t.Parallel()
	row := pgtype.NewRow(
		[]string{"name", "age"},
		[]uint32{pgtype.TextOID, pgtype.Int4OID},
		[]pgtype.Value{pgtype.StringValue("Alice"), pgtype.Int64Value(28)},
	)

	type person struct {
		Name string
		Age  int64
	}

	p, err := pgtype.RowToStructByPos[person](row)
	require.NoError(t, err)
	require.Equal(t, person{Name: "Alice", Age: 28}, p)
}

func TestRowGetDuplicateColumnNames(t *testing.T) {
	t.Parallel()
	row := pgtype.NewRow(
		[]string{"id", "id"},
		[]uint32{pgtype.Int4OID, pgtype.Int4OID},
		[]pgtype.Value{pgtype.Int64Value(1), pgtype.Int64Value(2)},
	)

	first, ok := row.Get("id", 0)
	require.True(t, ok)
	v1, _ := first.Int64()
	require.EqualValues(t, 1, v1)

	second, ok := row.Get("id", 1)
	require.True(t, ok)
	v2, _ := second.Int64()
	require.EqualValues(t, 2, v2)

	_, ok = row.Get("id", 2)
	require.False(t, ok)

	byName, ok := row.ByName("id")
	require.True(t, ok)
	v3, _ := byName.Int64()
	require.EqualValues(t, 1, v3)
}

func TestRowToStructByPosNestedComposite(t *testing.T) {
	t.Parallel()

	type left struct {
		S    string
		Nums []int64
		Num  int64
	}

	leftComposite := pgtype.CompositeValue(0, []pgtype.Value{
		pgtype.StringValue("text"),
		pgtype.ArrayValue([]pgtype.Value{pgtype.Int64Value(1), pgtype.Int64Value(2), pgtype.Int64Value(3)}),
		pgtype.Int64Value(100),
	})
	rightArray := pgtype.ArrayValue([]pgtype.Value{
		pgtype.CompositeValue(0, []pgtype.Value{pgtype.Int64Value(1), pgtype.StringValue("str")}),
		pgtype.CompositeValue(0, []pgtype.Value{pgtype.Int64Value(2), pgtype.StringValue("aab")}),
	})

	row := pgtype.NewRow(
		[]string{"left", "right"},
		[]uint32{pgtype.CompositeOID, pgtype.ArrayOID},
		[]pgtype.Value{leftComposite, rightArray},
	)

	type right struct {
		Num int64
		S   string
	}
	type result struct {
		Left  left
		Right []right
	}

	r, err := pgtype.RowToStructByPos[result](row)
	require.NoError(t, err)
	require.Equal(t, result{
		Left: left{S: "text", Nums: []int64{1, 2, 3}, Num: 100},
		Right: []right{
			{Num: 1, S: "str"},
			{Num: 2, S: "aab"},
		},
	}, r)
}

func TestRowToNullIntoPointer(t *testing.T) {
	t.Parallel()
	row := pgtype.NewRow([]string{"name"}, []uint32{pgtype.TextOID}, []pgtype.Value{pgtype.Null})

	v, err := pgtype.RowTo[*string](row)
	require.NoError(t, err)
	require.Nil(t, v)
}
