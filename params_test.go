package pgwire

import (
	"testing"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/stretchr/testify/require"
)

func TestEncodeParamsAllBinaryShareOneFormatCode(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	values, formats, err := encodeParams(reg,
		[]uint32{pgtype.Int4OID, pgtype.BoolOID},
		[]pgtype.Value{pgtype.Int64Value(7), pgtype.BoolValue(true)},
	)
	require.NoError(t, err)
	require.Equal(t, []int16{1}, formats)
	require.Len(t, values, 2)
	require.Equal(t, []byte{0, 0, 0, 7}, values[0])
}

func TestEncodeParamsMixedTextBinaryOneCodePerParam(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	values, formats, err := encodeParams(reg,
		[]uint32{pgtype.TextOID, pgtype.Int4OID},
		[]pgtype.Value{pgtype.StringValue("hi"), pgtype.Int64Value(1)},
	)
	require.NoError(t, err)
	require.Equal(t, []int16{0, 1}, formats)
	require.Equal(t, []byte("hi"), values[0])
}

func TestEncodeParamsNullValue(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	values, _, err := encodeParams(reg, []uint32{pgtype.TextOID}, []pgtype.Value{pgtype.Null})
	require.NoError(t, err)
	require.Nil(t, values[0])
}

func TestEncodeParamsArityMismatch(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	_, _, err := encodeParams(reg, []uint32{pgtype.TextOID}, nil)
	require.Error(t, err)
	var pe *ParameterError
	require.ErrorAs(t, err, &pe)
}
