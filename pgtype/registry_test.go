package pgtype_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoadPopulatesAllThreeMaps(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()

	err := reg.Load(context.Background(), fakeCatalog{
		"typelem":   {{"1009", "25"}},
		"atttypid":  {{"16400", "23"}, {"16400", "25"}},
		"enumtypid": {{"16500", "1", "red"}, {"16500", "2", "blue"}},
	})
	require.NoError(t, err)

	elem, ok := reg.ArrayElementOID(1009)
	require.True(t, ok)
	require.EqualValues(t, 25, elem)

	fields, ok := reg.CompositeFields(16400)
	require.True(t, ok)
	require.Equal(t, []uint32{23, 25}, fields)

	label, ok := reg.EnumLabel(16500, 1)
	require.True(t, ok)
	require.Equal(t, "red", label)

	require.True(t, reg.IsEnumType(16500))
	require.False(t, reg.IsEnumType(16400))

	valOID, ok := reg.EnumLabelByText(16500, "blue")
	require.True(t, ok)
	require.EqualValues(t, 2, valOID)
}

type erroringCatalog struct{}

func (erroringCatalog) QueryCatalog(context.Context, string) ([][]string, error) {
	return nil, errors.New("boom")
}

func TestRegistryLoadPropagatesQueryError(t *testing.T) {
	t.Parallel()
	reg := pgtype.NewRegistry()
	err := reg.Load(context.Background(), erroringCatalog{})
	require.Error(t, err)
}
