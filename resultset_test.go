package pgwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandTagRowsAffected(t *testing.T) {
	t.Parallel()
	require.EqualValues(t, 3, CommandTag("UPDATE 3").RowsAffected())
	require.EqualValues(t, 1, CommandTag("INSERT 0 1").RowsAffected())
	require.EqualValues(t, 0, CommandTag("CREATE TABLE").RowsAffected())
	require.EqualValues(t, 0, CommandTag("").RowsAffected())
}

func TestCommandTagKindAccessors(t *testing.T) {
	t.Parallel()
	require.True(t, CommandTag("INSERT 0 1").Insert())
	require.False(t, CommandTag("INSERT 0 1").Update())

	require.True(t, CommandTag("UPDATE 3").Update())
	require.False(t, CommandTag("UPDATE 3").Delete())

	require.True(t, CommandTag("DELETE 2").Delete())
	require.False(t, CommandTag("DELETE 2").Select())

	require.True(t, CommandTag("SELECT 5").Select())
	require.False(t, CommandTag("SELECT 5").Insert())
}

func TestParseCommandTagExtractsInsertOID(t *testing.T) {
	t.Parallel()
	tag, oid := parseCommandTag([]byte("INSERT 12345 1"))
	require.Equal(t, CommandTag("INSERT 12345 1"), tag)
	require.EqualValues(t, 12345, oid)

	tag, oid = parseCommandTag([]byte("DELETE 4"))
	require.Equal(t, CommandTag("DELETE 4"), tag)
	require.EqualValues(t, 0, oid)
}
