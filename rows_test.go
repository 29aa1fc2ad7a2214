package pgwire_test

import (
	"context"
	"testing"

	"github.com/kanzidb/pgwire"
	"github.com/kanzidb/pgwire/internal/pgmock"
	"github.com/kanzidb/pgwire/pgtype"
	"github.com/kanzidb/pgwire/wireproto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedScalarQuery(values ...int32) *pgmock.Script {
	script := &pgmock.Script{Steps: pgmock.AcceptUnauthenticatedConnRequestSteps()}
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)

	script.Steps = append(script.Steps,
		pgmock.ExpectAnyMessage(&wireproto.Parse{}),
		pgmock.ExpectAnyMessage(&wireproto.Flush{}),
		pgmock.SendMessage(&wireproto.ParseComplete{}),
		pgmock.ExpectAnyMessage(&wireproto.Close{}),
		pgmock.ExpectAnyMessage(&wireproto.Bind{}),
		pgmock.ExpectAnyMessage(&wireproto.Describe{}),
		pgmock.ExpectAnyMessage(&wireproto.Flush{}),
		pgmock.SendMessage(&wireproto.CloseComplete{}),
		pgmock.SendMessage(&wireproto.BindComplete{}),
		pgmock.SendMessage(&wireproto.RowDescription{Fields: []wireproto.FieldDescription{
			{Name: []byte("n"), DataTypeOID: pgtype.Int4OID, Format: 1},
		}}),
		pgmock.ExpectAnyMessage(&wireproto.Execute{}),
		pgmock.ExpectAnyMessage(&wireproto.Sync{}),
	)
	for _, v := range values {
		script.Steps = append(script.Steps, pgmock.SendMessage(&wireproto.DataRow{
			Values: [][]byte{{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}},
		}))
	}
	script.Steps = append(script.Steps,
		pgmock.SendMessage(&wireproto.CommandComplete{CommandTag: []byte("SELECT 3")}),
		pgmock.SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
		pgmock.ExpectMessage(&wireproto.Terminate{}),
	)
	return script
}

func TestCollectRows(t *testing.T) {
	script := scriptedScalarQuery(1, 2, 3)
	conn, serverErrChan := runScriptedServer(t, script)
	ctx := context.Background()

	rs, err := conn.Query(ctx, "select n from t", nil, nil)
	require.NoError(t, err)

	got, err := pgwire.CollectRows(rs, func(row pgtype.Row) (int64, error) {
		return pgtype.RowTo[int64](row)
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, got)
	require.NoError(t, rs.Close())

	conn.Close(ctx)
	assert.NoError(t, <-serverErrChan)
}

func TestForEachRow(t *testing.T) {
	script := scriptedScalarQuery(10, 20)
	conn, serverErrChan := runScriptedServer(t, script)
	ctx := context.Background()

	rs, err := conn.Query(ctx, "select n from t", nil, nil)
	require.NoError(t, err)

	var sum int64
	err = pgwire.ForEachRow(rs, func(row pgtype.Row) error {
		n, err := pgtype.RowTo[int64](row)
		if err != nil {
			return err
		}
		sum += n
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 30, sum)
	require.NoError(t, rs.Close())

	conn.Close(ctx)
	assert.NoError(t, <-serverErrChan)
}
