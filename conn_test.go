package pgwire_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/kanzidb/pgwire"
	"github.com/kanzidb/pgwire/internal/pgmock"
	"github.com/kanzidb/pgwire/pgtype"
	"github.com/kanzidb/pgwire/wireproto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyCatalogReplySteps() []pgmock.Step {
	return []pgmock.Step{
		pgmock.ExpectAnyMessage(&wireproto.Query{}),
		pgmock.SendMessage(&wireproto.RowDescription{Fields: []wireproto.FieldDescription{}}),
		pgmock.SendMessage(&wireproto.CommandComplete{CommandTag: []byte("SELECT 0")}),
		pgmock.SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
	}
}

// runScriptedServer starts a scripted fake backend on a loopback listener and
// returns the connected client conn together with a channel reporting the
// server goroutine's outcome.
func runScriptedServer(t *testing.T, script *pgmock.Script) (*pgwire.Conn, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	serverErrChan := make(chan error, 1)
	go func() {
		defer close(serverErrChan)
		conn, err := ln.Accept()
		if err != nil {
			serverErrChan <- err
			return
		}
		defer conn.Close()
		if err := conn.SetDeadline(time.Now().Add(2 * time.Second)); err != nil {
			serverErrChan <- err
			return
		}
		if err := script.Run(wireproto.NewBackend(conn, conn)); err != nil {
			serverErrChan <- err
			return
		}
	}()

	host, port, _ := strings.Cut(ln.Addr().String(), ":")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := pgwire.Connect(ctx, map[string]string{"host": host, "port": port, "user": "test", "database": "test"})
	require.NoError(t, err)

	return conn, serverErrChan
}

func TestPrepareExecuteRoundTrip(t *testing.T) {
	script := &pgmock.Script{Steps: pgmock.AcceptUnauthenticatedConnRequestSteps()}
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)

	// Prepare: Parse+Flush -> ParseComplete
	script.Steps = append(script.Steps,
		pgmock.ExpectAnyMessage(&wireproto.Parse{}),
		pgmock.ExpectAnyMessage(&wireproto.Flush{}),
		pgmock.SendMessage(&wireproto.ParseComplete{}),
		pgmock.ExpectAnyMessage(&wireproto.Describe{}),
		pgmock.ExpectAnyMessage(&wireproto.Sync{}),
		pgmock.SendMessage(&wireproto.RowDescription{Fields: []wireproto.FieldDescription{
			{Name: []byte("n"), DataTypeOID: pgtype.Int4OID, Format: 1},
		}}),
		pgmock.SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
	)

	// Execute: Close+Bind+Describe+Flush -> CloseComplete, BindComplete, RowDescription
	script.Steps = append(script.Steps,
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
		pgmock.SendMessage(&wireproto.DataRow{Values: [][]byte{{0, 0, 0, 42}}}),
		pgmock.SendMessage(&wireproto.CommandComplete{CommandTag: []byte("SELECT 1")}),
		pgmock.SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
		pgmock.ExpectMessage(&wireproto.Terminate{}),
	)

	conn, serverErrChan := runScriptedServer(t, script)

	ctx := context.Background()
	cmd, err := conn.Prepare(ctx, "select $1::int4 as n", []uint32{pgtype.Int4OID})
	require.NoError(t, err)

	rs, err := cmd.Execute(ctx, []pgtype.Value{pgtype.Int64Value(42)})
	require.NoError(t, err)

	require.True(t, rs.Next())
	row, err := rs.CurrentRow()
	require.NoError(t, err)
	v, ok := row.Get("n", 0)
	require.True(t, ok)
	n, err := v.Int64()
	require.NoError(t, err)
	require.EqualValues(t, 42, n)

	require.False(t, rs.Next())
	require.NoError(t, rs.Err())
	require.NoError(t, rs.Close())
	require.Equal(t, pgwire.CommandTag("SELECT 1"), rs.CommandTag())

	conn.Close(ctx)
	assert.NoError(t, <-serverErrChan)
}

func TestQueryServerErrorDrainsToReady(t *testing.T) {
	script := &pgmock.Script{Steps: pgmock.AcceptUnauthenticatedConnRequestSteps()}
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)
	script.Steps = append(script.Steps, emptyCatalogReplySteps()...)

	// unprepared Query sends Parse+Flush first
	script.Steps = append(script.Steps,
		pgmock.ExpectAnyMessage(&wireproto.Parse{}),
		pgmock.ExpectAnyMessage(&wireproto.Flush{}),
		pgmock.SendMessage(&wireproto.ParseComplete{}),
	)
	script.Steps = append(script.Steps,
		pgmock.ExpectAnyMessage(&wireproto.Close{}),
		pgmock.ExpectAnyMessage(&wireproto.Bind{}),
		pgmock.ExpectAnyMessage(&wireproto.Describe{}),
		pgmock.ExpectAnyMessage(&wireproto.Flush{}),
		pgmock.SendMessage(&wireproto.ErrorResponse{Severity: "ERROR", Code: "42601", Message: "syntax error"}),
		pgmock.ExpectAnyMessage(&wireproto.Sync{}),
		pgmock.SendMessage(&wireproto.ReadyForQuery{TxStatus: 'I'}),
		pgmock.ExpectMessage(&wireproto.Terminate{}),
	)

	conn, serverErrChan := runScriptedServer(t, script)

	ctx := context.Background()
	_, err := conn.Query(ctx, "not valid sql", nil, nil)
	require.Error(t, err)

	var serverErr *pgwire.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "42601", serverErr.Code)

	// the error was drained through ReadyForQuery, so the script's next
	// expected message is Close's Terminate
	conn.Close(ctx)
	assert.NoError(t, <-serverErrChan)
}
