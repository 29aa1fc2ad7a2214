package wireproto_test

import (
	"net"
	"testing"
	"time"

	"github.com/kanzidb/pgwire/wireproto"
	"github.com/stretchr/testify/require"
)

func TestBindBiggerThanMaxMessageBodyLen(t *testing.T) {
	t.Parallel()

	_, err := (&wireproto.Bind{Parameters: [][]byte{make([]byte, wireproto.MaxMessageBodyLen-16)}}).Encode(nil)
	require.NoError(t, err)

	_, err = (&wireproto.Bind{Parameters: [][]byte{make([]byte, wireproto.MaxMessageBodyLen-15)}}).Encode(nil)
	require.Error(t, err)
}

func TestQueryBiggerThanMaxMessageBodyLen(t *testing.T) {
	t.Parallel()

	_, err := (&wireproto.Query{String: string(make([]byte, wireproto.MaxMessageBodyLen-5))}).Encode(nil)
	require.NoError(t, err)

	_, err = (&wireproto.Query{String: string(make([]byte, wireproto.MaxMessageBodyLen-4))}).Encode(nil)
	require.Error(t, err)
}

// TestExtendedQueryRoundTrip drives a Frontend against a Backend over a
// net.Pipe through Parse/Bind/Describe/Execute/Sync (the core of what
// Command.execute sends, without its Close and Flush messages), and checks
// the Backend decodes exactly what was sent.
func TestExtendedQueryRoundTrip(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	fe := wireproto.NewFrontend(client, client)
	be := wireproto.NewBackend(server, server)

	done := make(chan struct{})
	go func() {
		defer close(done)

		require.NoError(t, fe.Send(&wireproto.Parse{Name: "", Query: "select $1::int4", ParameterOIDs: []uint32{23}}))
		require.NoError(t, fe.Send(&wireproto.Bind{
			DestinationPortal:    "",
			PreparedStatement:    "",
			ParameterFormatCodes: []int16{1},
			Parameters:           [][]byte{{0, 0, 0, 42}},
			ResultFormatCodes:    []int16{1},
		}))
		require.NoError(t, fe.Send(&wireproto.Describe{ObjectType: 'P', Name: ""}))
		require.NoError(t, fe.Send(&wireproto.Execute{Portal: "", MaxRows: 0}))
		require.NoError(t, fe.Send(&wireproto.Sync{}))
		require.NoError(t, fe.Flush())
	}()

	server.SetDeadline(time.Now().Add(2 * time.Second))

	parse, err := be.Receive()
	require.NoError(t, err)
	require.Equal(t, &wireproto.Parse{Name: "", Query: "select $1::int4", ParameterOIDs: []uint32{23}}, parse)

	bind, err := be.Receive()
	require.NoError(t, err)
	require.Equal(t, &wireproto.Bind{
		DestinationPortal:    "",
		PreparedStatement:    "",
		ParameterFormatCodes: []int16{1},
		Parameters:           [][]byte{{0, 0, 0, 42}},
		ResultFormatCodes:    []int16{1},
	}, bind)

	describe, err := be.Receive()
	require.NoError(t, err)
	require.Equal(t, &wireproto.Describe{ObjectType: 'P', Name: ""}, describe)

	execute, err := be.Receive()
	require.NoError(t, err)
	require.Equal(t, &wireproto.Execute{Portal: "", MaxRows: 0}, execute)

	sync, err := be.Receive()
	require.NoError(t, err)
	require.Equal(t, &wireproto.Sync{}, sync)

	<-done
}

func TestErrorResponseRoundTrip(t *testing.T) {
	t.Parallel()

	want := &wireproto.ErrorResponse{
		Severity: "ERROR",
		Code:     "42601",
		Message:  "syntax error",
	}
	buf, err := want.Encode(nil)
	require.NoError(t, err)

	// strip the 5-byte message header (tag + length) Decode doesn't expect.
	got := &wireproto.ErrorResponse{}
	require.NoError(t, got.Decode(buf[5:]))
	require.Equal(t, want, got)
}

func TestDataRowRoundTrip(t *testing.T) {
	t.Parallel()

	want := &wireproto.DataRow{Values: [][]byte{[]byte("42"), nil, []byte("")}}
	buf, err := want.Encode(nil)
	require.NoError(t, err)

	got := &wireproto.DataRow{}
	require.NoError(t, got.Decode(buf[5:]))
	require.Equal(t, want, got)
}
