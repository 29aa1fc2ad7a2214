package pgwire

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/kanzidb/pgwire/wireproto"
)

// CommandTag is the command-complete tag text, e.g. "UPDATE 3" or
// "INSERT 0 1".
type CommandTag string

// RowsAffected returns the trailing row count of the tag, or 0 if the tag
// has no row count (e.g. "CREATE TABLE").
func (ct CommandTag) RowsAffected() int64 {
	s := string(ct)
	idx := strings.LastIndexByte(s, ' ')
	if idx == -1 {
		return 0
	}
	n, _ := strconv.ParseInt(s[idx+1:], 10, 64)
	return n
}

func (ct CommandTag) String() string { return string(ct) }

// Insert is true if the command tag starts with "INSERT".
func (ct CommandTag) Insert() bool { return strings.HasPrefix(string(ct), "INSERT") }

// Update is true if the command tag starts with "UPDATE".
func (ct CommandTag) Update() bool { return strings.HasPrefix(string(ct), "UPDATE") }

// Delete is true if the command tag starts with "DELETE".
func (ct CommandTag) Delete() bool { return strings.HasPrefix(string(ct), "DELETE") }

// Select is true if the command tag starts with "SELECT".
func (ct CommandTag) Select() bool { return strings.HasPrefix(string(ct), "SELECT") }

// ResultSet is the single-pass forward iterator over a command's rows
// (§4.6). It stays "current" on a stashed backend message: DataRow means a
// row is available, anything else means the set is exhausted of rows
// (though CommandComplete/ReadyForQuery are still pending).
type ResultSet struct {
	conn *Conn
	cmd  *Command

	pending   wireproto.BackendMessage
	row       pgtype.Row
	rowErr    error
	closed    bool
	commandTag CommandTag
	insertOID  uint32
}

// empty reports whether the stashed message is not a DataRow.
func (rs *ResultSet) empty() bool {
	_, ok := rs.pending.(*wireproto.DataRow)
	return !ok
}

// Next advances to the next row, returning false once rows are exhausted
// (call Err afterward to distinguish a clean end from an error, then Close
// to drain to ReadyForQuery).
func (rs *ResultSet) Next() bool {
	if rs.closed || rs.rowErr != nil {
		return false
	}
	if rs.empty() {
		return false
	}

	dr := rs.pending.(*wireproto.DataRow)
	row, err := rs.decodeRow(dr)
	if err != nil {
		rs.rowErr = err
		return false
	}
	rs.row = row

	if err := rs.advance(); err != nil {
		rs.rowErr = err
		return false
	}
	return true
}

// CurrentRow returns the row most recently produced by Next.
func (rs *ResultSet) CurrentRow() (pgtype.Row, error) {
	return rs.row, rs.rowErr
}

// Err returns any error encountered while decoding rows or advancing the
// protocol state. It does not itself drain the connection; call Close for
// that.
func (rs *ResultSet) Err() error { return rs.rowErr }

// CommandTag returns the command-complete tag once the result set has been
// fully drained (valid only after Next returns false and Close has run, or
// once the tag naturally arrives past the last row).
func (rs *ResultSet) CommandTag() CommandTag { return rs.commandTag }

// LastInsertOID mirrors Command.LastInsertOID, captured from this
// particular execution's CommandComplete tag.
func (rs *ResultSet) LastInsertOID() uint32 { return rs.insertOID }

func (rs *ResultSet) decodeRow(dr *wireproto.DataRow) (pgtype.Row, error) {
	fields := rs.cmd.fields
	if len(fields) != len(dr.Values) {
		return pgtype.Row{}, newProtocolError("row has %d values but RowDescription had %d fields", len(dr.Values), len(fields))
	}

	names := make([]string, len(fields))
	oids := make([]uint32, len(fields))
	values := make([]pgtype.Value, len(fields))

	for i, f := range fields {
		names[i] = string(f.Name)
		oids[i] = f.DataTypeOID
		if dr.Values[i] == nil {
			values[i] = pgtype.Null
			continue
		}
		v, err := pgtype.DecodeValue(rs.conn.registry, f.DataTypeOID, dr.Values[i])
		if err != nil {
			return pgtype.Row{}, err
		}
		values[i] = v
	}

	return pgtype.NewRow(names, oids, values), nil
}

// advance receives the next backend message and stashes it as pending,
// unless it's one of the messages that conclude the result set (in which
// case it keeps reading through to ReadyForQuery) or an ErrorResponse.
func (rs *ResultSet) advance() error {
	for {
		msg, err := rs.conn.fe.Receive()
		if err != nil {
			return wrapIOError("receive result set message", err)
		}

		switch msg := msg.(type) {
		case *wireproto.DataRow:
			rs.pending = msg
			return nil

		case *wireproto.CommandComplete:
			tag, oid := parseCommandTag(msg.CommandTag)
			rs.commandTag = tag
			rs.insertOID = oid
			rs.cmd.lastInsertOID = oid
			rs.pending = msg
			continue

		case *wireproto.EmptyQueryResponse:
			return rs.drainAfterError(newProtocolError("empty query"))

		case *wireproto.PortalSuspended:
			return rs.drainAfterError(newProtocolError("portal suspended (unsupported: maxRows is always 0)"))

		case *wireproto.ParameterStatus:
			rs.conn.parameterStatuses[msg.Name] = msg.Value
			continue

		case *wireproto.NoticeResponse:
			continue

		case *wireproto.ReadyForQuery:
			rs.conn.txStatus = msg.TxStatus
			rs.conn.activeResultSet = false
			rs.pending = msg
			return nil

		case *wireproto.ErrorResponse:
			return rs.drainAfterError(errorResponseToServerError(msg))

		default:
			return newProtocolError("unexpected message %T in result set", msg)
		}
	}
}

// drainAfterError reads through the ReadyForQuery that follows a failed
// execution and leaves it pending, so Close returns at once and the
// connection accepts the next command.
func (rs *ResultSet) drainAfterError(cause error) error {
	err := rs.conn.drainToReadyAfterError(cause)
	rs.conn.activeResultSet = false
	rs.pending = &wireproto.ReadyForQuery{TxStatus: rs.conn.txStatus}
	return err
}

// Close drains any remaining messages until ReadyForQuery and releases the
// connection for the next command. Safe to call multiple times.
func (rs *ResultSet) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	defer rs.conn.unlock()

	for {
		if _, ok := rs.pending.(*wireproto.ReadyForQuery); ok {
			return nil
		}
		if err := rs.advance(); err != nil {
			return err
		}
	}
}

func parseCommandTag(tag []byte) (CommandTag, uint32) {
	s := string(tag)
	fields := bytes.Fields(tag)
	if len(fields) == 3 && string(fields[0]) == "INSERT" {
		oid, _ := strconv.ParseUint(string(fields[1]), 10, 32)
		return CommandTag(s), uint32(oid)
	}
	return CommandTag(s), 0
}

// Query executes sql as an ad hoc command, binding params positionally by
// their declared OIDs, and returns a streaming ResultSet. The caller must
// Close it (directly or by draining Next to false and calling Close) before
// starting another command on this connection.
func (c *Conn) Query(ctx context.Context, sql string, paramOIDs []uint32, params []pgtype.Value) (*ResultSet, error) {
	if c.activeResultSet {
		return nil, newProtocolError("previous result set not drained")
	}
	cmd := c.NewCommand(sql, paramOIDs)
	return cmd.Execute(ctx, params)
}

// QueryRow executes sql and returns exactly one row, raising an error if
// the command produced zero or more than one row (§4.6's "execute and
// return exactly one row").
func (c *Conn) QueryRow(ctx context.Context, sql string, paramOIDs []uint32, params []pgtype.Value) (pgtype.Row, error) {
	rs, err := c.Query(ctx, sql, paramOIDs, params)
	if err != nil {
		return pgtype.Row{}, err
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return pgtype.Row{}, err
		}
		return pgtype.Row{}, fmt.Errorf("pgwire: query returned no rows")
	}
	row, err := rs.CurrentRow()
	if err != nil {
		return pgtype.Row{}, err
	}
	if rs.Next() {
		return pgtype.Row{}, fmt.Errorf("pgwire: query returned more than one row")
	}
	if err := rs.Err(); err != nil {
		return pgtype.Row{}, err
	}
	return row, nil
}

// QueryScalar executes sql and returns its single row's single field
// (§4.6's "execute and return a scalar").
func (c *Conn) QueryScalar(ctx context.Context, sql string, paramOIDs []uint32, params []pgtype.Value) (pgtype.Value, error) {
	row, err := c.QueryRow(ctx, sql, paramOIDs, params)
	if err != nil {
		return pgtype.Value{}, err
	}
	if row.Len() != 1 {
		return pgtype.Value{}, fmt.Errorf("pgwire: scalar query returned %d columns", row.Len())
	}
	return row.Index(0), nil
}

// Exec executes sql for its side effects and returns the resulting command
// tag, discarding any rows (used for DDL/DML that doesn't return a set).
func (c *Conn) Exec(ctx context.Context, sql string, paramOIDs []uint32, params []pgtype.Value) (CommandTag, error) {
	rs, err := c.Query(ctx, sql, paramOIDs, params)
	if err != nil {
		return "", err
	}
	for rs.Next() {
	}
	tag := rs.CommandTag()
	closeErr := rs.Close()
	if err := rs.Err(); err != nil {
		return tag, err
	}
	return tag, closeErr
}
