package pgwire

import (
	"context"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/kanzidb/pgwire/wireproto"
)

// Command is a query together with everything the connection has learned or
// cached about it across executions: its parameter OIDs, whether it has
// been given a server-side prepared name, and (once described) its result
// field descriptors. A fresh, unprepared Command reuses the empty-name
// statement and portal on every execution, per the extended-query sequence
// in §4.3.
type Command struct {
	conn      *Conn
	sql       string
	paramOIDs []uint32

	prepared bool
	stmtName string

	fields []wireproto.FieldDescription

	lastInsertOID uint32
}

// NewCommand builds an ad hoc, unprepared Command for sql. paramOIDs may be
// nil if the server should infer parameter types.
func (c *Conn) NewCommand(sql string, paramOIDs []uint32) *Command {
	return &Command{conn: c, sql: sql, paramOIDs: paramOIDs}
}

// Prepare parses and describes sql under a minted statement name so later
// calls to Execute skip re-parsing. The statement survives for the lifetime
// of the connection.
func (c *Conn) Prepare(ctx context.Context, sql string, paramOIDs []uint32) (*Command, error) {
	cmd := &Command{conn: c, sql: sql, paramOIDs: paramOIDs, prepared: true, stmtName: c.mintStatementName()}
	if err := cmd.parseAndDescribe(ctx); err != nil {
		return nil, err
	}
	return cmd, nil
}

// FieldDescriptions returns the result columns' field descriptors, as
// learned from the most recent Describe. Empty before the first Execute of
// an unprepared Command.
func (cmd *Command) FieldDescriptions() []wireproto.FieldDescription { return cmd.fields }

// LastInsertOID returns the OID captured from an "INSERT <oid> <rows>"
// command tag on the most recent execution, or 0 if the last command
// wasn't a single-row OID-returning INSERT (true of every table with OIDs
// disabled, which is the default on modern servers, but still part of the
// wire contract this decodes).
func (cmd *Command) LastInsertOID() uint32 { return cmd.lastInsertOID }

func (cmd *Command) portalAndStatementNames() (portal, stmt string) {
	if cmd.prepared {
		return "", cmd.stmtName
	}
	return "", ""
}

// parseAndDescribe runs Parse+Flush, then a statement Describe+Sync (no
// Close or Bind) to learn the result shape without executing, used by
// Prepare.
func (cmd *Command) parseAndDescribe(ctx context.Context) error {
	c := cmd.conn
	if err := c.lock(); err != nil {
		return err
	}
	defer c.unlock()

	if err := cmd.sendParse(); err != nil {
		return err
	}
	if err := cmd.expectParseComplete(); err != nil {
		return err
	}

	if err := c.fe.Send(&wireproto.Describe{ObjectType: 'S', Name: cmd.stmtName}); err != nil {
		return wrapIOError("send describe", err)
	}
	if err := c.fe.Send(&wireproto.Sync{}); err != nil {
		return wrapIOError("send sync", err)
	}
	if err := c.fe.Flush(); err != nil {
		return wrapIOError("flush describe", err)
	}

	for {
		msg, err := c.fe.Receive()
		if err != nil {
			return wrapIOError("receive describe response", err)
		}
		switch msg := msg.(type) {
		case *wireproto.ParameterDescription:
			// parameter OIDs already known from Parse; nothing to merge.
		case *wireproto.RowDescription:
			cmd.fields = msg.Fields
		case *wireproto.NoData:
			cmd.fields = nil
		case *wireproto.ReadyForQuery:
			c.txStatus = msg.TxStatus
			return nil
		case *wireproto.ErrorResponse:
			return c.drainToReadyAfterError(errorResponseToServerError(msg))
		}
	}
}

func (cmd *Command) sendParse() error {
	c := cmd.conn
	_, stmt := cmd.portalAndStatementNames()
	if err := c.fe.Send(&wireproto.Parse{Name: stmt, Query: cmd.sql, ParameterOIDs: cmd.paramOIDs}); err != nil {
		return wrapIOError("send parse", err)
	}
	if err := c.fe.Send(&wireproto.Flush{}); err != nil {
		return wrapIOError("send flush", err)
	}
	if err := c.fe.Flush(); err != nil {
		return wrapIOError("flush parse", err)
	}
	return nil
}

func (cmd *Command) expectParseComplete() error {
	c := cmd.conn
	msg, err := c.fe.Receive()
	if err != nil {
		return wrapIOError("receive parse response", err)
	}
	switch msg := msg.(type) {
	case *wireproto.ParseComplete:
		return nil
	case *wireproto.ErrorResponse:
		serverErr := errorResponseToServerError(msg)
		if sendErr := c.fe.Send(&wireproto.Sync{}); sendErr == nil {
			_ = c.fe.Flush()
		}
		return c.drainToReadyAfterError(serverErr)
	default:
		if sendErr := c.fe.Send(&wireproto.Sync{}); sendErr == nil {
			_ = c.fe.Flush()
		}
		return c.drainToReadyAfterError(newProtocolError("unexpected message %T after Parse", msg))
	}
}

// Execute runs the full extended-query sequence (§4.3): Parse (skipped if
// already prepared), Close+Bind+Describe, then Execute+Sync, and returns a
// streaming ResultSet positioned before the first row.
func (cmd *Command) Execute(ctx context.Context, params []pgtype.Value) (*ResultSet, error) {
	c := cmd.conn

	queryTracer, _ := c.config.Tracer.(QueryTracer)
	if queryTracer != nil {
		paramsAny := make([]any, len(params))
		for i, p := range params {
			paramsAny[i] = p.Any()
		}
		ctx = queryTracer.TraceQueryStart(ctx, c, TraceQueryStartData{SQL: cmd.sql, Params: paramsAny})
	}

	rs, err := cmd.execute(ctx, params)

	if queryTracer != nil {
		var tag CommandTag
		if rs != nil {
			tag = rs.CommandTag()
		}
		queryTracer.TraceQueryEnd(ctx, c, TraceQueryEndData{CommandTag: tag, Err: err})
	}
	return rs, err
}

func (cmd *Command) execute(ctx context.Context, params []pgtype.Value) (*ResultSet, error) {
	c := cmd.conn
	if err := c.lock(); err != nil {
		return nil, err
	}

	if !cmd.prepared {
		if err := cmd.sendParse(); err != nil {
			c.unlock()
			return nil, err
		}
		if err := cmd.expectParseComplete(); err != nil {
			c.unlock()
			return nil, err
		}
	}

	portal, stmt := cmd.portalAndStatementNames()

	paramValues, paramFormats, err := encodeParams(c.registry, cmd.paramOIDs, params)
	if err != nil {
		c.unlock()
		return nil, err
	}

	if err := c.fe.Send(&wireproto.Close{ObjectType: 'P', Name: portal}); err != nil {
		c.unlock()
		return nil, wrapIOError("send close portal", err)
	}
	if err := c.fe.Send(&wireproto.Bind{
		DestinationPortal:    portal,
		PreparedStatement:    stmt,
		ParameterFormatCodes: paramFormats,
		Parameters:           paramValues,
		ResultFormatCodes:    []int16{1},
	}); err != nil {
		c.unlock()
		return nil, wrapIOError("send bind", err)
	}
	if err := c.fe.Send(&wireproto.Describe{ObjectType: 'P', Name: portal}); err != nil {
		c.unlock()
		return nil, wrapIOError("send describe portal", err)
	}
	if err := c.fe.Send(&wireproto.Flush{}); err != nil {
		c.unlock()
		return nil, wrapIOError("send flush", err)
	}
	if err := c.fe.Flush(); err != nil {
		c.unlock()
		return nil, wrapIOError("flush bind/describe", err)
	}

	if err := cmd.absorbBindDescribe(); err != nil {
		c.unlock()
		return nil, err
	}

	if err := c.fe.Send(&wireproto.Execute{Portal: portal, MaxRows: 0}); err != nil {
		c.unlock()
		return nil, wrapIOError("send execute", err)
	}
	if err := c.fe.Send(&wireproto.Sync{}); err != nil {
		c.unlock()
		return nil, wrapIOError("send sync", err)
	}
	if err := c.fe.Flush(); err != nil {
		c.unlock()
		return nil, wrapIOError("flush execute", err)
	}

	c.activeResultSet = true
	rs := &ResultSet{conn: c, cmd: cmd}
	if err := rs.advance(); err != nil {
		c.activeResultSet = false
		c.unlock()
		return nil, err
	}
	return rs, nil
}

func (cmd *Command) absorbBindDescribe() error {
	c := cmd.conn
	syncAndDrain := func(cause error) error {
		if sendErr := c.fe.Send(&wireproto.Sync{}); sendErr == nil {
			_ = c.fe.Flush()
		}
		return c.drainToReadyAfterError(cause)
	}
	sawClose, sawBind, sawDescribe := false, false, false
	for !(sawClose && sawBind && sawDescribe) {
		msg, err := c.fe.Receive()
		if err != nil {
			return wrapIOError("receive bind/describe response", err)
		}
		switch msg := msg.(type) {
		case *wireproto.CloseComplete:
			sawClose = true
		case *wireproto.BindComplete:
			sawBind = true
		case *wireproto.RowDescription:
			for _, f := range msg.Fields {
				if f.Format != 1 {
					return syncAndDrain(newProtocolError("server requested non-binary field format for column %q", f.Name))
				}
			}
			cmd.fields = msg.Fields
			sawDescribe = true
		case *wireproto.NoData:
			cmd.fields = nil
			sawDescribe = true
		case *wireproto.ErrorResponse:
			return syncAndDrain(errorResponseToServerError(msg))
		default:
			return syncAndDrain(newProtocolError("unexpected message %T during bind/describe", msg))
		}
	}
	return nil
}
