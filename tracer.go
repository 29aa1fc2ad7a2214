package pgwire

import "context"

// QueryTracer, if set on Config, is notified around each Command.Execute
// call. TraceQueryStart's returned context is threaded through to
// TraceQueryEnd, mirroring the teacher's multitracer hook shape scaled down
// to this core's single Command/ResultSet operation.
type QueryTracer interface {
	TraceQueryStart(ctx context.Context, conn *Conn, data TraceQueryStartData) context.Context
	TraceQueryEnd(ctx context.Context, conn *Conn, data TraceQueryEndData)
}

// ConnectTracer is notified around ConnectConfig.
type ConnectTracer interface {
	TraceConnectStart(ctx context.Context, data TraceConnectStartData) context.Context
	TraceConnectEnd(ctx context.Context, data TraceConnectEndData)
}

type TraceQueryStartData struct {
	SQL    string
	Params []any
}

type TraceQueryEndData struct {
	CommandTag CommandTag
	Err        error
}

type TraceConnectStartData struct {
	ConnConfig *Config
}

type TraceConnectEndData struct {
	Conn *Conn
	Err  error
}
