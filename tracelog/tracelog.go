// Package tracelog bridges pgwire's Tracer hooks to a structured logger,
// the way the teacher's tracelog package bridges to a traditional logger
// interface — except this one is built directly on rs/zerolog rather than
// a pluggable Logger abstraction, since zerolog is the only structured
// logger this module's dependency surface carries.
package tracelog

import (
	"context"

	"github.com/kanzidb/pgwire"
	"github.com/rs/zerolog"
)

// TraceLog implements pgwire.ConnectTracer and pgwire.QueryTracer, logging
// each event through a zerolog.Logger at the configured level.
type TraceLog struct {
	Logger       zerolog.Logger
	QueryLevel   zerolog.Level
	ConnectLevel zerolog.Level
}

// NewTraceLog returns a TraceLog logging queries at Debug and connects at
// Info; whether query events are written depends on the level set on
// logger (or zerolog's global level).
func NewTraceLog(logger zerolog.Logger) *TraceLog {
	return &TraceLog{Logger: logger, QueryLevel: zerolog.DebugLevel, ConnectLevel: zerolog.InfoLevel}
}

func (tl *TraceLog) TraceConnectStart(ctx context.Context, data pgwire.TraceConnectStartData) context.Context {
	tl.Logger.WithLevel(tl.ConnectLevel).
		Str("host", data.ConnConfig.Host).
		Uint16("port", data.ConnConfig.Port).
		Str("database", data.ConnConfig.Database).
		Msg("connecting")
	return ctx
}

func (tl *TraceLog) TraceConnectEnd(ctx context.Context, data pgwire.TraceConnectEndData) {
	ev := tl.Logger.WithLevel(tl.ConnectLevel)
	if data.Err != nil {
		ev = tl.Logger.Error().Err(data.Err)
	}
	ev.Msg("connected")
}

func (tl *TraceLog) TraceQueryStart(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryStartData) context.Context {
	tl.Logger.WithLevel(tl.QueryLevel).
		Str("sql", data.SQL).
		Interface("params", data.Params).
		Msg("executing query")
	return ctx
}

func (tl *TraceLog) TraceQueryEnd(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryEndData) {
	ev := tl.Logger.WithLevel(tl.QueryLevel)
	if data.Err != nil {
		ev = tl.Logger.Error().Err(data.Err)
	}
	ev.Str("commandTag", data.CommandTag.String()).Msg("query finished")
}
