// Package multitracer combines several pgwire tracers into one, so a
// connection can be configured with, say, a tracelog.TraceLog and a metrics
// tracer at once without either needing to know about the other.
package multitracer

import (
	"context"

	"github.com/kanzidb/pgwire"
)

// Tracer fans a single tracing call out to every tracer that implements the
// relevant interface. Construct it with New, which sorts the tracers passed
// in by interface the way the teacher's own multitracer does.
type Tracer struct {
	QueryTracers   []pgwire.QueryTracer
	ConnectTracers []pgwire.ConnectTracer
}

// New splits tracers by which of pgwire's tracer interfaces they implement.
// A tracer implementing both is added to both lists.
func New(tracers ...any) *Tracer {
	var t Tracer
	for _, tracer := range tracers {
		if qt, ok := tracer.(pgwire.QueryTracer); ok {
			t.QueryTracers = append(t.QueryTracers, qt)
		}
		if ct, ok := tracer.(pgwire.ConnectTracer); ok {
			t.ConnectTracers = append(t.ConnectTracers, ct)
		}
	}
	return &t
}

func (t *Tracer) TraceQueryStart(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryStartData) context.Context {
	for _, tracer := range t.QueryTracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (t *Tracer) TraceQueryEnd(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryEndData) {
	for _, tracer := range t.QueryTracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

func (t *Tracer) TraceConnectStart(ctx context.Context, data pgwire.TraceConnectStartData) context.Context {
	for _, tracer := range t.ConnectTracers {
		ctx = tracer.TraceConnectStart(ctx, data)
	}
	return ctx
}

func (t *Tracer) TraceConnectEnd(ctx context.Context, data pgwire.TraceConnectEndData) {
	for _, tracer := range t.ConnectTracers {
		tracer.TraceConnectEnd(ctx, data)
	}
}
