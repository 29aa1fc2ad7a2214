package multitracer_test

import (
	"context"
	"testing"

	"github.com/kanzidb/pgwire"
	"github.com/kanzidb/pgwire/multitracer"
	"github.com/stretchr/testify/require"
)

type testFullTracer struct{}

func (tt *testFullTracer) TraceQueryStart(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryStartData) context.Context {
	return ctx
}

func (tt *testFullTracer) TraceQueryEnd(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryEndData) {
}

func (tt *testFullTracer) TraceConnectStart(ctx context.Context, data pgwire.TraceConnectStartData) context.Context {
	return ctx
}

func (tt *testFullTracer) TraceConnectEnd(ctx context.Context, data pgwire.TraceConnectEndData) {
}

type testQueryOnlyTracer struct{}

func (tt *testQueryOnlyTracer) TraceQueryStart(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryStartData) context.Context {
	return ctx
}

func (tt *testQueryOnlyTracer) TraceQueryEnd(ctx context.Context, conn *pgwire.Conn, data pgwire.TraceQueryEndData) {
}

func TestNew(t *testing.T) {
	t.Parallel()

	fullTracer := &testFullTracer{}
	queryTracer := &testQueryOnlyTracer{}

	mt := multitracer.New(fullTracer, queryTracer)
	require.Equal(
		t,
		&multitracer.Tracer{
			QueryTracers: []pgwire.QueryTracer{
				fullTracer,
				queryTracer,
			},
			ConnectTracers: []pgwire.ConnectTracer{
				fullTracer,
			},
		},
		mt,
	)
}

func TestTraceQueryStartEndFanOut(t *testing.T) {
	t.Parallel()

	fullTracer := &testFullTracer{}
	queryTracer := &testQueryOnlyTracer{}
	mt := multitracer.New(fullTracer, queryTracer)

	ctx := mt.TraceQueryStart(context.Background(), nil, pgwire.TraceQueryStartData{SQL: "select 1"})
	require.NotNil(t, ctx)
	mt.TraceQueryEnd(ctx, nil, pgwire.TraceQueryEndData{})
}
