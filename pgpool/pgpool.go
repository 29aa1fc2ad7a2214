// Package pgpool is a thin, external multiplexer over pgwire.Conn. pgwire's
// own connection type intentionally carries no pooling or sharing logic
// (§5's "thread-safe sharing of a single connection without external
// serialization" is an explicit non-goal of the core); pgpool hands out a
// distinct *pgwire.Conn per Acquire, backed by jackc/puddle/v2, so callers
// get concurrency without the core ever seeing more than one goroutine at a
// time per connection.
package pgpool

import (
	"context"

	"github.com/jackc/puddle/v2"
	"github.com/kanzidb/pgwire"
)

// Pool hands out pooled *pgwire.Conn values.
type Pool struct {
	cfg *pgwire.Config
	p   *puddle.Pool[*pgwire.Conn]
}

// NewPool builds a pool of at most maxSize connections, each dialed with
// cfg via pgwire.ConnectConfig on first acquisition.
func NewPool(cfg *pgwire.Config, maxSize int32) (*Pool, error) {
	pool := &Pool{cfg: cfg}

	p, err := puddle.NewPool(&puddle.Config[*pgwire.Conn]{
		Constructor: func(ctx context.Context) (*pgwire.Conn, error) {
			return pgwire.ConnectConfig(ctx, cfg)
		},
		Destructor: func(conn *pgwire.Conn) {
			_ = conn.Close(context.Background())
		},
		MaxSize: maxSize,
	})
	if err != nil {
		return nil, err
	}
	pool.p = p
	return pool, nil
}

// Conn is an acquired connection; Release returns it to the pool.
type Conn struct {
	res *puddle.Resource[*pgwire.Conn]
}

// Conn returns the underlying *pgwire.Conn. Do not retain it past Release.
func (c *Conn) Conn() *pgwire.Conn { return c.res.Value() }

// Release returns the connection to the pool for reuse.
func (c *Conn) Release() { c.res.Release() }

// Acquire blocks until a connection is available (dialing a new one if the
// pool has room) or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	res, err := p.p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{res: res}, nil
}

// HealthCheck runs a trivial simple-query round trip against an acquired
// connection, destroying it instead of releasing it back to the pool if
// the round trip fails.
func (p *Pool) HealthCheck(ctx context.Context) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	_, err = c.Conn().QueryCatalog(ctx, "select 1")
	if err != nil {
		c.res.Destroy()
		return err
	}
	c.Release()
	return nil
}

// Close closes every idle connection and prevents new acquisitions.
func (p *Pool) Close() { p.p.Close() }

// Stat reports the pool's current size and idle/constructing counts.
func (p *Pool) Stat() *puddle.Stat { return p.p.Stat() }
