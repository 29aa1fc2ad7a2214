// Package pgwire is a native client core for the PostgreSQL frontend/backend
// wire protocol (version 3.0): connection startup and authentication, the
// extended-query state machine (Parse/Bind/Describe/Execute/Sync), and a
// streaming result set tied to a single, non-pooled connection.
/*
Establishing a Connection

	conn, err := pgwire.Connect(context.Background(), map[string]string{
		"host": "localhost", "user": "postgres", "database": "postgres",
	})

Settings resolve through ParseConfig: an optional TOML overlay, then the
given map, then a pg_service.conf lookup if "service" is set, then ~/.pgpass
if no password was otherwise found. A *Config built by ParseConfig can be
adjusted before calling ConnectConfig directly.

Query Interface

*Conn is not safe for concurrent use, exactly like the connection type it's
modeled on: every command runs Parse/Bind/Describe/Execute/Sync to
completion (or at least to a drained ResultSet) before the next one starts.

	rs, err := conn.Query(ctx, "select id, name from widgets where id > $1",
		[]uint32{pgtype.Int4OID}, []pgtype.Value{pgtype.Int64Value(10)})
	if err != nil {
		return err
	}
	defer rs.Close()
	for rs.Next() {
		row, _ := rs.CurrentRow()
		id, _ := row.ByName("id")
		name, _ := row.ByName("name")
		_ = id
		_ = name
	}
	if err := rs.Err(); err != nil {
		return err
	}

CollectRows and ForEachRow drain a ResultSet through a generic mapping
function instead of a manual Next/CurrentRow/Err loop:

	names, err := pgwire.CollectRows(rs, pgtype.RowTo[string])

QueryRow and QueryScalar cover the single-row and single-row/single-column
conveniences from §4.6.

Prepared Statements

Prepare mints a server-side statement name and runs Parse+Describe ahead of
time, so repeated Execute calls skip re-parsing:

	stmt, err := conn.Prepare(ctx, "select * from widgets where id = $1", []uint32{pgtype.Int4OID})
	...
	rs, err := stmt.Execute(ctx, []pgtype.Value{pgtype.Int64Value(7)})

Connection Pooling

package pgpool offers a puddle-backed pool of independent *Conn values;
pgwire.Conn itself has no pooling or multiplexing of its own.

Tracing and Logging

package tracelog bridges the Tracer hooks on Config to a structured logger.

Out of Scope

Transactions, the COPY protocol, and LISTEN/NOTIFY are not part of this
core; server-side statement caching across connections and SQL parsing are
explicit non-goals.
*/
package pgwire
