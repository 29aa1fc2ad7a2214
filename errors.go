package pgwire

import (
	"fmt"

	"github.com/kanzidb/pgwire/pgtype"
	"github.com/kanzidb/pgwire/wireproto"
	"golang.org/x/xerrors"
)

// ServerError wraps an ErrorResponse reported by the server. Its fields
// mirror the subset of ErrorResponse fields useful to a caller deciding how
// to react; the full set is kept so nothing is lost in translation.
type ServerError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

func (e *ServerError) Error() string {
	s := fmt.Sprintf("%s %s: %s", e.Severity, e.Code, e.Message)
	if e.Detail != "" {
		s += "\nDETAIL: " + e.Detail
	}
	if e.Hint != "" {
		s += "\nHINT: " + e.Hint
	}
	return s
}

func errorResponseToServerError(msg *wireproto.ErrorResponse) *ServerError {
	return &ServerError{
		Severity:         msg.Severity,
		Code:             msg.Code,
		Message:          msg.Message,
		Detail:           msg.Detail,
		Hint:             msg.Hint,
		Position:         msg.Position,
		InternalPosition: msg.InternalPosition,
		InternalQuery:    msg.InternalQuery,
		Where:            msg.Where,
		SchemaName:       msg.SchemaName,
		TableName:        msg.TableName,
		ColumnName:       msg.ColumnName,
		DataTypeName:     msg.DataTypeName,
		ConstraintName:   msg.ConstraintName,
		File:             msg.File,
		Line:             msg.Line,
		Routine:          msg.Routine,
	}
}

// ParameterError reports a problem with a caller-supplied parameter: wrong
// count, wrong type for the declared OID, or an unencodable Go value.
type ParameterError struct {
	cause error
}

func (e *ParameterError) Error() string { return "pgwire: parameter error: " + e.cause.Error() }
func (e *ParameterError) Unwrap() error { return e.cause }

func newParameterError(format string, args ...any) *ParameterError {
	return &ParameterError{cause: xerrors.Errorf(format, args...)}
}

// ProtocolError reports a violation of the expected message sequence: an
// unexpected message type arriving where the state machine required one of
// a specific set, or a connection operation attempted out of turn (e.g.
// starting a second active result set).
type ProtocolError struct {
	cause error
}

func (e *ProtocolError) Error() string { return "pgwire: protocol error: " + e.cause.Error() }
func (e *ProtocolError) Unwrap() error { return e.cause }

func newProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{cause: xerrors.Errorf(format, args...)}
}

// TypeError re-exports pgtype.TypeError under the root package's error
// taxonomy, so callers can errors.As for *pgwire.TypeError without reaching
// into pgtype directly.
type TypeError = pgtype.TypeError

// wrapIOError annotates a transport-level error (a read or write against the
// underlying net.Conn) so errors.Is/errors.As can still reach the original
// *net.OpError or io.EOF through the wrapped chain.
func wrapIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf("pgwire: %s: %w", op, err)
}
