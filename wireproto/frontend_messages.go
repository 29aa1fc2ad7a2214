package wireproto

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/kanzidb/pgwire/internal/wireio"
)

// ProtocolVersionNumber is the v3.0 protocol version sent in StartupMessage.
const ProtocolVersionNumber = 0x0003_0000

// StartupMessage is the very first message sent on a connection. Unlike
// every other message it has no leading tag byte.
type StartupMessage struct {
	ProtocolVersion uint32
	Parameters      map[string]string
}

func (*StartupMessage) Frontend() {}

func (src *StartupMessage) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = wireio.AppendInt32(dst, -1) // placeholder length

	dst = wireio.AppendUint32(dst, src.ProtocolVersion)

	// Emit deterministically so tests and logs are stable.
	keys := make([]string, 0, len(src.Parameters))
	for k := range src.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst = wireio.AppendCString(dst, k)
		dst = wireio.AppendCString(dst, src.Parameters[k])
	}
	dst = append(dst, 0)

	binary.BigEndian.PutUint32(dst[sp:], uint32(len(dst)-sp))
	return dst, nil
}

// PasswordMessage sends a cleartext or pre-hashed password in response to an
// authentication challenge.
type PasswordMessage struct {
	Password string
}

func (*PasswordMessage) Frontend() {}

func (src *PasswordMessage) Encode(dst []byte) ([]byte, error) {
	return appendTaggedCString(dst, tagPasswordMessage, src.Password)
}

// Query issues the simple query protocol. The core only uses it for the
// connect-time catalog bootstrap queries; all user queries go through
// Parse/Bind/Describe/Execute.
type Query struct {
	String string
}

func (*Query) Frontend() {}

func (src *Query) Encode(dst []byte) ([]byte, error) {
	if len(src.String) > MaxMessageBodyLen-5 {
		return nil, fmt.Errorf("query message body too large (%d bytes)", len(src.String))
	}
	return appendTaggedCString(dst, tagQuery, src.String)
}

// Parse requests that the server parse a query into a prepared statement.
type Parse struct {
	Name          string
	Query         string
	ParameterOIDs []uint32
}

func (*Parse) Frontend() {}

func (src *Parse) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagParse)
	dst = wireio.AppendInt32(dst, -1)

	dst = wireio.AppendCString(dst, src.Name)
	dst = wireio.AppendCString(dst, src.Query)

	dst = wireio.AppendUint16(dst, uint16(len(src.ParameterOIDs)))
	for _, oid := range src.ParameterOIDs {
		dst = wireio.AppendUint32(dst, oid)
	}

	return finish(dst, sp)
}

// Bind binds parameter values to a prepared statement, producing a portal.
type Bind struct {
	DestinationPortal    string
	PreparedStatement    string
	ParameterFormatCodes []int16
	Parameters           [][]byte
	ResultFormatCodes    []int16
}

func (*Bind) Frontend() {}

func (src *Bind) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagBind)
	dst = wireio.AppendInt32(dst, -1)

	dst = wireio.AppendCString(dst, src.DestinationPortal)
	dst = wireio.AppendCString(dst, src.PreparedStatement)

	dst = wireio.AppendUint16(dst, uint16(len(src.ParameterFormatCodes)))
	for _, fc := range src.ParameterFormatCodes {
		dst = wireio.AppendInt16(dst, fc)
	}

	dst = wireio.AppendUint16(dst, uint16(len(src.Parameters)))
	for _, p := range src.Parameters {
		if p == nil {
			dst = wireio.AppendInt32(dst, -1)
			continue
		}
		if len(p) > MaxMessageBodyLen-16 {
			return nil, fmt.Errorf("bind parameter too large (%d bytes)", len(p))
		}
		dst = wireio.AppendInt32(dst, int32(len(p)))
		dst = append(dst, p...)
	}

	dst = wireio.AppendUint16(dst, uint16(len(src.ResultFormatCodes)))
	for _, fc := range src.ResultFormatCodes {
		dst = wireio.AppendInt16(dst, fc)
	}

	return finish(dst, sp)
}

// Describe requests the RowDescription (or NoData) / ParameterDescription for
// a prepared statement ('S') or portal ('P').
type Describe struct {
	ObjectType byte
	Name       string
}

func (*Describe) Frontend() {}

func (src *Describe) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagDescribe)
	dst = wireio.AppendInt32(dst, -1)
	dst = append(dst, src.ObjectType)
	dst = wireio.AppendCString(dst, src.Name)
	return finish(dst, sp)
}

// Execute requests that the server execute a bound portal.
type Execute struct {
	Portal  string
	MaxRows uint32
}

func (*Execute) Frontend() {}

func (src *Execute) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagExecute)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendCString(dst, src.Portal)
	dst = wireio.AppendUint32(dst, src.MaxRows)
	return finish(dst, sp)
}

// Close closes a prepared statement ('S') or portal ('P').
type Close struct {
	ObjectType byte
	Name       string
}

func (*Close) Frontend() {}

func (src *Close) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagClose)
	dst = wireio.AppendInt32(dst, -1)
	dst = append(dst, src.ObjectType)
	dst = wireio.AppendCString(dst, src.Name)
	return finish(dst, sp)
}

// Flush requests the server flush any buffered responses without waiting
// for a Sync.
type Flush struct{}

func (*Flush) Frontend() {}

func (src *Flush) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagFlush, 0, 0, 0, 4), nil
}

// Sync marks the end of an extended-query message sequence and requests a
// ReadyForQuery response.
type Sync struct{}

func (*Sync) Frontend() {}

func (src *Sync) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagSync, 0, 0, 0, 4), nil
}

// Terminate cleanly closes the connection.
type Terminate struct{}

func (*Terminate) Frontend() {}

func (src *Terminate) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagTerminate, 0, 0, 0, 4), nil
}

func appendTaggedCString(dst []byte, tag byte, s string) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tag)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendCString(dst, s)
	return finish(dst, sp)
}

// finish backpatches the 4-byte length prefix that begins at dst[sp+1:sp+5]
// (after the 1-byte tag at dst[sp]) now that the full body has been written.
func finish(dst []byte, sp int) ([]byte, error) {
	n := len(dst) - sp - 1
	if n-4 > MaxMessageBodyLen {
		return nil, fmt.Errorf("message body too large (%d bytes)", n-4)
	}
	binary.BigEndian.PutUint32(dst[sp+1:], uint32(n))
	return dst, nil
}
