package wireproto

import (
	"fmt"

	"github.com/kanzidb/pgwire/internal/wireio"
)

// AuthenticationOk signals that authentication succeeded.
type AuthenticationOk struct{}

func (*AuthenticationOk) Backend() {}

func (dst *AuthenticationOk) Decode(src []byte) error {
	if len(src) != 4 || wireio.Int32(src) != 0 {
		return fmt.Errorf("bad authentication ok")
	}
	return nil
}

// AuthenticationCleartextPassword requests a cleartext PasswordMessage.
type AuthenticationCleartextPassword struct{}

func (*AuthenticationCleartextPassword) Backend() {}

func (dst *AuthenticationCleartextPassword) Decode(src []byte) error {
	if len(src) != 4 || wireio.Int32(src) != 3 {
		return fmt.Errorf("bad authentication cleartext password")
	}
	return nil
}

// AuthenticationMD5Password requests an MD5-hashed PasswordMessage, salted
// with Salt.
type AuthenticationMD5Password struct {
	Salt [4]byte
}

func (*AuthenticationMD5Password) Backend() {}

func (dst *AuthenticationMD5Password) Decode(src []byte) error {
	if len(src) != 8 || wireio.Int32(src) != 5 {
		return fmt.Errorf("bad authentication md5 password")
	}
	copy(dst.Salt[:], src[4:8])
	return nil
}

// decodeAuthentication dispatches on the authentication subtype embedded in
// the first 4 bytes of the AuthenticationRequest body.
func decodeAuthentication(src []byte) (BackendMessage, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("authentication message too short")
	}
	switch wireio.Int32(src) {
	case 0:
		var m AuthenticationOk
		return &m, m.Decode(src)
	case 3:
		var m AuthenticationCleartextPassword
		return &m, m.Decode(src)
	case 5:
		var m AuthenticationMD5Password
		return &m, m.Decode(src)
	default:
		return nil, fmt.Errorf("unsupported authentication subtype %d (only cleartext and md5 are supported)", wireio.Int32(src))
	}
}

// ParameterStatus reports a server run-time parameter and its current value.
type ParameterStatus struct {
	Name  string
	Value string
}

func (*ParameterStatus) Backend() {}

func (dst *ParameterStatus) Decode(src []byte) error {
	name, rest, ok := wireio.CString(src)
	if !ok {
		return fmt.Errorf("invalid ParameterStatus: missing name terminator")
	}
	value, _, ok := wireio.CString(rest)
	if !ok {
		return fmt.Errorf("invalid ParameterStatus: missing value terminator")
	}
	dst.Name = name
	dst.Value = value
	return nil
}

// BackendKeyData carries the backend process id and the secret key used for
// CancelRequest.
type BackendKeyData struct {
	ProcessID uint32
	SecretKey uint32
}

func (*BackendKeyData) Backend() {}

func (dst *BackendKeyData) Decode(src []byte) error {
	if len(src) != 8 {
		return fmt.Errorf("bad backend key data")
	}
	dst.ProcessID = wireio.Uint32(src)
	dst.SecretKey = wireio.Uint32(src[4:])
	return nil
}

// ReadyForQuery marks the synchronization point after which a new command
// may begin. TxStatus is one of 'I' (idle), 'T' (in transaction), or 'E'
// (failed transaction, aborted).
type ReadyForQuery struct {
	TxStatus byte
}

func (*ReadyForQuery) Backend() {}

func (dst *ReadyForQuery) Decode(src []byte) error {
	if len(src) != 1 {
		return fmt.Errorf("bad ready for query")
	}
	switch src[0] {
	case 'I', 'T', 'E':
		dst.TxStatus = src[0]
		return nil
	default:
		return fmt.Errorf("invalid transaction status indicator: %q", src[0])
	}
}

// ParseComplete acknowledges a successful Parse.
type ParseComplete struct{}

func (*ParseComplete) Backend() {}
func (dst *ParseComplete) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad parse complete")
	}
	return nil
}

// BindComplete acknowledges a successful Bind.
type BindComplete struct{}

func (*BindComplete) Backend() {}
func (dst *BindComplete) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad bind complete")
	}
	return nil
}

// CloseComplete acknowledges a successful Close.
type CloseComplete struct{}

func (*CloseComplete) Backend() {}
func (dst *CloseComplete) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad close complete")
	}
	return nil
}

// NoData indicates a Describe'd statement or portal returns no rows.
type NoData struct{}

func (*NoData) Backend() {}
func (dst *NoData) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad no data")
	}
	return nil
}

// EmptyQueryResponse indicates the query string was empty.
type EmptyQueryResponse struct{}

func (*EmptyQueryResponse) Backend() {}
func (dst *EmptyQueryResponse) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad empty query response")
	}
	return nil
}

// PortalSuspended indicates Execute's row limit was reached before the
// portal was exhausted. The core always requests an unlimited row count, so
// receiving this is treated as a protocol error.
type PortalSuspended struct{}

func (*PortalSuspended) Backend() {}
func (dst *PortalSuspended) Decode(src []byte) error {
	if len(src) != 0 {
		return fmt.Errorf("bad portal suspended")
	}
	return nil
}

// FieldDescription describes one column of a RowDescription.
type FieldDescription struct {
	Name                 []byte
	TableOID             uint32
	TableAttributeNumber uint16
	DataTypeOID          uint32
	DataTypeSize         int16
	TypeModifier         int32
	Format               int16
}

// RowDescription describes the shape of the rows a query will return.
type RowDescription struct {
	Fields []FieldDescription
}

func (*RowDescription) Backend() {}

func (dst *RowDescription) Decode(src []byte) error {
	if len(src) < 2 {
		return fmt.Errorf("row description too short")
	}
	fieldCount := int(wireio.Uint16(src))
	rp := 2

	if cap(dst.Fields) >= fieldCount {
		dst.Fields = dst.Fields[:fieldCount]
	} else {
		dst.Fields = make([]FieldDescription, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		if rp >= len(src) {
			return fmt.Errorf("row description too short")
		}
		name, rest, ok := wireio.CString(src[rp:])
		if !ok {
			return fmt.Errorf("invalid row description: missing field name terminator")
		}
		rp = len(src) - len(rest)

		if rp+18 > len(src) {
			return fmt.Errorf("row description too short")
		}

		fd := &dst.Fields[i]
		fd.Name = []byte(name)
		fd.TableOID = wireio.Uint32(src[rp:])
		fd.TableAttributeNumber = wireio.Uint16(src[rp+4:])
		fd.DataTypeOID = wireio.Uint32(src[rp+6:])
		fd.DataTypeSize = wireio.Int16(src[rp+10:])
		fd.TypeModifier = wireio.Int32(src[rp+12:])
		fd.Format = wireio.Int16(src[rp+16:])
		rp += 18
	}

	return nil
}

// ParameterDescription reports the inferred parameter OIDs for a prepared
// statement, in response to Describe('S', ...).
type ParameterDescription struct {
	ParameterOIDs []uint32
}

func (*ParameterDescription) Backend() {}

func (dst *ParameterDescription) Decode(src []byte) error {
	if len(src) < 2 {
		return fmt.Errorf("parameter description too short")
	}
	n := int(wireio.Uint16(src))
	if len(src) != 2+n*4 {
		return fmt.Errorf("bad parameter description length")
	}
	dst.ParameterOIDs = make([]uint32, n)
	for i := 0; i < n; i++ {
		dst.ParameterOIDs[i] = wireio.Uint32(src[2+i*4:])
	}
	return nil
}

// DataRow carries one row of query results. A nil entry in Values means
// that column is NULL.
type DataRow struct {
	Values [][]byte
}

func (*DataRow) Backend() {}

func (dst *DataRow) Decode(src []byte) error {
	if len(src) < 2 {
		return fmt.Errorf("data row too short")
	}
	n := int(wireio.Uint16(src))
	rp := 2

	if cap(dst.Values) >= n {
		dst.Values = dst.Values[:n]
	} else {
		dst.Values = make([][]byte, n)
	}

	for i := 0; i < n; i++ {
		if rp+4 > len(src) {
			return fmt.Errorf("data row too short")
		}
		size := wireio.Int32(src[rp:])
		rp += 4
		if size == -1 {
			dst.Values[i] = nil
			continue
		}
		if size < 0 || rp+int(size) > len(src) {
			return fmt.Errorf("data row value out of bounds")
		}
		dst.Values[i] = src[rp : rp+int(size)]
		rp += int(size)
	}

	return nil
}

// CommandComplete carries the command tag of a finished command.
type CommandComplete struct {
	CommandTag []byte
}

func (*CommandComplete) Backend() {}

func (dst *CommandComplete) Decode(src []byte) error {
	tag, _, ok := wireio.CString(src)
	if !ok {
		// Some servers omit the trailing NUL; accept the raw bytes.
		dst.CommandTag = src
		return nil
	}
	dst.CommandTag = []byte(tag)
	return nil
}

// ErrorResponse and NoticeResponse share a field set; see §6 of the spec for
// the field letter -> meaning mapping.
type ErrorResponse struct {
	Severity            string
	SeverityUnlocalized string
	Code                string
	Message             string
	Detail              string
	Hint                string
	Position            int32
	InternalPosition    int32
	InternalQuery       string
	Where               string
	SchemaName          string
	TableName           string
	ColumnName          string
	DataTypeName        string
	ConstraintName      string
	File                string
	Line                int32
	Routine             string
}

func (*ErrorResponse) Backend() {}

func (dst *ErrorResponse) Decode(src []byte) error {
	*dst = ErrorResponse{}
	rp := 0
	for rp < len(src) {
		fieldType := src[rp]
		rp++
		if fieldType == 0 {
			break
		}
		value, rest, ok := wireio.CString(src[rp:])
		if !ok {
			return fmt.Errorf("invalid error response: missing field terminator")
		}
		rp = len(src) - len(rest)

		switch fieldType {
		case 'S':
			dst.Severity = value
		case 'V':
			dst.SeverityUnlocalized = value
		case 'C':
			dst.Code = value
		case 'M':
			dst.Message = value
		case 'D':
			dst.Detail = value
		case 'H':
			dst.Hint = value
		case 'P':
			dst.Position = parseInt32(value)
		case 'p':
			dst.InternalPosition = parseInt32(value)
		case 'q':
			dst.InternalQuery = value
		case 'W':
			dst.Where = value
		case 's':
			dst.SchemaName = value
		case 't':
			dst.TableName = value
		case 'c':
			dst.ColumnName = value
		case 'd':
			dst.DataTypeName = value
		case 'n':
			dst.ConstraintName = value
		case 'F':
			dst.File = value
		case 'L':
			dst.Line = parseInt32(value)
		case 'R':
			dst.Routine = value
		}
	}
	return nil
}

// NoticeResponse has the same wire shape as ErrorResponse.
type NoticeResponse ErrorResponse

func (*NoticeResponse) Backend() {}

func (dst *NoticeResponse) Decode(src []byte) error {
	return (*ErrorResponse)(dst).Decode(src)
}

func parseInt32(s string) int32 {
	var n int32
	neg := false
	for i, b := range s {
		if i == 0 && b == '-' {
			neg = true
			continue
		}
		if b < '0' || b > '9' {
			return 0
		}
		n = n*10 + int32(b-'0')
	}
	if neg {
		n = -n
	}
	return n
}
