package wireproto

import (
	"github.com/kanzidb/pgwire/internal/wireio"
)

// Encode implementations for backend messages. These exist so
// internal/pgmock (and any other scripted fake server) can produce real
// wire bytes without a live PostgreSQL server.

func (src *AuthenticationOk) Encode(dst []byte) ([]byte, error) {
	return encodeAuth(dst, 0, nil)
}

func (src *AuthenticationCleartextPassword) Encode(dst []byte) ([]byte, error) {
	return encodeAuth(dst, 3, nil)
}

func (src *AuthenticationMD5Password) Encode(dst []byte) ([]byte, error) {
	return encodeAuth(dst, 5, src.Salt[:])
}

func encodeAuth(dst []byte, subtype int32, extra []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagAuthentication)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendInt32(dst, subtype)
	dst = append(dst, extra...)
	return finish(dst, sp)
}

func (src *ParameterStatus) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagParameterStatus)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendCString(dst, src.Name)
	dst = wireio.AppendCString(dst, src.Value)
	return finish(dst, sp)
}

func (src *BackendKeyData) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagBackendKeyData)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendUint32(dst, src.ProcessID)
	dst = wireio.AppendUint32(dst, src.SecretKey)
	return finish(dst, sp)
}

func (src *ReadyForQuery) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagReadyForQuery)
	dst = wireio.AppendInt32(dst, -1)
	dst = append(dst, src.TxStatus)
	return finish(dst, sp)
}

func (src *ParseComplete) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagParseComplete, 0, 0, 0, 4), nil
}

func (src *BindComplete) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagBindComplete, 0, 0, 0, 4), nil
}

func (src *CloseComplete) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagCloseComplete, 0, 0, 0, 4), nil
}

func (src *NoData) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagNoData, 0, 0, 0, 4), nil
}

func (src *EmptyQueryResponse) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagEmptyQuery, 0, 0, 0, 4), nil
}

func (src *PortalSuspended) Encode(dst []byte) ([]byte, error) {
	return append(dst, tagPortalSuspended, 0, 0, 0, 4), nil
}

func (src *RowDescription) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagRowDescription)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendUint16(dst, uint16(len(src.Fields)))
	for _, f := range src.Fields {
		dst = append(dst, f.Name...)
		dst = append(dst, 0)
		dst = wireio.AppendUint32(dst, f.TableOID)
		dst = wireio.AppendUint16(dst, f.TableAttributeNumber)
		dst = wireio.AppendUint32(dst, f.DataTypeOID)
		dst = wireio.AppendInt16(dst, f.DataTypeSize)
		dst = wireio.AppendInt32(dst, f.TypeModifier)
		dst = wireio.AppendInt16(dst, f.Format)
	}
	return finish(dst, sp)
}

func (src *ParameterDescription) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagParameterDesc)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendUint16(dst, uint16(len(src.ParameterOIDs)))
	for _, oid := range src.ParameterOIDs {
		dst = wireio.AppendUint32(dst, oid)
	}
	return finish(dst, sp)
}

func (src *DataRow) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagDataRow)
	dst = wireio.AppendInt32(dst, -1)
	dst = wireio.AppendUint16(dst, uint16(len(src.Values)))
	for _, v := range src.Values {
		if v == nil {
			dst = wireio.AppendInt32(dst, -1)
			continue
		}
		dst = wireio.AppendInt32(dst, int32(len(v)))
		dst = append(dst, v...)
	}
	return finish(dst, sp)
}

func (src *CommandComplete) Encode(dst []byte) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tagCommandComplete)
	dst = wireio.AppendInt32(dst, -1)
	dst = append(dst, src.CommandTag...)
	dst = append(dst, 0)
	return finish(dst, sp)
}

func (src *ErrorResponse) Encode(dst []byte) ([]byte, error) {
	return encodeErrorFields(dst, tagErrorResponse, (*NoticeResponse)(src))
}

func (src *NoticeResponse) Encode(dst []byte) ([]byte, error) {
	return encodeErrorFields(dst, tagNoticeResponse, src)
}

func encodeErrorFields(dst []byte, tag byte, n *NoticeResponse) ([]byte, error) {
	sp := len(dst)
	dst = append(dst, tag)
	dst = wireio.AppendInt32(dst, -1)

	appendField := func(t byte, v string) {
		if v == "" {
			return
		}
		dst = append(dst, t)
		dst = wireio.AppendCString(dst, v)
	}

	appendField('S', n.Severity)
	appendField('V', n.SeverityUnlocalized)
	appendField('C', n.Code)
	appendField('M', n.Message)
	appendField('D', n.Detail)
	appendField('H', n.Hint)
	appendField('W', n.Where)
	appendField('s', n.SchemaName)
	appendField('t', n.TableName)
	appendField('c', n.ColumnName)
	appendField('d', n.DataTypeName)
	appendField('n', n.ConstraintName)
	appendField('F', n.File)
	appendField('R', n.Routine)

	dst = append(dst, 0)
	return finish(dst, sp)
}
