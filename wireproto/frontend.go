package wireproto

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kanzidb/pgwire/internal/wireio"
)

// Frontend buffers outgoing messages and a decode loop over incoming ones.
// It has no notion of connection state; it is purely the codec layer the
// connection state machine drives.
type Frontend struct {
	r *bufio.Reader
	w io.Writer

	wbuf []byte

	// bodyLenBuf is scratch space for reading a message's length prefix.
	bodyLenBuf [4]byte

	// bodyBuf is reused across Receive calls to avoid reallocating on
	// every message; a message's Decode may retain slices into it only
	// until the next Receive call.
	bodyBuf []byte
}

// NewFrontend builds a Frontend reading from r and writing to w.
func NewFrontend(r io.Reader, w io.Writer) *Frontend {
	return &Frontend{r: bufio.NewReader(r), w: w}
}

// Send buffers msg for later transmission. Call Flush to actually write.
func (f *Frontend) Send(msg FrontendMessage) error {
	buf, err := msg.Encode(f.wbuf)
	if err != nil {
		return err
	}
	f.wbuf = buf
	return nil
}

// Flush writes all buffered messages to the underlying writer.
func (f *Frontend) Flush() error {
	if len(f.wbuf) == 0 {
		return nil
	}
	n, err := f.w.Write(f.wbuf)
	if err != nil {
		if n > 0 {
			f.wbuf = f.wbuf[:copy(f.wbuf, f.wbuf[n:])]
		}
		return fmt.Errorf("write to server failed: %w", err)
	}
	f.wbuf = f.wbuf[:0]
	return nil
}

// Receive reads and decodes the next backend message.
func (f *Frontend) Receive() (BackendMessage, error) {
	tag, err := f.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read message tag failed: %w", err)
	}

	if _, err := io.ReadFull(f.r, f.bodyLenBuf[:]); err != nil {
		return nil, fmt.Errorf("read message length failed: %w", err)
	}
	bodyLen := int(wireio.Int32(f.bodyLenBuf[:])) - 4
	if bodyLen < 0 {
		return nil, fmt.Errorf("invalid message length %d for tag %q", bodyLen, tag)
	}

	if cap(f.bodyBuf) < bodyLen {
		f.bodyBuf = make([]byte, bodyLen)
	}
	body := f.bodyBuf[:bodyLen]
	if bodyLen > 0 {
		if _, err := io.ReadFull(f.r, body); err != nil {
			return nil, fmt.Errorf("read message body failed: %w", err)
		}
	}

	return decodeBackend(tag, body)
}

func decodeBackend(tag byte, body []byte) (BackendMessage, error) {
	switch tag {
	case tagAuthentication:
		return decodeAuthentication(body)
	case tagParameterStatus:
		var m ParameterStatus
		return &m, m.Decode(body)
	case tagBackendKeyData:
		var m BackendKeyData
		return &m, m.Decode(body)
	case tagReadyForQuery:
		var m ReadyForQuery
		return &m, m.Decode(body)
	case tagParseComplete:
		var m ParseComplete
		return &m, m.Decode(body)
	case tagBindComplete:
		var m BindComplete
		return &m, m.Decode(body)
	case tagCloseComplete:
		var m CloseComplete
		return &m, m.Decode(body)
	case tagRowDescription:
		var m RowDescription
		return &m, m.Decode(body)
	case tagNoData:
		var m NoData
		return &m, m.Decode(body)
	case tagDataRow:
		var m DataRow
		return &m, m.Decode(body)
	case tagCommandComplete:
		var m CommandComplete
		return &m, m.Decode(body)
	case tagEmptyQuery:
		var m EmptyQueryResponse
		return &m, m.Decode(body)
	case tagPortalSuspended:
		var m PortalSuspended
		return &m, m.Decode(body)
	case tagErrorResponse:
		var m ErrorResponse
		return &m, m.Decode(body)
	case tagNoticeResponse:
		var m NoticeResponse
		return &m, m.Decode(body)
	case tagParameterDesc:
		var m ParameterDescription
		return &m, m.Decode(body)
	default:
		return nil, fmt.Errorf("unknown backend message tag %q", tag)
	}
}
