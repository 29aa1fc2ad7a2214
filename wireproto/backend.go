package wireproto

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kanzidb/pgwire/internal/wireio"
)

// Backend is the server-side counterpart to Frontend: it decodes messages a
// client sends and buffers messages to send back. The core client never
// uses this type directly; it exists for internal/pgmock's scripted fake
// server.
type Backend struct {
	r *bufio.Reader
	w io.Writer

	wbuf []byte

	startupDone bool
	bodyLenBuf  [4]byte
	bodyBuf     []byte
}

// NewBackend builds a Backend reading from r and writing to w.
func NewBackend(r io.Reader, w io.Writer) *Backend {
	return &Backend{r: bufio.NewReader(r), w: w}
}

// Send buffers msg for transmission.
func (b *Backend) Send(msg BackendMessage) error {
	enc, ok := msg.(interface{ Encode([]byte) ([]byte, error) })
	if !ok {
		return fmt.Errorf("message type %T cannot be encoded", msg)
	}
	buf, err := enc.Encode(b.wbuf)
	if err != nil {
		return err
	}
	b.wbuf = buf
	return nil
}

// Flush writes all buffered messages.
func (b *Backend) Flush() error {
	if len(b.wbuf) == 0 {
		return nil
	}
	_, err := b.w.Write(b.wbuf)
	b.wbuf = b.wbuf[:0]
	return err
}

// ReceiveStartupMessage reads the very first, tag-less message on a new
// connection.
func (b *Backend) ReceiveStartupMessage() (*StartupMessage, error) {
	if _, err := io.ReadFull(b.r, b.bodyLenBuf[:]); err != nil {
		return nil, fmt.Errorf("read startup length failed: %w", err)
	}
	bodyLen := int(wireio.Int32(b.bodyLenBuf[:])) - 4
	if bodyLen < 0 {
		return nil, fmt.Errorf("invalid startup message length")
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(b.r, body); err != nil {
		return nil, fmt.Errorf("read startup body failed: %w", err)
	}

	msg := &StartupMessage{Parameters: make(map[string]string)}
	msg.ProtocolVersion = wireio.Uint32(body)
	rest := body[4:]
	for len(rest) > 0 && rest[0] != 0 {
		key, r2, ok := wireio.CString(rest)
		if !ok {
			return nil, fmt.Errorf("bad startup message")
		}
		val, r3, ok := wireio.CString(r2)
		if !ok {
			return nil, fmt.Errorf("bad startup message")
		}
		msg.Parameters[key] = val
		rest = r3
	}
	b.startupDone = true
	return msg, nil
}

// Receive reads and decodes the next frontend message.
func (b *Backend) Receive() (FrontendMessage, error) {
	tag, err := b.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read message tag failed: %w", err)
	}
	if _, err := io.ReadFull(b.r, b.bodyLenBuf[:]); err != nil {
		return nil, fmt.Errorf("read message length failed: %w", err)
	}
	bodyLen := int(wireio.Int32(b.bodyLenBuf[:])) - 4
	if bodyLen < 0 {
		return nil, fmt.Errorf("invalid message length")
	}
	if cap(b.bodyBuf) < bodyLen {
		b.bodyBuf = make([]byte, bodyLen)
	}
	body := b.bodyBuf[:bodyLen]
	if bodyLen > 0 {
		if _, err := io.ReadFull(b.r, body); err != nil {
			return nil, fmt.Errorf("read message body failed: %w", err)
		}
	}
	return decodeFrontend(tag, body)
}

func decodeFrontend(tag byte, body []byte) (FrontendMessage, error) {
	switch tag {
	case tagPasswordMessage:
		name, _, _ := wireio.CString(body)
		return &PasswordMessage{Password: name}, nil
	case tagQuery:
		s, _, _ := wireio.CString(body)
		return &Query{String: s}, nil
	case tagParse:
		return decodeParse(body)
	case tagBind:
		return decodeBind(body)
	case tagDescribe:
		if len(body) < 1 {
			return nil, fmt.Errorf("bad describe")
		}
		name, _, _ := wireio.CString(body[1:])
		return &Describe{ObjectType: body[0], Name: name}, nil
	case tagExecute:
		name, rest, ok := wireio.CString(body)
		if !ok || len(rest) < 4 {
			return nil, fmt.Errorf("bad execute")
		}
		return &Execute{Portal: name, MaxRows: wireio.Uint32(rest)}, nil
	case tagClose:
		if len(body) < 1 {
			return nil, fmt.Errorf("bad close")
		}
		name, _, _ := wireio.CString(body[1:])
		return &Close{ObjectType: body[0], Name: name}, nil
	case tagFlush:
		return &Flush{}, nil
	case tagSync:
		return &Sync{}, nil
	case tagTerminate:
		return &Terminate{}, nil
	default:
		return nil, fmt.Errorf("unknown frontend message tag %q", tag)
	}
}

func decodeParse(body []byte) (*Parse, error) {
	name, rest, ok := wireio.CString(body)
	if !ok {
		return nil, fmt.Errorf("bad parse")
	}
	query, rest, ok := wireio.CString(rest)
	if !ok {
		return nil, fmt.Errorf("bad parse")
	}
	if len(rest) < 2 {
		return nil, fmt.Errorf("bad parse")
	}
	n := int(wireio.Uint16(rest))
	rest = rest[2:]
	oids := make([]uint32, n)
	for i := 0; i < n; i++ {
		oids[i] = wireio.Uint32(rest[i*4:])
	}
	return &Parse{Name: name, Query: query, ParameterOIDs: oids}, nil
}

func decodeBind(body []byte) (*Bind, error) {
	portal, rest, ok := wireio.CString(body)
	if !ok {
		return nil, fmt.Errorf("bad bind")
	}
	stmt, rest, ok := wireio.CString(rest)
	if !ok {
		return nil, fmt.Errorf("bad bind")
	}

	nFormats := int(wireio.Uint16(rest))
	rest = rest[2:]
	formats := make([]int16, nFormats)
	for i := 0; i < nFormats; i++ {
		formats[i] = wireio.Int16(rest[i*2:])
	}
	rest = rest[nFormats*2:]

	nParams := int(wireio.Uint16(rest))
	rest = rest[2:]
	params := make([][]byte, nParams)
	for i := 0; i < nParams; i++ {
		size := wireio.Int32(rest)
		rest = rest[4:]
		if size == -1 {
			continue
		}
		params[i] = rest[:size]
		rest = rest[size:]
	}

	nResultFormats := int(wireio.Uint16(rest))
	rest = rest[2:]
	resultFormats := make([]int16, nResultFormats)
	for i := 0; i < nResultFormats; i++ {
		resultFormats[i] = wireio.Int16(rest[i*2:])
	}

	return &Bind{
		DestinationPortal:    portal,
		PreparedStatement:    stmt,
		ParameterFormatCodes: formats,
		Parameters:           params,
		ResultFormatCodes:    resultFormats,
	}, nil
}
