package pgtype

import "github.com/google/uuid"

// decodeUUID reads a 16-byte binary UUID (§4.4, OID 2950).
func decodeUUID(buf []byte) (Value, error) {
	if len(buf) != 16 {
		return Value{}, newTypeError(UUIDOID, "uuid: expected 16 bytes, got %d", len(buf))
	}
	var u uuid.UUID
	copy(u[:], buf)
	return UUIDValue(u), nil
}

// encodeUUID appends the 16 raw bytes of v.
func encodeUUID(buf []byte, v Value) ([]byte, error) {
	u, err := v.UUID()
	if err != nil {
		return nil, err
	}
	return append(buf, u[:]...), nil
}
