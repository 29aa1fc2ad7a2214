package pgtype

import "github.com/kanzidb/pgwire/internal/wireio"

// decodeComposite decodes the generic composite (row type) wire layout
// (§4.4): a field count followed by, per field, its OID, a length (-1 for
// NULL), and the field's own encoded bytes. Each field is decoded by the
// OID it carries on the wire (which may itself resolve through the
// registry, e.g. a nested composite); compositeOID's own registry entry is
// not consulted.
func decodeComposite(reg *Registry, compositeOID uint32, buf []byte) (Value, error) {
	if len(buf) < 4 {
		return Value{}, newTypeError(compositeOID, "composite: header truncated")
	}
	n := wireio.Int32(buf[0:4])
	buf = buf[4:]

	fields := make([]Value, 0, n)
	for i := int32(0); i < n; i++ {
		if len(buf) < 8 {
			return Value{}, newTypeError(compositeOID, "composite: field header truncated")
		}
		fieldOID := wireio.Uint32(buf[0:4])
		fieldLen := wireio.Int32(buf[4:8])
		buf = buf[8:]

		if fieldLen < 0 {
			fields = append(fields, Null)
			continue
		}
		if int32(len(buf)) < fieldLen {
			return Value{}, newTypeError(compositeOID, "composite: field body truncated")
		}
		fv, err := DecodeValue(reg, fieldOID, buf[:fieldLen])
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, fv)
		buf = buf[fieldLen:]
	}
	return CompositeValue(compositeOID, fields), nil
}

// encodeComposite writes the generic composite wire layout. memberOIDs must
// list the composite's attribute OIDs in order, as learned by the registry
// at connect time; fields must have the same length.
func encodeComposite(reg *Registry, memberOIDs []uint32, fields []Value) ([]byte, error) {
	if len(memberOIDs) != len(fields) {
		return nil, newTypeError(0, "composite: have %d member OIDs but %d field values", len(memberOIDs), len(fields))
	}

	buf := make([]byte, 0, 8+len(fields)*16)
	buf = wireio.AppendInt32(buf, int32(len(fields)))
	for i, fv := range fields {
		oid := memberOIDs[i]
		buf = wireio.AppendUint32(buf, oid)
		if fv.IsNull() {
			buf = wireio.AppendInt32(buf, -1)
			continue
		}
		enc, err := EncodeValue(reg, oid, fv)
		if err != nil {
			return nil, err
		}
		buf = wireio.AppendInt32(buf, int32(len(enc)))
		buf = append(buf, enc...)
	}
	return buf, nil
}
