package pgtype

// Well-known OIDs for the base types this codec handles directly. Types
// outside this table are resolved dynamically through a *Registry: array,
// composite, or enum.
const (
	BoolOID        = 16
	ByteaOID       = 17
	CharOID        = 18
	NameOID        = 19
	Int8OID        = 20
	Int2OID        = 21
	Int4OID        = 23
	TextOID        = 25
	JSONOID        = 114
	Float4OID      = 700
	Float8OID      = 701
	UnknownOID     = 705
	DateOID        = 1082
	TimeOID        = 1083
	TimestampOID   = 1114
	TimestampTzOID = 1184
	IntervalOID    = 1186
	BPCharOID      = 1042
	VarcharOID     = 1043
	TimeTzOID      = 1266
	CompositeOID   = 2249
	ArrayOID       = 2287
	UUIDOID        = 2950

	OIDOID       = 26
	RegProcOID   = 24
	RegProcedure = 2202
	RegOperOID   = 2203
	RegOperator  = 2204
	RegClassOID  = 2205
	RegTypeOID   = 2206
	RegConfigOID = 3734
	RegDictOID   = 3769
)

// isTextParamOID reports whether values of oid are always sent as text
// regardless of the globally requested binary result format. The core
// requests binary output for everything; this only matters for parameter
// input format selection (§4.2).
func isTextParamOID(oid uint32) bool {
	switch oid {
	case TextOID, VarcharOID, BPCharOID, NameOID, UnknownOID, JSONOID:
		return true
	default:
		return false
	}
}

// isBigEndianUint32OID reports whether oid is one of the OID/reg* family
// this codec decodes as big-endian unsigned 32-bit integers.
func isBigEndianUint32OID(oid uint32) bool {
	switch oid {
	case OIDOID, RegProcOID, RegProcedure, RegOperOID, RegOperator,
		RegClassOID, RegTypeOID, RegConfigOID, RegDictOID:
		return true
	default:
		return false
	}
}
