package pgtype

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags the dynamic union a Value holds. This is the "tagged sum over
// the supported base types plus Null, array, and composite" the design
// notes call for, replacing the source's variant/any type.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindTime
	KindDate
	KindInterval
	KindUUID
	KindArray
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindInterval:
		return "interval"
	case KindUUID:
		return "uuid"
	case KindArray:
		return "array"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed holder for a decoded field value (or a bound
// parameter value before encoding). Its zero value is KindNull.
type Value struct {
	kind Kind
	oid  uint32

	b   bool
	i   int64
	f   float64
	s   string
	bs  []byte
	t   time.Time
	iv  Interval
	u   uuid.UUID
	arr []Value
	rec []Value
}

// Null is the null value.
var Null = Value{kind: KindNull}

func NullValue() Value { return Null }

func BoolValue(v bool) Value     { return Value{kind: KindBool, b: v} }
func Int64Value(v int64) Value   { return Value{kind: KindInt64, i: v} }
func Float64Value(v float64) Value { return Value{kind: KindFloat64, f: v} }
func StringValue(v string) Value { return Value{kind: KindString, s: v} }
func BytesValue(v []byte) Value  { return Value{kind: KindBytes, bs: v} }
func TimeValue(v time.Time) Value  { return Value{kind: KindTime, t: v} }
func DateValue(v time.Time) Value  { return Value{kind: KindDate, t: v} }
func IntervalValue(v Interval) Value { return Value{kind: KindInterval, iv: v} }
func UUIDValue(v uuid.UUID) Value    { return Value{kind: KindUUID, u: v} }

// ArrayValue builds an array-kind Value out of already-decoded elements.
func ArrayValue(elems []Value) Value { return Value{kind: KindArray, arr: elems} }

// CompositeValue builds a composite-kind Value out of already-decoded
// fields, in attribute order. oid is the composite type's OID: the record
// pseudo-type OID (CompositeOID, 2249) for a decoded bare ROW(...) result,
// or 0 if unknown.
func CompositeValue(oid uint32, fields []Value) Value {
	return Value{kind: KindComposite, oid: oid, rec: fields}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) typeErr(want string) error {
	return &TypeError{Message: fmt.Sprintf("value is %s, not %s", v.kind, want)}
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.typeErr("bool")
	}
	return v.b, nil
}

func (v Value) Int64() (int64, error) {
	if v.kind != KindInt64 {
		return 0, v.typeErr("int64")
	}
	return v.i, nil
}

func (v Value) Float64() (float64, error) {
	if v.kind != KindFloat64 {
		return 0, v.typeErr("float64")
	}
	return v.f, nil
}

func (v Value) String() (string, error) {
	if v.kind != KindString {
		return "", v.typeErr("string")
	}
	return v.s, nil
}

func (v Value) Bytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, v.typeErr("bytes")
	}
	return v.bs, nil
}

func (v Value) Time() (time.Time, error) {
	if v.kind != KindTime && v.kind != KindDate {
		return time.Time{}, v.typeErr("time")
	}
	return v.t, nil
}

func (v Value) Interval() (Interval, error) {
	if v.kind != KindInterval {
		return Interval{}, v.typeErr("interval")
	}
	return v.iv, nil
}

func (v Value) UUID() (uuid.UUID, error) {
	if v.kind != KindUUID {
		return uuid.UUID{}, v.typeErr("uuid")
	}
	return v.u, nil
}

func (v Value) Array() ([]Value, error) {
	if v.kind != KindArray {
		return nil, v.typeErr("array")
	}
	return v.arr, nil
}

func (v Value) Composite() ([]Value, error) {
	if v.kind != KindComposite {
		return nil, v.typeErr("composite")
	}
	return v.rec, nil
}

// CompositeOID returns the composite type's OID, or 0 if v is not a
// composite value or the OID was not known.
func (v Value) CompositeOID() uint32 { return v.oid }

// Any returns v unwrapped into the nearest native Go representation: nil,
// bool, int64, float64, string, []byte, time.Time, Interval, uuid.UUID,
// []any (array), or []any in field order (composite, since field names
// live on the FieldDescription list, not on the value itself).
func (v Value) Any() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.bs
	case KindTime, KindDate:
		return v.t
	case KindInterval:
		return v.iv
	case KindUUID:
		return v.u
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Any()
		}
		return out
	case KindComposite:
		out := make([]any, len(v.rec))
		for i, e := range v.rec {
			out[i] = e.Any()
		}
		return out
	default:
		return nil
	}
}
