// Package wireio provides the big-endian, length-prefixed read/write
// primitives that the PostgreSQL wire protocol is built out of. It has no
// notion of message framing or message types; wireproto builds on top of it.
package wireio

import (
	"encoding/binary"
	"math"
	"time"
)

// pgEpoch is the server's binary calendar epoch: 2000-01-01 00:00:00 UTC.
var pgEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// PGEpoch returns the wire protocol's reference instant for date/time values.
func PGEpoch() time.Time { return pgEpoch }

// AppendUint16 appends v to buf in big-endian order.
func AppendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// AppendInt16 appends v to buf in big-endian order.
func AppendInt16(buf []byte, v int16) []byte {
	return AppendUint16(buf, uint16(v))
}

// AppendUint32 appends v to buf in big-endian order.
func AppendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendInt32 appends v to buf in big-endian order.
func AppendInt32(buf []byte, v int32) []byte {
	return AppendUint32(buf, uint32(v))
}

// AppendUint64 appends v to buf in big-endian order.
func AppendUint64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendInt64 appends v to buf in big-endian order.
func AppendInt64(buf []byte, v int64) []byte {
	return AppendUint64(buf, uint64(v))
}

// AppendFloat32 appends the IEEE 754 big-endian bits of v.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendUint32(buf, float32bits(v))
}

// AppendFloat64 appends the IEEE 754 big-endian bits of v.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendUint64(buf, float64bits(v))
}

// AppendCString appends s followed by a single zero terminator byte.
func AppendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

// Uint16 reads a big-endian uint16 from the front of buf.
func Uint16(buf []byte) uint16 { return binary.BigEndian.Uint16(buf) }

// Int16 reads a big-endian int16 from the front of buf.
func Int16(buf []byte) int16 { return int16(Uint16(buf)) }

// Uint32 reads a big-endian uint32 from the front of buf.
func Uint32(buf []byte) uint32 { return binary.BigEndian.Uint32(buf) }

// Int32 reads a big-endian int32 from the front of buf.
func Int32(buf []byte) int32 { return int32(Uint32(buf)) }

// Uint64 reads a big-endian uint64 from the front of buf.
func Uint64(buf []byte) uint64 { return binary.BigEndian.Uint64(buf) }

// Int64 reads a big-endian int64 from the front of buf.
func Int64(buf []byte) int64 { return int64(Uint64(buf)) }

// Float32 reads an IEEE 754 big-endian float32 from the front of buf.
func Float32(buf []byte) float32 { return float32frombits(Uint32(buf)) }

// Float64 reads an IEEE 754 big-endian float64 from the front of buf.
func Float64(buf []byte) float64 { return float64frombits(Uint64(buf)) }

// CString returns the NUL-terminated string at the front of buf along with
// the remainder of buf following the terminator.
func CString(buf []byte) (s string, rest []byte, ok bool) {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), buf[i+1:], true
		}
	}
	return "", buf, false
}

// DateToDays converts t (truncated to a calendar day) to the number of days
// since the wire protocol epoch.
func DateToDays(t time.Time) int32 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int32(day.Sub(pgEpoch).Hours() / 24)
}

// DaysToDate converts a day count since the wire protocol epoch to a Time.
func DaysToDate(days int32) time.Time {
	return pgEpoch.AddDate(0, 0, int(days))
}

// TimeToMicros converts the time-of-day portion of t to microseconds since
// midnight.
func TimeToMicros(t time.Time) int64 {
	h, m, s := t.Clock()
	return int64(h)*3600e6 + int64(m)*60e6 + int64(s)*1e6 + int64(t.Nanosecond())/1000
}

// MicrosToDuration converts a microsecond count to a time.Duration.
func MicrosToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}

// TimestampToMicros converts t to microseconds since the wire protocol epoch.
func TimestampToMicros(t time.Time) int64 {
	d := t.Sub(pgEpoch)
	return d.Microseconds()
}

// MicrosToTimestamp converts microseconds since the wire protocol epoch back
// to a Time in loc.
func MicrosToTimestamp(us int64, loc *time.Location) time.Time {
	return pgEpoch.In(loc).Add(time.Duration(us) * time.Microsecond)
}

func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64bits(f float64) uint64     { return math.Float64bits(f) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
