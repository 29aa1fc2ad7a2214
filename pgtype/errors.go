package pgtype

import "fmt"

// TypeError is raised when the value codec cannot map a wire value to the
// requested target, or cannot represent a NULL in a non-nullable target.
type TypeError struct {
	OID     uint32
	Message string
}

func (e *TypeError) Error() string {
	if e.OID != 0 {
		return fmt.Sprintf("pgtype: oid %d: %s", e.OID, e.Message)
	}
	return "pgtype: " + e.Message
}

func newTypeError(oid uint32, format string, args ...any) *TypeError {
	return &TypeError{OID: oid, Message: fmt.Sprintf(format, args...)}
}
