package pgwire

import "github.com/kanzidb/pgwire/pgtype"

// encodeParams encodes each parameter value for Bind and selects its format
// code per §4.2: textual types are sent as text (format 0, though the text
// encoding and this codec's "binary" encoding of a text-family OID are the
// same raw UTF-8 bytes), everything else as binary (format 1). When every
// parameter ends up binary, Bind gets a single shared format code instead
// of one per parameter.
func encodeParams(reg *pgtype.Registry, paramOIDs []uint32, params []pgtype.Value) (values [][]byte, formatCodes []int16, err error) {
	if len(paramOIDs) != len(params) {
		return nil, nil, newParameterError("command expects %d parameters, got %d", len(paramOIDs), len(params))
	}

	values = make([][]byte, len(params))
	formats := make([]int16, len(params))
	anyText := false

	for i, oid := range paramOIDs {
		f := pgtype.ParamFormat(oid)
		formats[i] = f
		if f == 0 {
			anyText = true
		}

		if params[i].IsNull() {
			values[i] = nil
			continue
		}
		enc, encErr := pgtype.EncodeValue(reg, oid, params[i])
		if encErr != nil {
			return nil, nil, &ParameterError{cause: encErr}
		}
		values[i] = enc
	}

	if !anyText {
		return values, []int16{1}, nil
	}
	return values, formats, nil
}
