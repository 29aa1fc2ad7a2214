package pgtype

import "github.com/kanzidb/pgwire/internal/wireio"

// decodeArray decodes the generic array wire layout (§4.4): ndim, a
// has-null flag, the element type OID, one (length, lower bound) pair per
// dimension, and then the elements themselves in row-major order, each
// prefixed by its own length (-1 for NULL).
//
// Dimensionality is unbounded on the wire; this decodes however many
// dimensions the server sent and nests the result accordingly, so
// Value.Array() on a 2-dimensional array yields a slice of array Values
// (one per outer element) rather than a flattened list.
func decodeArray(reg *Registry, arrayOID uint32, buf []byte) (Value, error) {
	if len(buf) < 12 {
		return Value{}, newTypeError(arrayOID, "array: header truncated")
	}
	ndim := wireio.Int32(buf[0:4])
	buf = buf[12:] // skip ndim, hasNull flag, elemOid: trust registry for elemOID

	elemOID, ok := reg.ArrayElementOID(arrayOID)
	if !ok {
		return Value{}, newTypeError(arrayOID, "array: unknown array type, registry has no element OID")
	}

	if ndim == 0 {
		return ArrayValue(nil), nil
	}

	if len(buf) < int(ndim)*8 {
		return Value{}, newTypeError(arrayOID, "array: dimension header truncated")
	}
	dims := make([]int32, ndim)
	total := int64(1)
	for i := int32(0); i < ndim; i++ {
		dims[i] = wireio.Int32(buf[0:4])
		total *= int64(dims[i])
		buf = buf[8:] // length, lower bound
	}

	flat := make([]Value, 0, total)
	for i := int64(0); i < total; i++ {
		if len(buf) < 4 {
			return Value{}, newTypeError(arrayOID, "array: element length truncated")
		}
		elLen := wireio.Int32(buf[0:4])
		buf = buf[4:]
		if elLen < 0 {
			flat = append(flat, Null)
			continue
		}
		if int32(len(buf)) < elLen {
			return Value{}, newTypeError(arrayOID, "array: element body truncated")
		}
		el, err := DecodeValue(reg, elemOID, buf[:elLen])
		if err != nil {
			return Value{}, err
		}
		flat = append(flat, el)
		buf = buf[elLen:]
	}

	return nestArray(dims, flat), nil
}

// nestArray folds a flat, row-major element list into the shape described
// by dims, innermost dimension last. A single-dimension array returns
// ArrayValue(flat) unchanged; each additional dimension wraps the previous
// level's results into groups of the outer dimension's stride.
func nestArray(dims []int32, flat []Value) Value {
	if len(dims) == 1 {
		return ArrayValue(flat)
	}
	stride := 1
	for _, d := range dims[1:] {
		stride *= int(d)
	}
	groups := make([]Value, dims[0])
	for i := range groups {
		groups[i] = nestArray(dims[1:], flat[i*stride:(i+1)*stride])
	}
	return ArrayValue(groups)
}

// encodeArray writes the generic array wire layout for elemOID-typed
// elements. The elements may themselves be nested array Values (built by
// ArrayValue of ArrayValues) to describe a multi-dimensional, rectangular
// array; every dimension uses lower bound 1.
func encodeArray(reg *Registry, arrayOID, elemOID uint32, elems []Value) ([]byte, error) {
	dims, flat, err := arrayShape(arrayOID, elems)
	if err != nil {
		return nil, err
	}

	hasNull := int32(0)
	for _, el := range flat {
		if el.IsNull() {
			hasNull = 1
			break
		}
	}

	buf := make([]byte, 0, 12+len(dims)*8+len(flat)*8)
	buf = wireio.AppendInt32(buf, int32(len(dims)))
	buf = wireio.AppendInt32(buf, hasNull)
	buf = wireio.AppendUint32(buf, elemOID)
	for _, d := range dims {
		buf = wireio.AppendInt32(buf, d)
		buf = wireio.AppendInt32(buf, 1) // lower bound
	}

	for _, el := range flat {
		if el.IsNull() {
			buf = wireio.AppendInt32(buf, -1)
			continue
		}
		enc, err := EncodeValue(reg, elemOID, el)
		if err != nil {
			return nil, err
		}
		buf = wireio.AppendInt32(buf, int32(len(enc)))
		buf = append(buf, enc...)
	}
	return buf, nil
}

// arrayShape walks elems, which is either a flat leaf level (every element
// a scalar or NULL) or a nested level (every element itself an array
// Value), and returns the dimensions it found together with the leaf
// elements flattened in row-major order. It rejects ragged shapes: every
// sub-array at a given depth must agree on its dimensions.
func arrayShape(arrayOID uint32, elems []Value) (dims []int32, flat []Value, err error) {
	if len(elems) == 0 {
		return []int32{0}, nil, nil
	}

	nested := false
	for _, el := range elems {
		if el.Kind() == KindArray {
			nested = true
			break
		}
	}
	if !nested {
		return []int32{int32(len(elems))}, elems, nil
	}

	var innerDims []int32
	flat = make([]Value, 0, len(elems))
	for i, el := range elems {
		sub, subErr := el.Array()
		if subErr != nil {
			return nil, nil, newTypeError(arrayOID, "array: element %d is not a sub-array at a nested dimension", i)
		}
		subDims, subFlat, subErr := arrayShape(arrayOID, sub)
		if subErr != nil {
			return nil, nil, subErr
		}
		if i == 0 {
			innerDims = subDims
		} else if !equalDims(innerDims, subDims) {
			return nil, nil, newTypeError(arrayOID, "array: ragged dimensions, sub-array %d has shape %v, expected %v", i, subDims, innerDims)
		}
		flat = append(flat, subFlat...)
	}

	return append([]int32{int32(len(elems))}, innerDims...), flat, nil
}

func equalDims(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
