package pgtype

import (
	"fmt"
	"reflect"
)

// Row is the dynamic row shape (§5): a decoded row paired with the column
// names and OIDs from its RowDescription, addressable by either position or
// name. A zero-value Row has no columns.
type Row struct {
	names  []string
	oids   []uint32
	values []Value
}

// NewRow builds a Row from parallel names/oids/values slices, as produced by
// the command/result-set layer from a DataRow plus its RowDescription.
func NewRow(names []string, oids []uint32, values []Value) Row {
	return Row{names: names, oids: oids, values: values}
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.values) }

// Index returns the value at position i (0-based).
func (r Row) Index(i int) Value { return r.values[i] }

// OID returns the column type OID at position i.
func (r Row) OID(i int) uint32 { return r.oids[i] }

// Name returns the column name at position i.
func (r Row) Name(i int) string { return r.names[i] }

// ByName returns the value of the first column with the given name. When a
// query duplicates a column name (a self-join, an unaliased computed
// column), the first occurrence wins, matching the source's
// first-match-on-duplicate-names behavior.
func (r Row) ByName(name string) (Value, bool) {
	return r.Get(name, 0)
}

// Values returns every column value in the row, in positional order.
func (r Row) Values() []Value { return r.values }

// Get returns the value of the occurrence-th column (0-based) named name,
// so a query that duplicates a column name can still reach the second or
// later instance instead of always getting the first.
func (r Row) Get(name string, occurrence int) (Value, bool) {
	seen := 0
	for i, n := range r.names {
		if n != name {
			continue
		}
		if seen == occurrence {
			return r.values[i], true
		}
		seen++
	}
	return Value{}, false
}

// RowScanner is implemented by a type that wants full control over how it
// reads itself out of a Row, analogous to sql.Scanner.
type RowScanner interface {
	ScanRow(r Row) error
}

// RowTo decodes a single-column row (the "scalar" shape, §5) into T using
// Value.Any() and a best-effort type assertion. It is the generic
// equivalent of scanning a single SELECT expression.
func RowTo[T any](r Row) (T, error) {
	var zero T
	if r.Len() != 1 {
		return zero, fmt.Errorf("pgtype: RowTo expects exactly 1 column, row has %d", r.Len())
	}
	return convertValue[T](r.values[0])
}

// RowToStructByPos decodes a fixed-arity row (§5) into a struct T by
// matching row columns to T's exported fields in declared order, ignoring
// field names. The row must have exactly as many columns as T has exported
// fields.
func RowToStructByPos[T any](r Row) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("pgtype: RowToStructByPos requires a struct type, got %s", rv.Kind())
	}

	rt := rv.Type()
	col := 0
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if col >= r.Len() {
			return out, fmt.Errorf("pgtype: struct has more exported fields than row has columns (%d)", r.Len())
		}
		if err := assignField(rv.Field(i), r.values[col]); err != nil {
			return out, fmt.Errorf("pgtype: field %s: %w", f.Name, err)
		}
		col++
	}
	if col != r.Len() {
		return out, fmt.Errorf("pgtype: row has %d columns but struct has %d exported fields", r.Len(), col)
	}
	return out, nil
}

func convertValue[T any](v Value) (T, error) {
	var zero T
	any0 := any(zero)
	want := reflect.TypeOf(any0)

	if v.IsNull() {
		if want == nil || isNilable(want) {
			return zero, nil
		}
		return zero, fmt.Errorf("pgtype: cannot scan NULL into %T", zero)
	}

	native := v.Any()
	rv := reflect.ValueOf(native)
	target := reflect.ValueOf(&zero).Elem()

	if want != nil && rv.Type().AssignableTo(want) {
		target.Set(rv)
		return zero, nil
	}
	if want != nil && rv.Type().ConvertibleTo(want) {
		target.Set(rv.Convert(want))
		return zero, nil
	}
	return zero, fmt.Errorf("pgtype: cannot scan %s into %T", v.Kind(), zero)
}

func assignField(field reflect.Value, v Value) error {
	if v.IsNull() {
		if isNilable(field.Type()) {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		return fmt.Errorf("cannot assign NULL to %s", field.Type())
	}

	switch v.Kind() {
	case KindComposite:
		if field.Kind() == reflect.Struct {
			fields, _ := v.Composite()
			return assignCompositeToStruct(field, fields)
		}
	case KindArray:
		if field.Kind() == reflect.Slice {
			elems, _ := v.Array()
			return assignArrayToSlice(field, elems)
		}
	}

	native := v.Any()
	rv := reflect.ValueOf(native)
	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case rv.Type().ConvertibleTo(field.Type()):
		field.Set(rv.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", v.Kind(), field.Type())
	}
	return nil
}

// assignCompositeToStruct maps a decoded composite's fields onto dst's
// exported fields by position, the same convention RowToStructByPos uses
// at the row level, so a nested ROW(...) can land in a nested struct field.
func assignCompositeToStruct(dst reflect.Value, fields []Value) error {
	t := dst.Type()
	col := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if col >= len(fields) {
			return fmt.Errorf("struct %s has more exported fields than composite has fields (%d)", t, len(fields))
		}
		if err := assignField(dst.Field(i), fields[col]); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		col++
	}
	if col != len(fields) {
		return fmt.Errorf("composite has %d fields but struct %s has %d exported fields", len(fields), t, col)
	}
	return nil
}

// assignArrayToSlice decodes a (possibly multi-dimensional) array Value
// into dst, growing it to the outer dimension's length and recursing into
// each element, so ARRAY[ROW(...), ...] can land in a []Struct field and
// ARRAY[[1,2],[3,4]] can land in a [][]int field.
func assignArrayToSlice(dst reflect.Value, elems []Value) error {
	out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
	for i, el := range elems {
		if err := assignField(out.Index(i), el); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
