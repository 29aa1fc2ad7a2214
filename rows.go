package pgwire

import "github.com/kanzidb/pgwire/pgtype"

// CollectRows drains rs, applying fn to each row, and returns the collected
// slice once rs.Next() returns false. It does not call rs.Close(); callers
// still own that (directly, or via a defer set up before calling
// CollectRows).
func CollectRows[T any](rs *ResultSet, fn func(pgtype.Row) (T, error)) ([]T, error) {
	var out []T
	for rs.Next() {
		row, err := rs.CurrentRow()
		if err != nil {
			return nil, err
		}
		v, err := fn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEachRow drains rs, calling fn for each row's side effect rather than
// accumulating a slice.
func ForEachRow(rs *ResultSet, fn func(pgtype.Row) error) error {
	for rs.Next() {
		row, err := rs.CurrentRow()
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rs.Err()
}
