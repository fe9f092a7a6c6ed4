package row

import (
	"fmt"
	"strconv"
)

// Row is a single schema-free record as decoded from a JSON payload.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Key returns the string form of the row's key field value.
// The second return is false when the field is absent or null.
func (r Row) Key(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return KeyString(v), true
}

// Collection is an ordered sequence of rows.
type Collection []Row

// Clone returns a copy of the collection with cloned rows.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, r := range c {
		out[i] = r.Clone()
	}
	return out
}

// KeyString converts a key field value to its canonical string form.
// JSON numbers decode as float64; integral values render without a
// fractional part so that 42 and 42.0 index under the same key.
func KeyString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
