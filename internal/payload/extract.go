// Package payload decodes response envelopes into row collections.
package payload

import (
	"github.com/tidwall/gjson"

	"github.com/livetable/livetable/internal/row"
)

// DefaultField is the envelope field holding the row collection.
const DefaultField = "data"

// Extract pulls the row collection out of a raw JSON response body.
// The field is a gjson path (dotted paths reach nested envelopes); an
// empty field means the body itself is the collection. Anything other
// than an array of objects yields a StructuralError.
func Extract(body []byte, field string) (row.Collection, error) {
	if !gjson.ValidBytes(body) {
		return nil, row.NewStructuralError("response is not valid JSON")
	}

	var res gjson.Result
	if field == "" {
		res = gjson.ParseBytes(body)
	} else {
		res = gjson.GetBytes(body, field)
		if !res.Exists() {
			return nil, row.NewStructuralError("response has no %q field", field)
		}
	}

	if !res.IsArray() {
		return nil, row.NewStructuralError("field %q is not a sequence", field)
	}

	elems := res.Array()
	rows := make(row.Collection, 0, len(elems))
	for i, el := range elems {
		if !el.IsObject() {
			return nil, row.NewStructuralError("element %d is not a record", i)
		}
		m, ok := el.Value().(map[string]any)
		if !ok {
			return nil, row.NewStructuralError("element %d is not a record", i)
		}
		rows = append(rows, row.Row(m))
	}
	return rows, nil
}
