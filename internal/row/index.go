package row

// KeyedIndex maps the string form of a row's key value to the row.
// Built fresh for every comparison, never persisted.
type KeyedIndex map[string]Row

// Index builds a KeyedIndex over the collection using the given key field.
// Duplicate key values are tolerated: the later occurrence wins. A row
// whose key field is absent or null yields a MissingKeyError.
func Index(c Collection, field string) (KeyedIndex, error) {
	idx := make(KeyedIndex, len(c))
	for i, r := range c {
		k, ok := r.Key(field)
		if !ok {
			return nil, &MissingKeyError{Field: field, Position: i}
		}
		idx[k] = r
	}
	return idx, nil
}
