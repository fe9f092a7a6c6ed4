package row

import "github.com/wI2L/jsondiff"

// Reconcile compares two collections by the given key field and returns
// the minimal change set transforming previous into current. A nil
// change set (with nil error) means the collections are equivalent;
// callers must treat that as the normal, frequent case.
func Reconcile(previous, current Collection, field string) (*ChangeSet, error) {
	prevIdx, err := Index(previous, field)
	if err != nil {
		return nil, err
	}
	curIdx, err := Index(current, field)
	if err != nil {
		return nil, err
	}

	cs := &ChangeSet{
		Updated: make(map[string]Row),
		Deltas:  make(map[string]jsondiff.Patch),
	}

	for k, prevRow := range prevIdx {
		curRow, ok := curIdx[k]
		if !ok {
			cs.Deleted = append(cs.Deleted, k)
			continue
		}
		patch, err := jsondiff.Compare(prevRow, curRow)
		if err != nil || len(patch) > 0 {
			cs.Updated[k] = curRow
			if err == nil {
				cs.Deltas[k] = patch
			}
		}
	}

	// Preserve current's ordering among created rows. Duplicate keys
	// within current collapse to the last occurrence, mirroring the
	// index semantics.
	seen := make(map[string]int)
	for _, curRow := range current {
		k, _ := curRow.Key(field)
		if _, ok := prevIdx[k]; ok {
			continue
		}
		if pos, dup := seen[k]; dup {
			cs.Created[pos] = curIdx[k]
			continue
		}
		seen[k] = len(cs.Created)
		cs.Created = append(cs.Created, curIdx[k])
	}

	if cs.Empty() {
		return nil, nil
	}
	return cs, nil
}

// Equal reports structural equality of two JSON values. Object member
// order is irrelevant; array order matters. Values that cannot be
// marshalled are never equal.
func Equal(a, b any) bool {
	patch, err := jsondiff.Compare(a, b)
	if err != nil {
		return false
	}
	return len(patch) == 0
}
