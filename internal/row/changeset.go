package row

import "github.com/wI2L/jsondiff"

// ChangeSet partitions the difference between two collections into
// created, updated and deleted rows. A nil *ChangeSet is the "no
// changes" result of Reconcile, not an error.
type ChangeSet struct {
	// Created holds rows present only in the current collection, in the
	// current collection's relative order.
	Created Collection

	// Deleted holds key strings present only in the previous collection.
	Deleted []string

	// Updated maps key strings to the current row for keys present in
	// both collections with differing content.
	Updated map[string]Row

	// Deltas carries an RFC 6902 patch per updated key, describing how
	// the previous row became the current one.
	Deltas map[string]jsondiff.Patch
}

// Empty reports whether the change set carries no work.
func (cs *ChangeSet) Empty() bool {
	if cs == nil {
		return true
	}
	return len(cs.Created) == 0 && len(cs.Deleted) == 0 && len(cs.Updated) == 0
}

// Size returns the total number of affected rows.
func (cs *ChangeSet) Size() int {
	if cs == nil {
		return 0
	}
	return len(cs.Created) + len(cs.Deleted) + len(cs.Updated)
}
