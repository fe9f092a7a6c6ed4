package row

import "fmt"

// StructuralError reports a malformed collection: not a sequence, an
// element that is not a record, or a payload that cannot hold rows.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed collection: %s", e.Reason)
}

// NewStructuralError builds a StructuralError with a formatted reason.
func NewStructuralError(format string, args ...any) *StructuralError {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// MissingKeyError reports a row that lacks the configured key field.
// Position is the row's index within its collection.
type MissingKeyError struct {
	Field    string
	Position int
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("row %d has no usable %q field", e.Position, e.Field)
}
