package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/livetable/livetable/internal/row"
)

// Classify maps an arbitrary error onto the failure taxonomy. Known
// Failure values pass through unchanged.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewFailure(Timeout, err)
	case errors.Is(err, context.Canceled):
		return NewFailure(Cancelled, err)
	}

	var structural *row.StructuralError
	var syntax *json.SyntaxError
	var unmarshal *json.UnmarshalTypeError
	if errors.As(err, &structural) || errors.As(err, &syntax) || errors.As(err, &unmarshal) {
		return NewFailure(Malformed, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewFailure(Timeout, err)
		}
		return NewFailure(Network, err)
	}

	return NewFailure(Unknown, err)
}
