package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/livetable/livetable/internal/row"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type netErr struct{}

func (netErr) Error() string   { return "connection refused" }
func (netErr) Timeout() bool   { return false }
func (netErr) Temporary() bool { return false }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"deadline", context.DeadlineExceeded, Timeout},
		{"cancelled", context.Canceled, Cancelled},
		{"wrapped cancelled", fmt.Errorf("doing request: %w", context.Canceled), Cancelled},
		{"structural", row.NewStructuralError("not a sequence"), Malformed},
		{"json syntax", &json.SyntaxError{}, Malformed},
		{"net timeout", timeoutErr{}, Timeout},
		{"net other", netErr{}, Network},
		{"unknown", errors.New("boom"), Unknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Classify(tc.err)
			if f == nil {
				t.Fatal("expected a failure")
			}
			if f.Category != tc.want {
				t.Errorf("category = %s, want %s", f.Category, tc.want)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if f := Classify(nil); f != nil {
		t.Errorf("Classify(nil) = %v, want nil", f)
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := NewFailure(Timeout, errors.New("deadline"))
	if got := Classify(orig); got != orig {
		t.Errorf("existing failures must pass through, got %v", got)
	}
	wrapped := fmt.Errorf("tick: %w", orig)
	if got := Classify(wrapped); got != orig {
		t.Errorf("wrapped failures must unwrap, got %v", got)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(" Timeout "); err != nil || c != Timeout {
		t.Errorf("ParseCategory = %v, %v", c, err)
	}
	if _, err := ParseCategory("bogus"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCategorySet(t *testing.T) {
	set := NewCategorySet(Timeout, Network)
	if !set.Has(Timeout) || set.Has(Cancelled) {
		t.Errorf("set membership wrong: %v", set)
	}
	if got := set.String(); got != "network,timeout" {
		t.Errorf("String() = %q, want sorted comma list", got)
	}
}
