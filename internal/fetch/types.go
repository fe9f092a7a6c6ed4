// Package fetch defines the network boundary of the poller: a minimal
// fetcher contract and the failure taxonomy callers gate policy on.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Category classifies a fetch failure.
type Category string

const (
	// Network covers connection and HTTP-level errors.
	Network Category = "network"
	// Timeout covers deadline-exceeded failures.
	Timeout Category = "timeout"
	// Malformed covers responses that cannot be decoded into rows.
	Malformed Category = "malformed"
	// Cancelled covers client-initiated aborts.
	Cancelled Category = "cancelled"
	// Unknown covers everything else.
	Unknown Category = "unknown"
)

// Categories lists every recognized failure category.
var Categories = []Category{Network, Timeout, Malformed, Cancelled, Unknown}

// ParseCategory maps a string to a known category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown failure category: %q", s)
}

// CategorySet is a set of failure categories.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	set := make(CategorySet, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the category is in the set.
func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// String renders the set as a sorted comma list.
func (s CategorySet) String() string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Failure is a classified fetch error.
type Failure struct {
	Category Category
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("fetch failed (%s): %s", f.Category, f.Message)
	}
	return fmt.Sprintf("fetch failed (%s)", f.Category)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure wrapping err.
func NewFailure(cat Category, err error) *Failure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Failure{Category: cat, Message: msg, Err: err}
}

// Fetcher is the sole network boundary the poller depends on. Fetch
// blocks until the request resolves or ctx is cancelled; cancellation
// via ctx is the best-effort abort mechanism.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}
