package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			t.Errorf("params not forwarded: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL, "GET", url.Values{"page": {"1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(body) != `{"data":[]}` {
		t.Errorf("body = %s", body)
	}
}

func TestHTTPFetcherBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL, "GET", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.Fetch(context.Background())
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Category != Network {
		t.Errorf("category = %s, want network", failure.Category)
	}
}

func TestHTTPFetcherCancelled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f, err := NewHTTPFetcher(srv.URL, "GET", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = f.Fetch(ctx)
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Category != Cancelled {
		t.Errorf("category = %s, want cancelled", failure.Category)
	}
}

func TestNewHTTPFetcherValidation(t *testing.T) {
	if _, err := NewHTTPFetcher("ftp://example.com", "GET", nil); err == nil {
		t.Error("expected error for unsupported scheme")
	}
	if _, err := NewHTTPFetcher("://bad", "GET", nil); err == nil {
		t.Error("expected error for unparsable url")
	}
}
