package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUserAgent = "livetable/0.1"
	requestTimeout   = 15 * time.Second
)

// Ensure HTTPFetcher implements Fetcher at compile time.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches a JSON payload from an HTTP endpoint.
type HTTPFetcher struct {
	endpoint  *url.URL
	method    string
	params    url.Values
	http      *http.Client
	userAgent string
}

// NewHTTPFetcher builds a fetcher for the given endpoint URL. Params
// are appended to the query string on every request.
func NewHTTPFetcher(rawURL, method string, params url.Values) (*HTTPFetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in endpoint url", u.Scheme)
	}
	if method == "" {
		method = http.MethodGet
	}
	return &HTTPFetcher{
		endpoint: u,
		method:   strings.ToUpper(method),
		params:   params,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// URL returns the configured endpoint.
func (f *HTTPFetcher) URL() string {
	return f.endpoint.String()
}

// Fetch performs one request and returns the raw response body.
// Errors are already classified into Failure values.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	u := *f.endpoint
	if len(f.params) > 0 {
		q := u.Query()
		for k, vs := range f.params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, f.method, u.String(), nil)
	if err != nil {
		return nil, NewFailure(Unknown, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		// The transport wraps context errors; unwrap via Classify so
		// an abort surfaces as Cancelled, not Network.
		if ctx.Err() != nil {
			return nil, Classify(ctx.Err())
		}
		return nil, Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewFailure(Network, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err)
	}
	return body, nil
}
