// Package endpointtest provides test helpers for routes published with the
// endpoint package.
package endpointtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Client wraps an httptest.Server for convenient route testing.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h. It is closed when the test ends.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a fully read response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// MediaType returns the Content-Type without parameters.
func (r *Response) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	if err != nil {
		return r.Headers.Get("Content-Type")
	}
	return mt
}

// Decode unmarshals a JSON response body into T.
func Decode[T any](t testing.TB, r *Response) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(r.Body, &v); err != nil {
		t.Fatalf("endpointtest: decode body %q: %v", r.Body, err)
	}
	return v
}

// Get sends a GET request.
func (c *Client) Get(t testing.TB, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil, nil)
}

// PostJSON sends a POST request with body encoded as JSON.
func (c *Client) PostJSON(t testing.TB, path string, body any) *Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("endpointtest: marshal request body: %v", err)
	}
	return c.Do(t, http.MethodPost, path, bytes.NewReader(b), http.Header{"Content-Type": {"application/json"}})
}

// Do sends a request and reads the whole response.
func (c *Client) Do(t testing.TB, method, path string, body io.Reader, header http.Header) *Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("endpointtest: create request: %v", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("endpointtest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("endpointtest: close body: %v", closeErr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("endpointtest: read body: %v", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}
}
