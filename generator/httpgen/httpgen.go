// Package httpgen is a generator client for a model inference server that
// speaks JSON over HTTP.
//
// Request:  POST <endpoint> {"inputs": [[1,2,3], ...]}
// Response: 200 {"outputs": [[4,5,6], ...]}
package httpgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// ErrStatus is returned for a non-2xx response.
var ErrStatus = errors.New("httpgen: unexpected status")

type request struct {
	Inputs [][]int `json:"inputs"`
}

type response struct {
	Outputs [][]int `json:"outputs"`
	Error   string  `json:"error,omitempty"`
}

// Client calls the inference endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	header   http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithHeader adds a request header, e.g. an authorization token.
func WithHeader(key, value string) Option {
	return func(cl *Client) { cl.header.Add(key, value) }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// New returns a client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Minute},
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateBatch sends one batch of inputs and returns one output per input.
func (c *Client) GenerateBatch(ctx context.Context, inputs [][]int) ([][]int, error) {
	body, err := json.Marshal(request{Inputs: inputs})
	if err != nil {
		return nil, fmt.Errorf("httpgen: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpgen: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpgen: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpgen: read response: %w", err)
	}

	var out response
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = json.Unmarshal(data, &out)
		if out.Error != "" {
			return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("httpgen: decode: %w", err)
	}
	return out.Outputs, nil
}
