// Package http is a fluent, retrying client for outgoing JSON calls.
//
//	resp, err := http.Post(url).
//		WithContext(ctx).
//		Bearer(key).
//		Body(payload).
//		Retry(3, 200*time.Millisecond).
//		Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

// DefaultClient is shared by every request. Tests swap its Transport.
var DefaultClient = &gohttp.Client{
	Transport: &gohttp.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Request is a fluent request builder.
type Request struct {
	ctx       context.Context
	method    string
	url       string
	headers   gohttp.Header
	body      interface{}
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	return &Request{
		ctx:       context.Background(),
		method:    method,
		url:       url,
		headers:   h,
		timeout:   10 * time.Second,
		attempts:  1,
		retryWait: 250 * time.Millisecond,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets a value that is sent as JSON.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the first backoff, which
// doubles after each failure.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

// WithContext ties the request to ctx. The request id found in ctx is
// forwarded.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	if id := reqid.FromCtx(ctx); id != "" {
		r.headers.Set(reqid.Header, id)
	}
	return r
}

// Send executes the request. Transport errors and 5xx responses are retried;
// other responses are returned as is.
func (r *Request) Send() (*Response, error) {
	payload, err := r.encode()
	if err != nil {
		return nil, err
	}

	wait := r.retryWait
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.do(payload)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("http: %s %s: status %d", r.method, r.url, resp.StatusCode)
		default:
			return resp, nil
		}
		if attempt == r.attempts {
			break
		}
		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait.String(), "error", lastErr)
		select {
		case <-time.After(wait):
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		}
		wait *= 2
	}
	return nil, fmt.Errorf("http: %d attempt(s) failed for %s %s: %w", r.attempts, r.method, r.url, lastErr)
}

func (r *Request) encode() ([]byte, error) {
	if r.body == nil {
		return nil, nil
	}
	b, err := json.Marshal(r.body)
	if err != nil {
		return nil, fmt.Errorf("http: marshal body: %w", err)
	}
	return b, nil
}

func (r *Request) do(payload []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	req.Header = r.headers.Clone()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// JSON decodes the body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw returns an error for non-2xx responses.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: unexpected status %d: %s", r.StatusCode, bytes.TrimSpace(r.Raw))
	}
	return nil
}
