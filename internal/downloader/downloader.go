package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Downloader performs the network requests of listings and per-item extractors.
// It is handed to every component that needs the network.
type Downloader interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Request is one HTTP request. An empty Method means GET.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Cookies map[string]string
	Body    []byte
}

func NewGet(url string) *Request {
	return &Request{Method: http.MethodGet, URL: url}
}

func NewPost(url string, body []byte) *Request {
	return &Request{Method: http.MethodPost, URL: url, Body: body}
}

// WithHeader sets a header and returns the request
func (r *Request) WithHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// FinalURL is the URL after redirects
	FinalURL string
}

func (r *Response) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

var ErrRateLimited = errors.New("rate limited")

// HTTPError is an unexpected response status
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Is reports 429 responses as ErrRateLimited
func (e *HTTPError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// ValidateResponseCode returns an *HTTPError for 4xx and 5xx responses
func ValidateResponseCode(resp *Response, url string) error {
	if resp == nil {
		return fmt.Errorf("no response for %s", url)
	}
	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}

// Get executes a GET request and validates the status
func Get(ctx context.Context, d Downloader, url string, headers map[string]string) (*Response, error) {
	req := NewGet(url)
	req.Headers = headers
	return execute(ctx, d, req)
}

// Post executes a POST request with a JSON body and validates the status
func Post(ctx context.Context, d Downloader, url string, body []byte, headers map[string]string) (*Response, error) {
	req := NewPost(url, body)
	req.Headers = headers
	if _, ok := req.Headers["Content-Type"]; !ok {
		req.WithHeader("Content-Type", "application/json")
	}
	return execute(ctx, d, req)
}

func execute(ctx context.Context, d Downloader, req *Request) (*Response, error) {
	resp, err := d.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateResponseCode(resp, req.URL); err != nil {
		return nil, err
	}
	return resp, nil
}
