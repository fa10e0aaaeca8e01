package downloader

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Transport adapts a Downloader to an http.RoundTripper so that libraries which own their
// http.Client, like colly, share its rate limit and retries
type Transport struct {
	Downloader Downloader
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	req := &Request{
		Method:  r.Method,
		URL:     r.URL.String(),
		Headers: make(map[string]string, len(r.Header)),
	}
	for k, values := range r.Header {
		sep := ", "
		if k == "Cookie" {
			sep = "; "
		}
		req.Headers[k] = strings.Join(values, sep)
	}
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		req.Body = body
	}

	resp, err := t.Downloader.Execute(r.Context(), req)
	if err != nil {
		return nil, err
	}

	header := resp.Headers
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       r,
	}, nil
}
