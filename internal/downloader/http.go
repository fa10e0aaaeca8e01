package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config holds the HTTPDownloader settings
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	UserAgent      string
	AcceptLanguage string
	ProxyURL       string
	// RateLimit is requests per second, 0 means unlimited
	RateLimit float64
	RateBurst int
	// MaxBodySize caps the bytes read per response
	MaxBodySize int64
}

// HTTPDownloader is a Downloader over net/http with rate limiting and retries
type HTTPDownloader struct {
	client  *http.Client
	limiter *rate.Limiter
	config  Config
	log     *logrus.Entry
}

func NewHTTPDownloader(cfg Config, log *logrus.Entry) (*HTTPDownloader, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0"
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = "en-US,en;q=0.9"
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 32 << 20
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &HTTPDownloader{
		client:  &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter: rate.NewLimiter(limit, cfg.RateBurst),
		config:  cfg,
		log:     logger.OrNop(log),
	}, nil
}

// Execute sends req, retrying transport errors and 5xx responses with a linear backoff.
// Other statuses are returned as they are, ValidateResponseCode decides what is an error.
func (d *HTTPDownloader) Execute(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*d.config.RetryDelay); err != nil {
				return nil, err
			}
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := d.do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			d.log.WithError(err).WithField("attempt", attempt+1).Warnf("Request to %s failed", req.URL)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = &HTTPError{StatusCode: resp.StatusCode, URL: req.URL}
			d.log.WithField("attempt", attempt+1).Warnf("Server error %d from %s", resp.StatusCode, req.URL)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request %s after %d attempts: %w", req.URL, d.config.MaxRetries+1, lastErr)
}

func (d *HTTPDownloader) do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", d.config.UserAgent)
	httpReq.Header.Set("Accept-Language", d.config.AcceptLanguage)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if len(req.Cookies) > 0 {
		httpReq.Header.Set("Cookie", CookieHeader(req.Cookies))
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.config.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// CookieHeader renders cookies as a single Cookie header value, sorted by name
func CookieHeader(cookies map[string]string) string {
	parts := make([]string, 0, len(cookies))
	for k, v := range cookies {
		parts = append(parts, (&http.Cookie{Name: k, Value: v}).String())
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable reports whether err is worth retrying later, i.e. a rate limit or server error
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode >= 500
}
