package module

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// PagingMode names how a listing points at its next page
type PagingMode string

const (
	PagingNone    PagingMode = "none"
	PagingOffset  PagingMode = "offset"
	PagingPage    PagingMode = "page"
	PagingToken   PagingMode = "token"
	PagingNextURL PagingMode = "next_url"
	PagingIDs     PagingMode = "ids"
)

func ParsePagingMode(s string) (PagingMode, error) {
	switch mode := PagingMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return PagingNone, nil
	case PagingNone, PagingOffset, PagingPage, PagingToken, PagingNextURL, PagingIDs:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown paging mode %q", s)
	}
}

// Paging describes the continuation scheme of one listing
type Paging struct {
	Mode PagingMode `yaml:"mode"`
	// Param carries the offset, page number or token. Defaults depend on the mode.
	Param string `yaml:"param"`
	// SizeParam carries the page size, omitted when empty
	SizeParam string `yaml:"size_param"`
	Size      int    `yaml:"size"`
	StartPage int    `yaml:"start_page"`
	// TokenInBody sends the token as a JSON POST body instead of a query parameter
	TokenInBody bool `yaml:"token_in_body"`
}

// WithDefaults fills in the parameter names and sizes left empty
func (p Paging) WithDefaults() Paging {
	if p.Mode == "" {
		p.Mode = PagingNone
	}
	if p.Param == "" {
		switch p.Mode {
		case PagingOffset:
			p.Param = "start"
		case PagingPage:
			p.Param = "page"
		case PagingToken:
			p.Param = "continuation"
		}
	}
	if p.Mode == PagingOffset && p.SizeParam == "" {
		p.SizeParam = "count"
	}
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Mode == PagingPage && p.StartPage <= 0 {
		p.StartPage = 1
	}
	return p
}

// FirstURL returns the request URL of the first page
func (p Paging) FirstURL(baseURL string) (string, error) {
	params := map[string]string{}
	switch p.Mode {
	case PagingOffset:
		params[p.Param] = "0"
	case PagingPage:
		params[p.Param] = strconv.Itoa(p.StartPage)
	}
	if p.SizeParam != "" {
		params[p.SizeParam] = strconv.Itoa(p.Size)
	}
	return WithQuery(baseURL, params)
}

// WithQuery returns rawURL with params set, replacing existing values
func WithQuery(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	query := u.Query()
	for k, v := range params {
		if k == "" {
			continue
		}
		query.Set(k, v)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// OffsetContinuation returns the window after [start, start+received).
// With a known total there is more while the next start is below it; total < 0 means unknown,
// in which case only a full window implies more. It returns nil at the end.
func OffsetContinuation(baseURL string, p Paging, start, received int, total int64) (*domain.Page, error) {
	if received <= 0 {
		return nil, nil
	}
	next := start + received
	if total >= 0 {
		if int64(next) >= total {
			return nil, nil
		}
	} else if received < p.Size {
		return nil, nil
	}

	params := map[string]string{p.Param: strconv.Itoa(next)}
	if p.SizeParam != "" {
		params[p.SizeParam] = strconv.Itoa(p.Size)
	}
	u, err := WithQuery(baseURL, params)
	if err != nil {
		return nil, err
	}
	return domain.NewIDPage(u, strconv.Itoa(next)), nil
}

// PageNumberContinuation returns the page after current. With lastPage > 0 there is more
// while current is below it, otherwise only a full page implies more.
func PageNumberContinuation(baseURL string, p Paging, current, received, lastPage int) (*domain.Page, error) {
	if received <= 0 {
		return nil, nil
	}
	if lastPage > 0 {
		if current >= lastPage {
			return nil, nil
		}
	} else if received < p.Size {
		return nil, nil
	}

	next := current + 1
	params := map[string]string{p.Param: strconv.Itoa(next)}
	if p.SizeParam != "" {
		params[p.SizeParam] = strconv.Itoa(p.Size)
	}
	u, err := WithQuery(baseURL, params)
	if err != nil {
		return nil, err
	}
	return domain.NewIDPage(u, strconv.Itoa(next)), nil
}

// TokenContinuation wraps an opaque continuation token. An empty token ends the listing.
// With TokenInBody the token is set on a copy of the JSON object in body, which may be empty.
func TokenContinuation(baseURL string, p Paging, token string, body []byte) (*domain.Page, error) {
	if token == "" {
		return nil, nil
	}

	if p.TokenInBody {
		fields := map[string]any{}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &fields); err != nil {
				return nil, fmt.Errorf("decode request body: %w", err)
			}
			if fields == nil {
				fields = map[string]any{}
			}
		}
		fields[p.Param] = token

		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encode token body: %w", err)
		}
		return domain.NewIDPage(baseURL, token).WithBody(encoded), nil
	}

	u, err := WithQuery(baseURL, map[string]string{p.Param: token})
	if err != nil {
		return nil, err
	}
	return domain.NewIDPage(u, token), nil
}

// NextURLContinuation resolves a next link found in a page against base. An empty link ends the listing.
func NextURLContinuation(base *url.URL, next string) (*domain.Page, error) {
	next = strings.TrimSpace(next)
	if next == "" || strings.HasPrefix(next, "#") || strings.HasPrefix(next, "javascript:") {
		return nil, nil
	}

	ref, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("invalid next URL: %w", err)
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return domain.NewPage(ref.String()), nil
}

// IDBatches splits ids into the batch to fetch now and a continuation holding the rest
func IDBatches(ids []string, size int) ([]string, *domain.Page) {
	if size <= 0 || len(ids) <= size {
		return ids, nil
	}
	return ids[:size], domain.NewIDsPage(ids[size:])
}

// NextIDBatch takes the next batch out of an id continuation
func NextIDBatch(page *domain.Page, size int) ([]string, *domain.Page) {
	if page == nil {
		return nil, nil
	}
	return IDBatches(page.IDs, size)
}

// PageOffset returns the numeric position a continuation points at, or fallback for the first page
func PageOffset(page *domain.Page, fallback int) int {
	if page == nil || page.ID == "" {
		return fallback
	}
	n, err := strconv.Atoi(page.ID)
	if err != nil {
		return fallback
	}
	return n
}
