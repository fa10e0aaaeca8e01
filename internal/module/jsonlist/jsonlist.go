package jsonlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/project-tktt/go-extractor/internal/common/collector"
	"github.com/project-tktt/go-extractor/internal/common/extractor"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/common/normalizer"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	KindStream   = "stream"
	KindChannel  = "channel"
	KindPlaylist = "playlist"
	KindComment  = "comment"
	KindMixed    = "mixed"
)

// Config describes a JSON endpoint that lists items
type Config struct {
	Name      string
	ServiceID int
	URL       string
	// Method is GET or POST. POST sends Body on the first page and Body with the token set afterwards.
	Method  string
	Headers map[string]string
	Body    string
	// Kind is stream, channel, playlist, comment or mixed
	Kind string
	// ItemsPath locates the item array, empty when the response itself is an array
	ItemsPath string
	// KindPath and Kinds map an item's discriminator value to a kind in mixed listings
	KindPath string
	Kinds    map[string]string
	// TotalPath and LastPagePath bound offset and page paging
	TotalPath    string
	LastPagePath string
	// NextPath locates the continuation token or next URL
	NextPath string
	// IDsPath lists every id of an ids-paged listing; BatchURL fetches a batch with {ids} replaced
	IDsPath  string
	BatchURL string
	Paging   module.Paging
	Fields   extractor.Fields
	// Expand fills placeholders such as {client_id} in the URL, headers and body at request time
	Expand func(string) string
}

// Listing fetches and decodes the pages of one JSON endpoint
type Listing struct {
	config Config
	paging module.Paging
	dl     downloader.Downloader
	log    *logrus.Entry
	now    func() time.Time
}

func newListing(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*Listing, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("listing %s: url is required", cfg.Name)
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("listing %s: invalid url: %w", cfg.Name, err)
	}
	if _, err := module.ParsePagingMode(string(cfg.Paging.Mode)); err != nil {
		return nil, fmt.Errorf("listing %s: %w", cfg.Name, err)
	}
	if cfg.Paging.Mode == module.PagingIDs && (cfg.IDsPath == "" || cfg.BatchURL == "") {
		return nil, fmt.Errorf("listing %s: ids paging needs ids path and batch url", cfg.Name)
	}

	return &Listing{
		config: cfg,
		paging: cfg.Paging.WithDefaults(),
		dl:     dl,
		log:    logger.OrNop(log).WithField("listing", cfg.Name),
		now:    time.Now,
	}, nil
}

// New builds the listing for cfg.Kind, exposed as a listing of items
func New(cfg Config, dl downloader.Downloader, log *logrus.Entry) (module.ListExtractor[domain.Item], error) {
	switch strings.ToLower(cfg.Kind) {
	case KindStream, "":
		l, err := NewStreams(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return module.Widen[*domain.StreamItem](l), nil
	case KindChannel:
		l, err := NewChannels(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return module.Widen[*domain.ChannelItem](l), nil
	case KindPlaylist:
		l, err := NewPlaylists(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return module.Widen[*domain.PlaylistItem](l), nil
	case KindComment:
		l, err := NewComments(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return module.Widen[*domain.CommentItem](l), nil
	case KindMixed:
		l, err := NewMixed(cfg, dl, log)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("listing %s: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

func NewStreams(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[*domain.StreamItem, extractor.StreamItemExtractor], error) {
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	fetch := fetchWith(l, func(it *extractor.JSONItem) (extractor.StreamItemExtractor, bool) { return it, true })
	return module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.StreamItem, extractor.StreamItemExtractor] {
		return collector.NewStreamCollector(cfg.ServiceID)
	}, log), nil
}

func NewChannels(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[*domain.ChannelItem, extractor.ChannelItemExtractor], error) {
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	fetch := fetchWith(l, func(it *extractor.JSONItem) (extractor.ChannelItemExtractor, bool) { return it, true })
	return module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.ChannelItem, extractor.ChannelItemExtractor] {
		return collector.NewChannelCollector(cfg.ServiceID)
	}, log), nil
}

func NewPlaylists(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[*domain.PlaylistItem, extractor.PlaylistItemExtractor], error) {
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	fetch := fetchWith(l, func(it *extractor.JSONItem) (extractor.PlaylistItemExtractor, bool) { return it, true })
	return module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.PlaylistItem, extractor.PlaylistItemExtractor] {
		return collector.NewPlaylistCollector(cfg.ServiceID)
	}, log), nil
}

func NewComments(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[*domain.CommentItem, extractor.CommentItemExtractor], error) {
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	fetch := fetchWith(l, func(it *extractor.JSONItem) (extractor.CommentItemExtractor, bool) { return it, true })
	return module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[*domain.CommentItem, extractor.CommentItemExtractor] {
		return collector.NewCommentCollector(cfg.ServiceID)
	}, log), nil
}

// NewMixed builds a listing whose items are streams, channels or playlists told apart by KindPath.
// Items of other kinds, such as shelves or headers, are skipped.
func NewMixed(cfg Config, dl downloader.Downloader, log *logrus.Entry) (*module.Paginated[domain.Item, extractor.Tagged], error) {
	if cfg.KindPath == "" {
		return nil, fmt.Errorf("listing %s: mixed kind needs a kind path", cfg.Name)
	}
	l, err := newListing(cfg, dl, log)
	if err != nil {
		return nil, err
	}
	fetch := fetchWith(l, l.tag)
	return module.NewPaginated(cfg.Name, fetch, func() collector.ItemCollector[domain.Item, extractor.Tagged] {
		return collector.NewMultiCollector(cfg.ServiceID)
	}, log), nil
}

func (l *Listing) tag(it *extractor.JSONItem) (extractor.Tagged, bool) {
	value, _ := normalizer.LookupString(it.Raw(), l.config.KindPath)
	kind := value
	if mapped, ok := l.config.Kinds[value]; ok {
		kind = mapped
	}

	switch strings.ToLower(kind) {
	case KindStream:
		return extractor.Stream(it), true
	case KindChannel:
		return extractor.Channel(it), true
	case KindPlaylist:
		return extractor.Playlist(it), true
	default:
		l.log.Debugf("Skipping item of kind %q", value)
		return nil, false
	}
}

// fetchWith turns the raw page fetch into a FetchFunc wrapping every object with wrap
func fetchWith[E any](l *Listing, wrap func(*extractor.JSONItem) (E, bool)) module.FetchFunc[E] {
	return func(ctx context.Context, page *domain.Page) ([]E, *domain.Page, error) {
		objects, base, next, err := l.fetch(ctx, page)
		if err != nil {
			return nil, nil, err
		}
		now := l.now()
		extractors := make([]E, 0, len(objects))
		for _, obj := range objects {
			if e, ok := wrap(extractor.NewJSONItem(obj, &l.config.Fields, base, now)); ok {
				extractors = append(extractors, e)
			}
		}
		return extractors, next, nil
	}
}

// fetch requests one page and returns its item objects, the URL they resolve against and the continuation
func (l *Listing) fetch(ctx context.Context, page *domain.Page) ([]map[string]any, *url.URL, *domain.Page, error) {
	if l.paging.Mode == module.PagingIDs {
		return l.fetchIDs(ctx, page)
	}

	reqURL, err := l.requestURL(page)
	if err != nil {
		return nil, nil, nil, err
	}
	data, base, err := l.get(ctx, reqURL, l.requestBody(page), pageCookies(page))
	if err != nil {
		return nil, nil, nil, err
	}

	objects := l.items(data)
	next, err := l.continuation(page, data, base, len(objects))
	if err != nil {
		return nil, nil, nil, err
	}
	return objects, base, next, nil
}

// fetchIDs reads the id list on the first page and fetches items batch by batch
func (l *Listing) fetchIDs(ctx context.Context, page *domain.Page) ([]map[string]any, *url.URL, *domain.Page, error) {
	var batch []string
	var rest *domain.Page

	if page == nil {
		data, _, err := l.get(ctx, l.expand(l.config.URL), l.requestBody(nil), nil)
		if err != nil {
			return nil, nil, nil, err
		}
		ids := lookupStrings(data, l.config.IDsPath)
		if len(ids) == 0 {
			return nil, nil, nil, nil
		}
		batch, rest = module.IDBatches(ids, l.paging.Size)
	} else {
		batch, rest = module.NextIDBatch(page, l.paging.Size)
	}

	batchURL := strings.ReplaceAll(l.expand(l.config.BatchURL), "{ids}", url.QueryEscape(strings.Join(batch, ",")))
	data, base, err := l.get(ctx, batchURL, nil, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return l.items(data), base, rest, nil
}

func (l *Listing) expand(s string) string {
	if l.config.Expand == nil {
		return s
	}
	return l.config.Expand(s)
}

func (l *Listing) requestURL(page *domain.Page) (string, error) {
	if page != nil {
		return page.URL, nil
	}
	return l.paging.FirstURL(l.expand(l.config.URL))
}

func (l *Listing) requestBody(page *domain.Page) []byte {
	if page != nil && len(page.Body) > 0 {
		return page.Body
	}
	if page == nil && l.config.Body != "" {
		return []byte(l.expand(l.config.Body))
	}
	return nil
}

func (l *Listing) get(ctx context.Context, reqURL string, body []byte, cookies map[string]string) (map[string]any, *url.URL, error) {
	req := &downloader.Request{
		Method:  http.MethodGet,
		URL:     reqURL,
		Headers: map[string]string{"Accept": "application/json"},
		Cookies: cookies,
	}
	if strings.EqualFold(l.config.Method, http.MethodPost) || len(body) > 0 {
		req.Method = http.MethodPost
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}
	for k, v := range l.config.Headers {
		req.Headers[k] = l.expand(v)
	}

	resp, err := l.dl.Execute(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if err := downloader.ValidateResponseCode(resp, reqURL); err != nil {
		return nil, nil, err
	}

	var decoded any
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, nil, domain.WrapParsingError("response", fmt.Errorf("parse json: %w", err))
	}

	var data map[string]any
	switch v := decoded.(type) {
	case map[string]any:
		data = v
	case []any:
		data = map[string]any{"": v}
	default:
		return nil, nil, domain.NewParsingError("response", "unexpected json %T", decoded)
	}

	base, err := url.Parse(lo.Ternary(resp.FinalURL != "", resp.FinalURL, reqURL))
	if err != nil {
		return nil, nil, fmt.Errorf("parse url: %w", err)
	}
	return data, base, nil
}

// items returns the objects of the item array, skipping anything that is not an object
func (l *Listing) items(data map[string]any) []map[string]any {
	var raw any
	if l.config.ItemsPath == "" {
		raw = data[""]
	} else {
		raw, _ = normalizer.GetPath(data, l.config.ItemsPath)
	}
	arr, _ := raw.([]any)
	return lo.FilterMap(arr, func(v any, _ int) (map[string]any, bool) {
		obj, ok := v.(map[string]any)
		return obj, ok
	})
}

func (l *Listing) continuation(page *domain.Page, data map[string]any, base *url.URL, received int) (*domain.Page, error) {
	switch l.paging.Mode {
	case module.PagingOffset:
		total := int64(-1)
		if n, ok := normalizer.LookupInt(data, l.config.TotalPath); ok {
			total = n
		}
		return module.OffsetContinuation(l.expand(l.config.URL), l.paging, module.PageOffset(page, 0), received, total)
	case module.PagingPage:
		last := 0
		if n, ok := normalizer.LookupInt(data, l.config.LastPagePath); ok {
			last = int(n)
		}
		return module.PageNumberContinuation(l.expand(l.config.URL), l.paging, module.PageOffset(page, l.paging.StartPage), received, last)
	case module.PagingToken:
		token, _ := normalizer.LookupString(data, l.config.NextPath)
		return module.TokenContinuation(l.expand(l.config.URL), l.paging, token, l.requestBody(nil))
	case module.PagingNextURL:
		next, _ := normalizer.LookupString(data, l.config.NextPath)
		return module.NextURLContinuation(base, next)
	default:
		return nil, nil
	}
}

func lookupStrings(data map[string]any, path string) []string {
	raw, ok := normalizer.GetPath(data, path)
	if !ok {
		return nil
	}
	arr, _ := raw.([]any)
	return lo.FilterMap(arr, func(v any, _ int) (string, bool) {
		switch id := v.(type) {
		case string:
			return id, id != ""
		case float64:
			return fmt.Sprintf("%.0f", id), true
		}
		return "", false
	})
}

func pageCookies(page *domain.Page) map[string]string {
	if page == nil {
		return nil
	}
	return page.Cookies
}
