package service

import (
	"fmt"
	"strings"

	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/config"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/project-tktt/go-extractor/internal/module"
	"github.com/project-tktt/go-extractor/internal/module/feedlist"
	"github.com/project-tktt/go-extractor/internal/module/htmllist"
	"github.com/project-tktt/go-extractor/internal/module/jsonlist"
	"github.com/sirupsen/logrus"
)

const (
	ListingJSON = "json"
	ListingHTML = "html"
	ListingFeed = "feed"
)

// Build turns a service catalogue into a registry of services with their listings.
// A nil catalogue yields an empty registry.
func Build(cat *config.Catalogue, dl downloader.Downloader, log *logrus.Entry) (*Registry, error) {
	log = logger.OrNop(log)
	reg := NewRegistry()
	if cat == nil {
		return reg, nil
	}

	for _, sc := range cat.Services {
		svc, err := buildService(sc, dl, log.WithField("service", sc.Name))
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", sc.Name, err)
		}
		if err := reg.Register(svc); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"service":  svc.String(),
			"listings": len(svc.Listings()),
		}).Debug("Service registered")
	}
	return reg, nil
}

func buildService(sc config.ServiceConfig, dl downloader.Downloader, log *logrus.Entry) (*StreamingService, error) {
	capabilities := make([]Capability, 0, len(sc.Capabilities))
	for _, c := range sc.Capabilities {
		capability, err := ParseCapability(c)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, capability)
	}

	svc := NewStreamingService(sc.ID, sc.Name, capabilities...)
	svc.BaseURL = sc.BaseURL
	svc.Clients.Replace(sc.Clients)

	var err error
	if svc.Streams, err = patternFactory(sc.Links.Stream); err != nil {
		return nil, fmt.Errorf("stream links: %w", err)
	}
	if svc.Channels, err = patternFactory(sc.Links.Channel); err != nil {
		return nil, fmt.Errorf("channel links: %w", err)
	}
	if svc.Playlists, err = patternFactory(sc.Links.Playlist); err != nil {
		return nil, fmt.Errorf("playlist links: %w", err)
	}

	for _, lc := range sc.Listings {
		l, err := buildListing(svc, lc, dl, log)
		if err != nil {
			return nil, err
		}
		svc.AddListing(lc.Name, l)
	}
	return svc, nil
}

// patternFactory returns nil for an unconfigured link type
func patternFactory(pc config.PatternConfig) (LinkHandlerFactory, error) {
	if pc.Pattern == "" {
		return nil, nil
	}
	return NewPatternFactory(pc.Pattern, pc.Template)
}

func buildListing(svc *StreamingService, lc config.ListingConfig, dl downloader.Downloader, log *logrus.Entry) (module.ListExtractor[domain.Item], error) {
	url := lc.URL
	if url == "" {
		return nil, fmt.Errorf("listing %s: url is required", lc.Name)
	}
	if svc.BaseURL != "" && strings.HasPrefix(url, "/") {
		url = strings.TrimSuffix(svc.BaseURL, "/") + url
	}

	switch strings.ToLower(lc.Type) {
	case ListingJSON, "":
		return jsonlist.New(jsonlist.Config{
			Name:         lc.Name,
			ServiceID:    svc.ID,
			URL:          url,
			Method:       lc.Method,
			Headers:      lc.Headers,
			Body:         lc.Body,
			Kind:         lc.Kind,
			ItemsPath:    lc.Items,
			KindPath:     lc.KindPath,
			Kinds:        lc.Kinds,
			TotalPath:    lc.Total,
			LastPagePath: lc.LastPage,
			NextPath:     lc.Next,
			IDsPath:      lc.IDs,
			BatchURL:     lc.BatchURL,
			Paging:       lc.Paging,
			Fields:       lc.Fields,
			Expand:       svc.Clients.Expand,
		}, dl, log)
	case ListingHTML:
		return htmllist.New(htmllist.Config{
			Name:         lc.Name,
			ServiceID:    svc.ID,
			URL:          svc.Clients.Expand(url),
			Kind:         lc.Kind,
			ItemSelector: lc.ItemSelector,
			Kinds:        lc.Kinds,
			NextSelector: lc.NextSelector,
			Paging:       lc.Paging,
			Fields:       lc.Fields,
			UserAgent:    lc.Headers["User-Agent"],
		}, dl, log)
	case ListingFeed:
		l, err := feedlist.New(feedlist.Config{
			Name:      lc.Name,
			ServiceID: svc.ID,
			URL:       svc.Clients.Expand(url),
			PageSize:  lc.Paging.Size,
		}, dl, log)
		if err != nil {
			return nil, err
		}
		return module.Widen[*domain.StreamItem](l), nil
	default:
		return nil, fmt.Errorf("listing %s: unknown type %q", lc.Name, lc.Type)
	}
}
