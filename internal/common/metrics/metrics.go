package metrics

import (
	"errors"
	"net/http"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/project-tktt/go-extractor/internal/downloader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "extractor"

// Metrics holds the crawl and worker counters on a private registry
type Metrics struct {
	registry *prometheus.Registry

	pages          *prometheus.CounterVec
	items          *prometheus.CounterVec
	itemErrors     *prometheus.CounterVec
	pageFailures   *prometheus.CounterVec
	recordsQueued  *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec
	recordsIndexed prometheus.Counter
	indexFailures  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages fetched per listing",
		}, []string{"listing"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Items collected per listing",
		}, []string{"listing"}),
		itemErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_errors_total",
			Help:      "Items skipped because they could not be loaded",
		}, []string{"listing"}),
		pageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_failures_total",
			Help:      "Page fetches that failed, by reason",
		}, []string{"listing", "reason"}),
		recordsQueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_queued_total",
			Help:      "Records published to the queue",
		}, []string{"listing"}),
		recordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_unchanged_total",
			Help:      "Records dropped because they were already seen unchanged",
		}, []string{"listing"}),
		recordsIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_indexed_total",
			Help:      "Records written by the worker",
		}),
		indexFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_failures_total",
			Help:      "Worker batches that could not be indexed",
		}),
	}
}

// ObservePage counts a fetched page with its items and recovered errors
func (m *Metrics) ObservePage(listing string, items, errors int) {
	m.pages.WithLabelValues(listing).Inc()
	m.items.WithLabelValues(listing).Add(float64(items))
	m.itemErrors.WithLabelValues(listing).Add(float64(errors))
}

func (m *Metrics) ObserveFailure(listing string, err error) {
	m.pageFailures.WithLabelValues(listing, Reason(err)).Inc()
}

func (m *Metrics) RecordsQueued(listing string, n int) {
	m.recordsQueued.WithLabelValues(listing).Add(float64(n))
}

func (m *Metrics) RecordsUnchanged(listing string, n int) {
	m.recordsSkipped.WithLabelValues(listing).Add(float64(n))
}

func (m *Metrics) RecordsIndexed(n int) {
	m.recordsIndexed.Add(float64(n))
}

func (m *Metrics) IndexFailed() {
	m.indexFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Reason buckets a page failure into a low-cardinality label
func Reason(err error) string {
	var httpErr *downloader.HTTPError
	switch {
	case errors.Is(err, downloader.ErrRateLimited):
		return "rate_limited"
	case errors.As(err, &httpErr):
		return "http"
	case errors.Is(err, domain.ErrContentNotAvailable):
		return "not_available"
	case errors.Is(err, domain.ErrParsing), errors.Is(err, domain.ErrExtraction):
		return "extraction"
	case errors.Is(err, domain.ErrInvalidPage), errors.Is(err, domain.ErrExhausted):
		return "paging"
	default:
		return "other"
	}
}
