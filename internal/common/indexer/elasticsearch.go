package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/sirupsen/logrus"
)

// itemsMapping keeps ids, urls and enums as keywords and the texts searchable
const itemsMapping = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"folding": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"service_id": {"type": "integer"},
			"service": {"type": "keyword"},
			"kind": {"type": "keyword"},
			"url": {"type": "keyword"},
			"name": {
				"type": "text",
				"analyzer": "folding",
				"fields": {"keyword": {"type": "keyword"}}
			},
			"stream_type": {"type": "keyword"},
			"duration": {"type": "long"},
			"view_count": {"type": "long"},
			"uploader_name": {"type": "text", "analyzer": "folding", "fields": {"keyword": {"type": "keyword"}}},
			"uploader_url": {"type": "keyword"},
			"upload_date": {"properties": {"time": {"type": "date"}, "approximate": {"type": "boolean"}}},
			"description": {"type": "text", "analyzer": "folding"},
			"subscriber_count": {"type": "long"},
			"stream_count": {"type": "long"},
			"playlist_type": {"type": "keyword"},
			"comment_id": {"type": "keyword"},
			"text": {"type": "text", "analyzer": "folding"},
			"like_count": {"type": "long"},
			"run_id": {"type": "keyword"},
			"listing": {"type": "keyword"},
			"extracted_at": {"type": "date"}
		}
	}
}`

// ElasticsearchIndexer indexes item records to Elasticsearch
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	log       *logrus.Entry
}

// NewElasticsearchIndexer creates a new Elasticsearch indexer and checks the connection
func NewElasticsearchIndexer(addresses []string, indexName string, log *logrus.Entry) (*ElasticsearchIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchIndexer{
		client:    client,
		indexName: indexName,
		log:       logger.OrNop(log).WithField("index", indexName),
	}, nil
}

// Index indexes a single record
func (i *ElasticsearchIndexer) Index(ctx context.Context, r *domain.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: r.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}
	return nil
}

// bulkResponse holds the per-item outcome of a bulk request
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// BulkIndex indexes multiple records at once. Rejected items are logged, the rest stay indexed.
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	body, err := i.bulkBody(records)
	if err != nil {
		return err
	}

	res, err := i.client.Bulk(bytes.NewReader(body), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				i.log.WithFields(logrus.Fields{
					"record": item.Index.ID,
					"type":   item.Index.Error.Type,
				}).Error(item.Index.Error.Reason)
			}
		}
	}
	return nil
}

// bulkBody renders the NDJSON action and document lines
func (i *ElasticsearchIndexer) bulkBody(records []*domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range records {
		meta, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": i.indexName, "_id": r.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal bulk meta: %w", err)
		}
		doc, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// EnsureIndex creates the index with the items mapping if it doesn't exist
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(itemsMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}
	return nil
}
