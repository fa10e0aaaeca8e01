package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers the items seen across crawl runs using Redis
type Deduplicator struct {
	client     redis.Cmdable
	prefix     string
	defaultTTL time.Duration
}

// NewDeduplicator creates a new Redis-based deduplicator
func NewDeduplicator(client redis.Cmdable, prefix string, defaultTTL time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "seen"
	}
	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour * 30 // 30 days default
	}
	return &Deduplicator{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// CheckResult represents the result of checking an item
type CheckResult int

const (
	// ResultNew - item has never been seen
	ResultNew CheckResult = iota
	// ResultUpdated - item was seen with different content
	ResultUpdated
	// ResultUnchanged - item was seen with the same content
	ResultUnchanged
)

func (r CheckResult) String() string {
	switch r {
	case ResultNew:
		return "new"
	case ResultUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Check tells whether r needs to be processed
func (d *Deduplicator) Check(ctx context.Context, r *domain.Record) (CheckResult, error) {
	stored, err := d.client.Get(ctx, d.Key(r)).Result()
	if errors.Is(err, redis.Nil) {
		return ResultNew, nil
	}
	if err != nil {
		return ResultNew, fmt.Errorf("redis get: %w", err)
	}

	if stored != Fingerprint(r) {
		return ResultUpdated, nil
	}
	return ResultUnchanged, nil
}

// MarkSeen stores the fingerprint of r for the default TTL
func (d *Deduplicator) MarkSeen(ctx context.Context, r *domain.Record) error {
	if err := d.client.Set(ctx, d.Key(r), Fingerprint(r), d.defaultTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Filter keeps the records that are new or changed and marks them seen
func (d *Deduplicator) Filter(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	fresh := make([]domain.Record, 0, len(records))
	for i := range records {
		result, err := d.Check(ctx, &records[i])
		if err != nil {
			return fresh, err
		}
		if result == ResultUnchanged {
			continue
		}
		if err := d.MarkSeen(ctx, &records[i]); err != nil {
			return fresh, err
		}
		fresh = append(fresh, records[i])
	}
	return fresh, nil
}

// Key is prefix:service:url, with the comment id appended for comments
func (d *Deduplicator) Key(r *domain.Record) string {
	id := r.URL
	if r.CommentID != "" {
		id += "#" + r.CommentID
	}
	return fmt.Sprintf("%s:%d:%s", d.prefix, r.ServiceID, id)
}

// Fingerprint hashes the fields whose change makes an item worth processing again.
// Counters are left out since they move on every crawl.
func Fingerprint(r *domain.Record) string {
	parts := []string{
		r.Kind,
		r.Name,
		r.Description,
		r.Text,
		r.UploaderName,
		r.StreamType,
		strconv.FormatInt(r.Duration, 10),
		strconv.FormatBool(r.Verified),
	}
	for _, img := range r.Thumbnails {
		parts = append(parts, img.URL)
	}

	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:16]) // First 16 bytes (32 hex chars)
}
