package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/project-tktt/go-extractor/internal/common/logger"
	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// recordColumns are written on every upsert, id first
var recordColumns = []string{
	"id", "service_id", "service", "kind", "url", "name",
	"thumbnail_urls", "thumbnails",
	"stream_type", "duration", "view_count",
	"uploader_name", "uploader_url", "uploader_verified",
	"textual_upload_date", "upload_date", "short_form_content",
	"description", "subscriber_count", "stream_count", "verified", "playlist_type",
	"comment_id", "text", "like_count", "reply_count", "pinned", "hearted", "published_at",
	"run_id", "listing", "extracted_at",
}

// PostgresIndexer indexes item records to PostgreSQL
type PostgresIndexer struct {
	db        *sql.DB
	tableName string
	log       *logrus.Entry
}

// NewPostgresIndexer creates a new PostgreSQL indexer
func NewPostgresIndexer(connStr string, tableName string, log *logrus.Entry) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	indexer := &PostgresIndexer{
		db:        db,
		tableName: pq.QuoteIdentifier(tableName),
		log:       logger.OrNop(log).WithField("table", tableName),
	}

	if err := indexer.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return indexer, nil
}

// ensureTable creates the items table if it doesn't exist
func (i *PostgresIndexer) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			service_id INTEGER NOT NULL,
			service TEXT,
			kind TEXT NOT NULL,
			url TEXT NOT NULL,
			name TEXT,
			thumbnail_urls TEXT[],
			thumbnails JSONB,
			stream_type TEXT,
			duration BIGINT,
			view_count BIGINT,
			uploader_name TEXT,
			uploader_url TEXT,
			uploader_verified BOOLEAN DEFAULT FALSE,
			textual_upload_date TEXT,
			upload_date TIMESTAMP WITH TIME ZONE,
			short_form_content BOOLEAN DEFAULT FALSE,
			description TEXT,
			subscriber_count BIGINT,
			stream_count BIGINT,
			verified BOOLEAN DEFAULT FALSE,
			playlist_type TEXT,
			comment_id TEXT,
			text TEXT,
			like_count BIGINT,
			reply_count BIGINT,
			pinned BOOLEAN DEFAULT FALSE,
			hearted BOOLEAN DEFAULT FALSE,
			published_at TIMESTAMP WITH TIME ZONE,
			run_id TEXT,
			listing TEXT,
			extracted_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.tableName)

	_, err := i.db.Exec(query)
	return err
}

// upsertQuery inserts a record or overwrites every column but id
func upsertQuery(table string) string {
	placeholders := lo.Map(recordColumns, func(_ string, n int) string {
		return fmt.Sprintf("$%d", n+1)
	})
	updates := lo.Map(recordColumns[1:], func(c string, _ int) string {
		return fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	})
	updates = append(updates, "updated_at = NOW()")

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table,
		strings.Join(recordColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

// recordArgs returns the values of recordColumns for r
func recordArgs(r *domain.Record) ([]any, error) {
	thumbnails, err := json.Marshal(r.Thumbnails)
	if err != nil {
		return nil, fmt.Errorf("marshal thumbnails: %w", err)
	}
	thumbnailURLs := lo.Map(r.Thumbnails, func(img domain.Image, _ int) string { return img.URL })

	return []any{
		r.ID, r.ServiceID, r.Service, r.Kind, r.URL, r.Name,
		pq.Array(thumbnailURLs), thumbnails,
		r.StreamType, r.Duration, r.ViewCount,
		r.UploaderName, r.UploaderURL, r.UploaderVerified,
		r.TextualUploadDate, dateValue(r.UploadDate), r.ShortFormContent,
		r.Description, r.SubscriberCount, r.StreamCount, r.Verified, r.PlaylistType,
		r.CommentID, r.Text, r.LikeCount, r.ReplyCount, r.Pinned, r.Hearted, dateValue(r.PublishedAt),
		r.RunID, r.Listing, r.ExtractedAt,
	}, nil
}

func dateValue(d *domain.DateWrapper) any {
	if d == nil {
		return nil
	}
	return d.Time
}

// Index indexes a single record
func (i *PostgresIndexer) Index(ctx context.Context, r *domain.Record) error {
	args, err := recordArgs(r)
	if err != nil {
		return err
	}
	if _, err := i.db.ExecContext(ctx, upsertQuery(i.tableName), args...); err != nil {
		return fmt.Errorf("upsert %s: %w", r.ID, err)
	}
	return nil
}

// BulkIndex indexes multiple records in one transaction. A failing row is logged and skipped.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery(i.tableName))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		args, err := recordArgs(r)
		if err != nil {
			i.log.WithError(err).WithField("record", r.ID).Error("Error indexing record")
			continue
		}
		// a failed statement aborts the transaction unless rolled back to the savepoint
		if _, err := tx.ExecContext(ctx, "SAVEPOINT record"); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			i.log.WithError(err).WithField("record", r.ID).Error("Error indexing record")
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record"); err != nil {
				return fmt.Errorf("rollback to savepoint: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
