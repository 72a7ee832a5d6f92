// internal/repository/postgres/feed_repository.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/agingrisk/internal/config"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type feedRepository struct {
	db  *DB
	cfg config.SourceConfig
}

func NewFeedRepository(db *DB, cfg config.SourceConfig) *feedRepository {
	return &feedRepository{db: db, cfg: cfg}
}

// LoadFeed reads every row of the configured tables in one snapshot.
// Columns are passed through by name; the feed decoder resolves them.
func (r *feedRepository) LoadFeed(ctx context.Context) (agingrisk.Feed, error) {
	var feed agingrisk.Feed

	err := r.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if feed.Shipments, err = selectRows(ctx, tx, r.cfg.ShipmentsTable); err != nil {
			return fmt.Errorf("load shipments: %w", err)
		}
		if feed.Batches, err = selectRows(ctx, tx, r.cfg.BatchesTable); err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		if r.cfg.PricesTable != "" {
			if feed.Prices, err = selectRows(ctx, tx, r.cfg.PricesTable); err != nil {
				return fmt.Errorf("load prices: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return agingrisk.Feed{}, err
	}

	log.Info().
		Int("shipments", len(feed.Shipments)).
		Int("batches", len(feed.Batches)).
		Int("prices", len(feed.Prices)).
		Msg("loaded aging risk feed from database")

	return feed, nil
}

func selectRows(ctx context.Context, q sqlx.QueryerContext, table string) ([]agingrisk.RawRecord, error) {
	query, err := selectAllQuery(table)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}
	defer rows.Close()

	var records []agingrisk.RawRecord
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("error scanning %s row: %w", table, err)
		}
		records = append(records, toRawRecord(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}

	return records, nil
}

// selectAllQuery quotes a table name that may be schema-qualified.
func selectAllQuery(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("source table name is empty")
	}

	parts := strings.Split(table, ".")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("invalid source table name %q", table)
		}
	}

	return "SELECT * FROM " + pgx.Identifier(parts).Sanitize(), nil
}

func toRawRecord(row map[string]interface{}) agingrisk.RawRecord {
	rec := make(agingrisk.RawRecord, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec[k] = v
	}
	return rec
}
