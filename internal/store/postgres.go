package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a PostgreSQL-backed catalog.Client. Expected schema:
//
//	CREATE TABLE catalog_records (
//	    id          TEXT PRIMARY KEY,
//	    record_type TEXT NOT NULL,
//	    fields      JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX catalog_records_type_idx ON catalog_records (record_type, id);
//
// Pagination is keyset on id; batch updates go through one pgx.Batch round
// trip so per-statement failures stay independent.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed catalog.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) CreateRecord(ctx context.Context, recordType string, fields map[string]string) (*catalog.Record, error) {
	record := catalog.Record{
		ID:     "pg:" + uuid.NewString(),
		Fields: copyFields(fields),
	}

	payload, err := json.Marshal(record.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO catalog_records (id, record_type, fields)
		VALUES ($1, $2, $3)
	`

	if _, err := p.pool.Exec(ctx, query, record.ID, recordType, payload); err != nil {
		return nil, err
	}

	return &record, nil
}

func (p *Postgres) ListRecords(ctx context.Context, recordType string, pageSize int, cursor string) (*catalog.Page, error) {
	query := `
		SELECT id, fields
		FROM catalog_records
		WHERE record_type = $1 AND ($2 = '' OR id > $2)
		ORDER BY id
		LIMIT $3
	`

	// One extra row tells us whether another page exists.
	rows, err := p.pool.Query(ctx, query, recordType, cursor, pageSize+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.Record

	for rows.Next() {
		var (
			record catalog.Record
			raw    []byte
		)

		if err := rows.Scan(&record.ID, &raw); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(raw, &record.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of %s: %w", record.ID, err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &catalog.Page{Records: records}

	if len(records) > pageSize {
		page.Records = records[:pageSize]
		page.HasNextPage = true
	}

	if n := len(page.Records); n > 0 {
		page.EndCursor = page.Records[n-1].ID
	}

	return page, nil
}

func (p *Postgres) UpdateRecords(ctx context.Context, updates []catalog.Update) ([]catalog.UpdateResult, error) {
	batch := &pgx.Batch{}

	for _, u := range updates {
		payload, err := json.Marshal(u.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields of %s: %w", u.ID, err)
		}

		batch.Queue(`UPDATE catalog_records SET fields = $2 WHERE id = $1`, u.ID, payload)
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()

	results := make([]catalog.UpdateResult, 0, len(updates))

	for _, u := range updates {
		tag, err := br.Exec()

		switch {
		case err != nil:
			// A dead connection surfaces here on every statement; treat it
			// as a whole-batch transport failure rather than n sub-failures.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("batch update: %w", ctx.Err())
			}

			results = append(results, catalog.UpdateResult{ID: u.ID, Err: err})
		case tag.RowsAffected() == 0:
			results = append(results, catalog.UpdateResult{ID: u.ID, Err: catalog.ErrNotFound})
		default:
			results = append(results, catalog.UpdateResult{ID: u.ID})
		}
	}

	return results, nil
}

var (
	_ catalog.Client  = (*Postgres)(nil)
	_ catalog.Creator = (*Postgres)(nil)
)
