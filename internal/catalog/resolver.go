package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of records fetched per catalog page.
	DefaultPageSize = 50
	// DefaultMaxPages bounds how many pages a single scan may fetch. The
	// ceiling guards against runaway pagination when the catalog misbehaves.
	DefaultMaxPages = 20
)

// Resolver locates records by scanning the catalog's paginated listing. The
// catalog has no indexed lookup by field value, so every resolution is a
// type-scoped page walk.
type Resolver struct {
	client   Client
	pageSize int
	maxPages int
	logger   *zap.Logger
}

// NewResolver creates a resolver. Non-positive pageSize or maxPages fall back
// to the defaults.
func NewResolver(client Client, pageSize, maxPages int, logger *zap.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	return &Resolver{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FindByField scans records of recordType until one whose fieldKey field
// equals fieldValue is found. Returns ErrNotFound when pages are exhausted and
// ErrPageLimit when the page ceiling is hit first. If several records carry
// the same value (which violates the catalog's uniqueness assumption), the
// first one in page order wins.
func (r *Resolver) FindByField(ctx context.Context, recordType, fieldKey, fieldValue string) (*Record, error) {
	cursor := ""

	for page := 0; page < r.maxPages; page++ {
		listing, err := r.client.ListRecords(ctx, recordType, r.pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list records page %d: %w", page+1, err)
		}

		for i := range listing.Records {
			if listing.Records[i].Field(fieldKey) == fieldValue {
				return &listing.Records[i], nil
			}
		}

		if !listing.HasNextPage {
			return nil, ErrNotFound
		}

		cursor = listing.EndCursor
	}

	r.logger.Warn("scan hit page ceiling",
		zap.String("recordType", recordType),
		zap.String("fieldKey", fieldKey),
		zap.Int("maxPages", r.maxPages),
	)

	return nil, ErrPageLimit
}

// ListAll pages through every record of recordType, preserving page order.
// The flush path uses this to resolve a whole batch with one scan instead of
// one scan per key. Hitting the page ceiling fails the listing rather than
// returning a truncated set.
func (r *Resolver) ListAll(ctx context.Context, recordType string) ([]Record, error) {
	var records []Record

	cursor := ""

	for page := 0; page < r.maxPages; page++ {
		listing, err := r.client.ListRecords(ctx, recordType, r.pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("list records page %d: %w", page+1, err)
		}

		records = append(records, listing.Records...)

		if !listing.HasNextPage {
			return records, nil
		}

		cursor = listing.EndCursor
	}

	r.logger.Warn("listing hit page ceiling",
		zap.String("recordType", recordType),
		zap.Int("maxPages", r.maxPages),
	)

	return nil, ErrPageLimit
}
