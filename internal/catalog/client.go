package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// ErrPageLimit is returned when a scan hits the hard page ceiling before
// finding a match. It matches ErrNotFound under errors.Is so callers that
// only care about absence keep working, while the cause stays visible.
var ErrPageLimit = fmt.Errorf("page ceiling reached: %w", ErrNotFound)

// Page is one page of a record listing.
type Page struct {
	Records     []Record
	HasNextPage bool
	EndCursor   string
}

// Update is one independent sub-operation in a batch mutation.
type Update struct {
	ID     string
	Fields map[string]string
}

// UpdateResult reports the outcome of a single sub-operation. Err is nil on
// success.
type UpdateResult struct {
	ID  string
	Err error
}

// Client is the backing-catalog collaborator. The catalog supports only
// type-scoped pagination (no indexed lookup by arbitrary field) and a batch
// mutation of independent sub-operations in a single round trip. Both calls
// are remote with their own rate limits and failure modes; implementations do
// not retry.
type Client interface {
	// ListRecords fetches one page of records of the given type. An empty
	// cursor starts from the beginning.
	ListRecords(ctx context.Context, recordType string, pageSize int, cursor string) (*Page, error)

	// UpdateRecords applies all updates in one round trip. Sub-operation
	// failures are reported per entry and do not roll back the others; the
	// returned error is reserved for transport-level failure of the whole
	// request.
	UpdateRecords(ctx context.Context, updates []Update) ([]UpdateResult, error)
}

// Creator is implemented by catalogs that support explicit record creation.
// Creation is an administrative operation here; the flush path never creates
// records for unmatched keys.
type Creator interface {
	CreateRecord(ctx context.Context, recordType string, fields map[string]string) (*Record, error)
}
