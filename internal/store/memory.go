package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/google/uuid"
)

// Memory is an in-memory catalog.Client used in tests and local development.
// Records keep insertion order so pagination is stable.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*memoryRecord
}

type memoryRecord struct {
	recordType string
	record     catalog.Record
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*memoryRecord)}
}

// CreateRecord adds a record with a generated ID and returns a copy of it.
func (m *Memory) CreateRecord(_ context.Context, recordType string, fields map[string]string) (*catalog.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := catalog.Record{
		ID:     "mem:" + uuid.NewString(),
		Fields: copyFields(fields),
	}

	m.records[record.ID] = &memoryRecord{recordType: recordType, record: record}
	m.order = append(m.order, record.ID)

	out := record
	out.Fields = copyFields(record.Fields)

	return &out, nil
}

// ListRecords pages through records of recordType in insertion order. Cursors
// are opaque offsets into the type-filtered sequence.
func (m *Memory) ListRecords(_ context.Context, recordType string, pageSize int, cursor string) (*catalog.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []catalog.Record

	for _, id := range m.order {
		if entry := m.records[id]; entry.recordType == recordType {
			r := entry.record
			r.Fields = copyFields(r.Fields)
			matching = append(matching, r)
		}
	}

	offset := 0

	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, catalog.ErrNotFound
		}

		offset = n
	}

	if offset > len(matching) {
		offset = len(matching)
	}

	end := offset + pageSize
	if end > len(matching) {
		end = len(matching)
	}

	return &catalog.Page{
		Records:     matching[offset:end],
		HasNextPage: end < len(matching),
		EndCursor:   strconv.Itoa(end),
	}, nil
}

// UpdateRecords replaces the fields of each named record. Unknown IDs report
// catalog.ErrNotFound for that entry without affecting the others.
func (m *Memory) UpdateRecords(_ context.Context, updates []catalog.Update) ([]catalog.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]catalog.UpdateResult, 0, len(updates))

	for _, u := range updates {
		entry, ok := m.records[u.ID]
		if !ok {
			results = append(results, catalog.UpdateResult{ID: u.ID, Err: catalog.ErrNotFound})

			continue
		}

		entry.record.Fields = copyFields(u.Fields)
		results = append(results, catalog.UpdateResult{ID: u.ID})
	}

	return results, nil
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	return out
}

var (
	_ catalog.Client  = (*Memory)(nil)
	_ catalog.Creator = (*Memory)(nil)
)
