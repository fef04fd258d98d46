package catalog

import "strconv"

// Field keys known to this service. The backing catalog stores records as flat
// lists of string key/value pairs; adapters convert to this typed map at the
// boundary.
const (
	// FieldPostID identifies the post a record belongs to. Immutable, set at
	// creation, used only for lookup.
	FieldPostID = "post_id"
	// FieldViewCount holds the string-encoded view total. The only field this
	// service mutates.
	FieldViewCount = "view_count"
)

// DefaultRecordType is the record type holding per-post view counters.
const DefaultRecordType = "custom_post_views"

// Record is a durable entity in the backing catalog. The ID is assigned by the
// store and immutable once created.
type Record struct {
	ID     string
	Fields map[string]string
}

// Field returns the value of a field, or "" when absent.
func (r *Record) Field(key string) string {
	return r.Fields[key]
}

// CounterValue returns the record's view count. Missing or malformed values
// count as zero rather than failing the read.
func (r *Record) CounterValue() int64 {
	return ParseCount(r.Fields[FieldViewCount])
}

// ParseCount parses a string-encoded counter. Anything that does not parse as
// an integer is treated as zero.
func ParseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// FormatCount encodes a counter for storage.
func FormatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}
