package views_test

import (
	"context"
	"testing"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/bylanglois/views-api/internal/store"
	"github.com/bylanglois/views-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testRecordType = "custom_post_views"

func newTestService(t *testing.T) (*views.Service, *views.Buffer, *store.Memory) {
	t.Helper()

	memory := store.NewMemory()
	buffer := views.NewBuffer()
	resolver := catalog.NewResolver(memory, 2, 10, zap.NewNop())
	service := views.NewService(buffer, resolver, testRecordType, zap.NewNop())

	return service, buffer, memory
}

func seedRecord(t *testing.T, memory *store.Memory, postID, count string) *catalog.Record {
	t.Helper()

	record, err := memory.CreateRecord(context.Background(), testRecordType, map[string]string{
		catalog.FieldPostID:    postID,
		catalog.FieldViewCount: count,
	})
	require.NoError(t, err)

	return record
}

func TestService_Increment(t *testing.T) {
	t.Run("buffers without touching the catalog", func(t *testing.T) {
		service, buffer, _ := newTestService(t)

		pending, err := service.Increment("a")

		require.NoError(t, err)
		assert.Equal(t, int64(1), pending)
		assert.Equal(t, int64(1), buffer.Pending("a"))
	})

	t.Run("repeated increments accumulate", func(t *testing.T) {
		service, buffer, _ := newTestService(t)

		for i := 0; i < 5; i++ {
			_, err := service.Increment("a")
			require.NoError(t, err)
		}

		assert.Equal(t, int64(5), buffer.Pending("a"))
	})

	t.Run("rejects empty key", func(t *testing.T) {
		service, buffer, _ := newTestService(t)

		_, err := service.Increment("")

		assert.ErrorIs(t, err, views.ErrEmptyKey)
		assert.Equal(t, 0, buffer.Len())
	})
}

func TestService_Count(t *testing.T) {
	t.Run("returns stored total", func(t *testing.T) {
		service, _, memory := newTestService(t)
		seedRecord(t, memory, "a", "10")

		count, err := service.Count(context.Background(), "a")

		require.NoError(t, err)
		assert.Equal(t, int64(10), count)
	})

	t.Run("folds pending delta into stored total", func(t *testing.T) {
		service, _, memory := newTestService(t)
		seedRecord(t, memory, "a", "10")

		_, _ = service.Increment("a")
		_, _ = service.Increment("a")

		count, err := service.Count(context.Background(), "a")

		require.NoError(t, err)
		assert.Equal(t, int64(12), count)
	})

	t.Run("pending-only key reports its pending value", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, _ = service.Increment("ghost")

		count, err := service.Count(context.Background(), "ghost")

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown key with no pending delta is not found", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Count(context.Background(), "missing")

		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("non-numeric stored counter counts as zero", func(t *testing.T) {
		service, _, memory := newTestService(t)
		seedRecord(t, memory, "a", "not-a-number")

		_, _ = service.Increment("a")

		count, err := service.Count(context.Background(), "a")

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestService_AllCounts(t *testing.T) {
	t.Run("lists stored totals with pending folded in", func(t *testing.T) {
		service, _, memory := newTestService(t)
		seedRecord(t, memory, "a", "10")
		seedRecord(t, memory, "b", "3")

		_, _ = service.Increment("a")
		_, _ = service.Increment("c")

		counts, err := service.AllCounts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"a": 11, "b": 3, "c": 1}, counts)
	})

	t.Run("empty catalog and buffer yields empty map", func(t *testing.T) {
		service, _, _ := newTestService(t)

		counts, err := service.AllCounts(context.Background())

		require.NoError(t, err)
		assert.Empty(t, counts)
	})
}
