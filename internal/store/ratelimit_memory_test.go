package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bylanglois/views-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemory_Record(t *testing.T) {
	t.Run("counts requests within the window", func(t *testing.T) {
		s := store.NewRateLimitMemory()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(context.Background(), "client-a", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
	})

	t.Run("keys track independently", func(t *testing.T) {
		s := store.NewRateLimitMemory()

		_, err := s.Record(context.Background(), "client-a", time.Minute)
		require.NoError(t, err)

		count, err := s.Record(context.Background(), "client-b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("expired entries fall out of the window", func(t *testing.T) {
		s := store.NewRateLimitMemory()

		_, err := s.Record(context.Background(), "client-a", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		count, err := s.Record(context.Background(), "client-a", 10*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
