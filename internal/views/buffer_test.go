package views_test

import (
	"sync"
	"testing"

	"github.com/bylanglois/views-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_Add(t *testing.T) {
	t.Run("creates entry on first add", func(t *testing.T) {
		b := views.NewBuffer()

		b.Add("a", 1)

		assert.Equal(t, int64(1), b.Pending("a"))
		assert.Equal(t, 1, b.Len())
	})

	t.Run("sums into existing entry", func(t *testing.T) {
		b := views.NewBuffer()

		b.Add("a", 1)
		b.Add("a", 2)

		assert.Equal(t, int64(3), b.Pending("a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		b := views.NewBuffer()

		b.Add("a", 1)
		b.Add("b", 5)

		assert.Equal(t, int64(1), b.Pending("a"))
		assert.Equal(t, int64(5), b.Pending("b"))
	})
}

func TestBuffer_Drain(t *testing.T) {
	t.Run("returns pending deltas and empties the buffer", func(t *testing.T) {
		b := views.NewBuffer()
		b.Add("a", 5)
		b.Add("b", 2)

		batch := b.Drain()

		assert.Equal(t, map[string]int64{"a": 5, "b": 2}, batch)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("empty buffer drains to empty batch", func(t *testing.T) {
		b := views.NewBuffer()

		batch := b.Drain()

		assert.Empty(t, batch)
	})

	t.Run("adds after drain land in the fresh map", func(t *testing.T) {
		b := views.NewBuffer()
		b.Add("a", 1)

		batch := b.Drain()
		b.Add("a", 1)

		assert.Equal(t, int64(1), batch["a"])
		assert.Equal(t, int64(1), b.Pending("a"))
	})
}

func TestBuffer_ConcurrentAddAndDrain(t *testing.T) {
	// No increment may be lost or double-counted across drains: the sum of
	// everything drained plus whatever remains must equal the total added.
	const (
		writers       = 8
		addsPerWriter = 500
	)

	b := views.NewBuffer()

	var wg sync.WaitGroup

	start := make(chan struct{})

	for w := 0; w < writers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			for i := 0; i < addsPerWriter; i++ {
				b.Add("hot", 1)
			}
		}()
	}

	drained := make(chan int64, 4)

	for d := 0; d < 4; d++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			var sum int64
			for _, v := range b.Drain() {
				sum += v
			}
			drained <- sum
		}()
	}

	close(start)
	wg.Wait()
	close(drained)

	total := b.Pending("hot")
	for sum := range drained {
		total += sum
	}

	require.Equal(t, int64(writers*addsPerWriter), total)
}

func TestBuffer_Snapshot(t *testing.T) {
	t.Run("copies without clearing", func(t *testing.T) {
		b := views.NewBuffer()
		b.Add("a", 3)

		snapshot := b.Snapshot()
		snapshot["a"] = 99

		assert.Equal(t, int64(3), b.Pending("a"))
	})
}

func TestBuffer_Reset(t *testing.T) {
	b := views.NewBuffer()
	b.Add("a", 3)

	b.Reset()

	assert.Equal(t, 0, b.Len())
}
