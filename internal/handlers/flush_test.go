package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bylanglois/views-api/internal/flusher"
	"github.com/bylanglois/views-api/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockFlusher struct {
	result *flusher.Result
	err    error
	calls  int
}

func (m *mockFlusher) Flush(_ context.Context) (*flusher.Result, error) {
	m.calls++

	return m.result, m.err
}

func TestFlush(t *testing.T) {
	t.Run("reports the cycle outcome", func(t *testing.T) {
		mock := &mockFlusher{result: &flusher.Result{
			CycleID:   "cycle-1",
			Processed: 3,
			Skipped:   1,
			Errors:    0,
		}}
		handler := handlers.NewFlushHandler(mock, "", zap.NewNop())

		resp, err := handler.Flush(context.Background(), &handlers.FlushRequest{})

		require.NoError(t, err)
		assert.Equal(t, "cycle-1", resp.Body.CycleID)
		assert.Equal(t, 3, resp.Body.Processed)
		assert.Equal(t, 1, resp.Body.Skipped)
		assert.Equal(t, 0, resp.Body.Errors)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("valid token is accepted", func(t *testing.T) {
		mock := &mockFlusher{result: &flusher.Result{CycleID: "cycle-1"}}
		handler := handlers.NewFlushHandler(mock, "secret", zap.NewNop())

		_, err := handler.Flush(context.Background(), &handlers.FlushRequest{Token: "secret"})

		require.NoError(t, err)
	})

	t.Run("wrong token is rejected before flushing", func(t *testing.T) {
		mock := &mockFlusher{result: &flusher.Result{}}
		handler := handlers.NewFlushHandler(mock, "secret", zap.NewNop())

		_, err := handler.Flush(context.Background(), &handlers.FlushRequest{Token: "wrong"})

		assertStatus(t, err, http.StatusUnauthorized)
		assert.Zero(t, mock.calls)
	})

	t.Run("overlapping cycle yields 409", func(t *testing.T) {
		mock := &mockFlusher{err: flusher.ErrFlushInProgress}
		handler := handlers.NewFlushHandler(mock, "", zap.NewNop())

		_, err := handler.Flush(context.Background(), &handlers.FlushRequest{})

		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("transport failure yields 502", func(t *testing.T) {
		mock := &mockFlusher{err: errors.New("catalog unreachable")}
		handler := handlers.NewFlushHandler(mock, "", zap.NewNop())

		_, err := handler.Flush(context.Background(), &handlers.FlushRequest{})

		assertStatus(t, err, http.StatusBadGateway)
	})
}
