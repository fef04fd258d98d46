package handlers

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/bylanglois/views-api/internal/flusher"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Flusher runs one flush cycle. Satisfied by *flusher.Coordinator.
type Flusher interface {
	Flush(ctx context.Context) (*flusher.Result, error)
}

// FlushHandler exposes the flush trigger to external schedulers.
type FlushHandler struct {
	flusher Flusher
	token   string
	logger  *zap.Logger
}

// NewFlushHandler creates the handler. An empty token disables the
// shared-secret check.
func NewFlushHandler(f Flusher, token string, logger *zap.Logger) *FlushHandler {
	return &FlushHandler{
		flusher: f,
		token:   token,
		logger:  logger,
	}
}

// Flush runs one cycle and reports its outcome. A cycle already in flight
// yields 409; the caller should simply try again next interval. A transport
// failure yields 502 and the drained batch is gone.
func (h *FlushHandler) Flush(ctx context.Context, req *FlushRequest) (*FlushResponse, error) {
	if h.token != "" && subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.token)) != 1 {
		return nil, huma.Error401Unauthorized("invalid flush token")
	}

	result, err := h.flusher.Flush(ctx)
	if err != nil {
		if errors.Is(err, flusher.ErrFlushInProgress) {
			return nil, huma.Error409Conflict("a flush cycle is already running")
		}

		h.logger.Error("flush failed", zap.Error(err))

		return nil, huma.Error502BadGateway("flush failed; the drained batch was dropped")
	}

	resp := &FlushResponse{}
	resp.Body.CycleID = result.CycleID
	resp.Body.Processed = result.Processed
	resp.Body.Skipped = result.Skipped
	resp.Body.Errors = result.Errors

	return resp, nil
}
