package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/bylanglois/views-api/internal/analytics"
	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/bylanglois/views-api/internal/messaging"
	"github.com/bylanglois/views-api/internal/views"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// ViewsHandler handles the view-count operations.
type ViewsHandler struct {
	service     *views.Service
	publishView messaging.Publish[analytics.ViewRecordedEvent]
	logger      *zap.Logger
}

// NewViewsHandler creates the handler around the service façade.
func NewViewsHandler(
	service *views.Service,
	publishView messaging.Publish[analytics.ViewRecordedEvent],
	logger *zap.Logger,
) *ViewsHandler {
	return &ViewsHandler{
		service:     service,
		publishView: publishView,
		logger:      logger,
	}
}

// Increment buffers one view and returns immediately. The response says the
// view was accepted, not that it was persisted; the flush cycle does that
// later.
func (h *ViewsHandler) Increment(ctx context.Context, req *IncrementRequest) (*IncrementResponse, error) {
	pending, err := h.service.Increment(req.PostID)
	if err != nil {
		if errors.Is(err, views.ErrEmptyKey) {
			return nil, huma.Error400BadRequest("post id is required")
		}

		return nil, huma.Error500InternalServerError("failed to record view")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ViewRecordedEvent{
		PostID:     req.PostID,
		RecordedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishView(event); err != nil {
		h.logger.Error("failed to publish view event",
			zap.String("postId", req.PostID),
			zap.Error(err),
		)
	}

	resp := &IncrementResponse{}
	resp.Body.PostID = req.PostID
	resp.Body.Pending = pending

	return resp, nil
}

// GetCount reads one post's total, pending buffered views included.
func (h *ViewsHandler) GetCount(ctx context.Context, req *GetCountRequest) (*GetCountResponse, error) {
	count, err := h.service.Count(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, huma.Error404NotFound("no view counter for this post")
		}

		h.logger.Error("failed to read count",
			zap.String("postId", req.PostID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to read count")
	}

	resp := &GetCountResponse{}
	resp.Body.PostID = req.PostID
	resp.Body.Count = count

	return resp, nil
}

// ListCounts reads totals for every post with one catalog scan.
func (h *ViewsHandler) ListCounts(ctx context.Context, _ *struct{}) (*ListCountsResponse, error) {
	counts, err := h.service.AllCounts(ctx)
	if err != nil {
		h.logger.Error("failed to list counts", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list counts")
	}

	resp := &ListCountsResponse{}
	resp.Body.Counts = counts

	return resp, nil
}
