package handlers

import (
	"context"
	"errors"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RecordsHandler provisions counter records. Creation is explicit and
// administrative; the flush path never creates records for unknown posts.
type RecordsHandler struct {
	creator    catalog.Creator
	resolver   *catalog.Resolver
	recordType string
	logger     *zap.Logger
}

// NewRecordsHandler creates the handler.
func NewRecordsHandler(
	creator catalog.Creator,
	resolver *catalog.Resolver,
	recordType string,
	logger *zap.Logger,
) *RecordsHandler {
	if recordType == "" {
		recordType = catalog.DefaultRecordType
	}

	return &RecordsHandler{
		creator:    creator,
		resolver:   resolver,
		recordType: recordType,
		logger:     logger,
	}
}

// Create provisions a zeroed counter record for a post. Until this has
// happened, increments for the post are accepted but dropped at flush time.
func (h *RecordsHandler) Create(ctx context.Context, req *CreateRecordRequest) (*CreateRecordResponse, error) {
	existing, err := h.resolver.FindByField(ctx, h.recordType, catalog.FieldPostID, req.PostID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		h.logger.Error("failed to check for existing record",
			zap.String("postId", req.PostID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to check for existing record")
	}

	if existing != nil {
		return nil, huma.Error409Conflict("a counter record already exists for this post")
	}

	record, err := h.creator.CreateRecord(ctx, h.recordType, map[string]string{
		catalog.FieldPostID:    req.PostID,
		catalog.FieldViewCount: "0",
	})
	if err != nil {
		h.logger.Error("failed to create record",
			zap.String("postId", req.PostID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to create record")
	}

	resp := &CreateRecordResponse{}
	resp.Body.ID = record.ID
	resp.Body.PostID = req.PostID

	return resp, nil
}
