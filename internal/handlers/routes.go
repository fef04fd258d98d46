package handlers

import (
	"net/http"
	"time"

	"github.com/bylanglois/views-api/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all view-count routes with per-endpoint rate limit
// configuration.
func RegisterRoutes(api huma.API, viewsHandler *ViewsHandler, flushHandler *FlushHandler, recordsHandler *RecordsHandler) {
	// POST /views/{postId} - the hot path; limits stay generous because a
	// single page view costs one request.
	huma.Register(api, huma.Operation{
		OperationID:   "increment-view",
		Method:        http.MethodPost,
		Path:          "/views/{postId}",
		Summary:       "Record a view",
		Description:   "Buffers one view for the post. Fire and forget: the view is persisted by a later flush cycle.",
		Tags:          []string{"Views"},
		DefaultStatus: http.StatusAccepted,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 600},
				},
			},
		},
	}, viewsHandler.Increment)

	// GET /views/{postId} - read one total
	huma.Register(api, huma.Operation{
		OperationID: "get-view-count",
		Method:      http.MethodGet,
		Path:        "/views/{postId}",
		Summary:     "Get a post's view count",
		Description: "Returns the stored total plus any views still buffered.",
		Tags:        []string{"Views"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 600},
				},
			},
		},
	}, viewsHandler.GetCount)

	// GET /views - dashboard read, one catalog scan per call
	huma.Register(api, huma.Operation{
		OperationID: "list-view-counts",
		Method:      http.MethodGet,
		Path:        "/views",
		Summary:     "List all view counts",
		Tags:        []string{"Views"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 60},
				},
			},
		},
	}, viewsHandler.ListCounts)

	// POST /flush - scheduler trigger, strict limits
	huma.Register(api, huma.Operation{
		OperationID: "flush-views",
		Method:      http.MethodPost,
		Path:        "/flush",
		Summary:     "Flush buffered views to the catalog",
		Description: "Drains the buffer and submits one batch update. Safe to call concurrently; overlapping cycles are rejected with 409.",
		Tags:        []string{"Admin"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 12},
				},
			},
		},
	}, flushHandler.Flush)

	// POST /records/{postId} - admin provisioning
	huma.Register(api, huma.Operation{
		OperationID:   "create-view-record",
		Method:        http.MethodPost,
		Path:          "/records/{postId}",
		Summary:       "Provision a view counter record",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
				},
			},
		},
	}, recordsHandler.Create)
}
