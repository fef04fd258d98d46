package health

import (
	"context"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for checking a dependency's health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// CatalogChecker probes the backing catalog with a one-record listing.
type CatalogChecker struct {
	client     catalog.Client
	recordType string
}

// NewCatalogChecker creates a catalog health checker.
func NewCatalogChecker(client catalog.Client, recordType string) *CatalogChecker {
	if recordType == "" {
		recordType = catalog.DefaultRecordType
	}

	return &CatalogChecker{client: client, recordType: recordType}
}

// Ping fetches a single record page.
func (c *CatalogChecker) Ping(ctx context.Context) error {
	_, err := c.client.ListRecords(ctx, c.recordType, 1, "")

	return err
}

// Handler handles health check operations.
type Handler struct {
	redis   Checker
	catalog Checker
}

// NewHandler creates a new health handler.
func NewHandler(redis, catalog Checker) *Handler {
	return &Handler{redis: redis, catalog: catalog}
}

// Response is the response for the health check endpoint.
type Response struct {
	Body struct {
		Status  string `json:"status"`
		Redis   string `json:"redis"`
		Catalog string `json:"catalog"`
	}
}

// Check reports the health of the service and its dependencies. The service
// stays "degraded" rather than failing outright: increments keep working on
// the in-memory buffer even when the catalog is unreachable.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"

	if err := h.redis.Ping(ctx); err != nil {
		resp.Body.Redis = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Redis = "healthy"
	}

	if err := h.catalog.Ping(ctx); err != nil {
		resp.Body.Catalog = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Catalog = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
