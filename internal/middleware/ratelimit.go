package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/bylanglois/views-api/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RateLimiter returns a huma middleware enforcing sliding-window limits per
// client. Endpoints configure their limits through operation metadata under
// ratelimit.MetadataKey; without configuration the limiter's defaults apply.
func RateLimiter(api huma.API, limiter *ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := endpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		var limits []ratelimit.LimitConfig
		if cfg != nil {
			limits = cfg.Limits
		}

		key := clientKey(ctx)

		allowed, exceeded, err := limiter.Allow(ctx.Context(), key, limits)
		if err != nil {
			// Fail open: a broken limit store must not take the API down.
			logger.Error("rate limit check failed", zap.Error(err))
			next(ctx)

			return
		}

		if !allowed {
			retryAfter := int(exceeded.Config.Window.Seconds())
			ctx.SetHeader("Retry-After", fmt.Sprintf("%d", retryAfter))

			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func endpointConfig(ctx huma.Context) *ratelimit.EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[ratelimit.MetadataKey].(ratelimit.EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}

// clientKey identifies a client by IP and User-Agent, hashed so limit store
// keys stay bounded.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(extractClientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
