// Package container wires the application graph. Each *Package function
// registers one concern's providers; binaries compose the packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/bylanglois/views-api/internal/analytics"
	analyticsstore "github.com/bylanglois/views-api/internal/analytics/store"
	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/bylanglois/views-api/internal/flusher"
	"github.com/bylanglois/views-api/internal/handlers"
	"github.com/bylanglois/views-api/internal/health"
	"github.com/bylanglois/views-api/internal/messaging"
	"github.com/bylanglois/views-api/internal/middleware"
	"github.com/bylanglois/views-api/internal/ratelimit"
	"github.com/bylanglois/views-api/internal/store"
	"github.com/bylanglois/views-api/internal/views"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx pool. Only invoked when the postgres
// catalog backend is selected.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		if options.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend selected but no DSN configured")
		}

		return pgxpool.New(context.Background(), options.PostgresDSN)
	})
}

// CatalogPackage provides the catalog client, the creator, and the resolver.
func CatalogPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (catalog.Client, error) {
		options := do.MustInvoke[*Options](i)

		var client catalog.Client

		switch options.CatalogBackend {
		case "memory":
			client = store.NewMemory()
		case "postgres":
			pool, err := do.Invoke[*pgxpool.Pool](i)
			if err != nil {
				return nil, err
			}

			client = store.NewPostgres(pool)
		case "shopify":
			if options.ShopDomain == "" || options.ShopToken == "" {
				return nil, fmt.Errorf("shopify backend selected but shop domain or token missing")
			}

			timeout := time.Duration(options.StoreTimeout) * time.Second
			client = store.NewShopify(options.ShopDomain, options.ShopToken, timeout)
		default:
			return nil, fmt.Errorf("unknown catalog backend %q", options.CatalogBackend)
		}

		if options.CacheTTL > 0 {
			redisClient := do.MustInvoke[*redis.Client](i)
			ttl := time.Duration(options.CacheTTL) * time.Second
			client = store.NewRedisCache(client, redisClient, ttl)
		}

		return client, nil
	})

	do.Provide(injector, func(i *do.Injector) (catalog.Creator, error) {
		client := do.MustInvoke[catalog.Client](i)

		creator, ok := client.(catalog.Creator)
		if !ok {
			return nil, fmt.Errorf("catalog backend does not support record creation")
		}

		return creator, nil
	})

	do.Provide(injector, func(i *do.Injector) (*catalog.Resolver, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[catalog.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return catalog.NewResolver(client, options.PageSize, options.MaxPages, logger), nil
	})
}

// ViewsPackage provides the aggregation buffer and the service façade.
func ViewsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*views.Buffer, error) {
		return views.NewBuffer(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*views.Service, error) {
		options := do.MustInvoke[*Options](i)
		buffer := do.MustInvoke[*views.Buffer](i)
		resolver := do.MustInvoke[*catalog.Resolver](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return views.NewService(buffer, resolver, options.RecordType, logger), nil
	})
}

// PublisherGroupPackage provides the event publisher and the typed publish
// functions derived from it.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: redisClient,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.ViewRecordedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.ViewRecordedEvent](group.Publisher(), analytics.TopicViewRecorded), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.FlushCompletedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.FlushCompletedEvent](group.Publisher(), analytics.TopicFlushCompleted), nil
	})
}

// FlusherPackage provides the flush coordinator and the interval scheduler.
func FlusherPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*flusher.Coordinator, error) {
		options := do.MustInvoke[*Options](i)
		buffer := do.MustInvoke[*views.Buffer](i)
		resolver := do.MustInvoke[*catalog.Resolver](i)
		client := do.MustInvoke[catalog.Client](i)
		publish := do.MustInvoke[messaging.Publish[analytics.FlushCompletedEvent]](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return flusher.NewCoordinator(buffer, resolver, client, options.RecordType, publish, logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (*flusher.Scheduler, error) {
		options := do.MustInvoke[*Options](i)
		coordinator := do.MustInvoke[*flusher.Coordinator](i)
		logger := do.MustInvoke[*zap.Logger](i)

		interval := time.Duration(options.FlushInterval) * time.Second

		return flusher.NewScheduler(coordinator, interval, logger), nil
	})
}

// RateLimitPackage provides the limiter over the Redis-backed store.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		limitStore := store.NewRateLimitRedis(redisClient)
		defaults := []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 300},
		}

		return ratelimit.NewLimiter(limitStore, defaults), nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		limiter := do.MustInvoke[*ratelimit.Limiter](i)
		service := do.MustInvoke[*views.Service](i)
		coordinator := do.MustInvoke[*flusher.Coordinator](i)
		creator := do.MustInvoke[catalog.Creator](i)
		resolver := do.MustInvoke[*catalog.Resolver](i)
		catalogClient := do.MustInvoke[catalog.Client](i)
		redisClient := do.MustInvoke[*redis.Client](i)
		publishView := do.MustInvoke[messaging.Publish[analytics.ViewRecordedEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("Views API", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.RateLimiter(api, limiter, logger),
		)

		viewsHandler := handlers.NewViewsHandler(service, publishView, logger)
		flushHandler := handlers.NewFlushHandler(coordinator, options.FlushToken, logger)
		recordsHandler := handlers.NewRecordsHandler(creator, resolver, options.RecordType, logger)

		handlers.RegisterRoutes(api, viewsHandler, flushHandler, recordsHandler)

		healthHandler := health.NewHandler(
			health.NewRedisChecker(redisClient),
			health.NewCatalogChecker(catalogClient, options.RecordType),
		)
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}

// ConsumerGroupPackage provides the analytics consumers for the consumer
// binary.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		return analyticsstore.NewRedis(redisClient), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)
		eventStore := do.MustInvoke[analytics.Store](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: "views-analytics",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicViewRecorded,
			analytics.NewViewRecordedHandler(eventStore), logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicFlushCompleted,
			analytics.NewFlushCompletedHandler(eventStore), logger))

		return group, nil
	})
}
