package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/serroba/onxpoint/internal/credential"
	"github.com/serroba/onxpoint/internal/handlers"
	"github.com/serroba/onxpoint/internal/health"
	"github.com/serroba/onxpoint/internal/identity"
	"github.com/serroba/onxpoint/internal/messaging"
	"github.com/serroba/onxpoint/internal/middleware"
	"github.com/serroba/onxpoint/internal/publishing"
	"github.com/serroba/onxpoint/internal/review"
	"github.com/serroba/onxpoint/internal/shortlink"
	"github.com/serroba/onxpoint/internal/store"
	"github.com/serroba/onxpoint/internal/token"
	"go.uber.org/zap"
)

// NewLogger builds a console (development) or json (production) logger.
func NewLogger(format string) (*zap.Logger, error) {
	switch format {
	case "", "console":
		return zap.NewDevelopment()
	case "json":
		return zap.NewProduction()
	default:
		return nil, oops.Code("CONFIG_INVALID").With("log_format", format).Errorf("unknown log format %q", format)
	}
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat)
	})
}

// RedisPackage provides the shared *redis.Client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return store.NewRedisClient(store.RedisOptions{
			Addr:        opts.RedisAddr,
			PoolSize:    opts.RedisPoolSize,
			PoolTimeout: opts.RedisPoolTimeout,
		})
	})
}

// StorePackage provides store.KeyValueStore for the configured backend.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (store.KeyValueStore, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Backend {
		case BackendMemory:
			return store.NewMemoryStore(opts.RedisPoolSize), nil
		case BackendRedis, "":
			return store.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
		default:
			return nil, oops.Code("CONFIG_INVALID").With("backend", opts.Backend).Errorf("unknown backend %q", opts.Backend)
		}
	})
}

// IdentityPackage provides the token service and the identity gateway.
func IdentityPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*token.Service, error) {
		opts := do.MustInvoke[*Options](i)

		return token.NewService(opts.CryptKey, token.WithTTL(opts.TokenTTL)), nil
	})

	do.Provide(i, func(i *do.Injector) (*identity.Gateway, error) {
		opts := do.MustInvoke[*Options](i)

		return identity.NewGateway(
			do.MustInvoke[store.KeyValueStore](i),
			credential.NewBcryptHasher(opts.BcryptCost),
			do.MustInvoke[*token.Service](i),
			do.MustInvoke[*zap.Logger](i),
		)
	})
}

// ShortLinkPackage provides *shortlink.Store with a nanoid code generator.
func ShortLinkPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortlink.Store, error) {
		opts := do.MustInvoke[*Options](i)

		generate, err := nanoid.Standard(opts.CodeLength)
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("code_length", opts.CodeLength).Wrap(err)
		}

		return shortlink.NewStore(do.MustInvoke[store.KeyValueStore](i), generate), nil
	})
}

// PublisherGroupPackage provides the message publisher: Redis streams, or an
// in-process channel for the memory backend.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		wmLogger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		if opts.Backend == BackendMemory {
			return messaging.NewPublisherGroup(gochannel.NewGoChannel(gochannel.Config{}, wmLogger)), nil
		}

		publisher, err := messaging.NewRedisPublisher(do.MustInvoke[*redis.Client](i), wmLogger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ReviewPackage provides the review store and the review event publisher.
func ReviewPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*review.Store, error) {
		return review.NewStore(do.MustInvoke[store.KeyValueStore](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[review.SubmittedEvent], error) {
		opts := do.MustInvoke[*Options](i)
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[review.SubmittedEvent](group.Publisher(), opts.ReviewTopic), nil
	})
}

// HTTPPackage provides the router and the Huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", promhttp.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		config := huma.DefaultConfig("onxpoint", "1.0.0")
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			handlers.BearerScheme: {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "PASETO",
			},
		}

		api := humachi.New(router, config)
		api.UseMiddleware(
			middleware.RequestLogger(logger),
			middleware.BearerAuth(api, do.MustInvoke[*token.Service](i), logger),
		)

		handlers.RegisterRoutes(api,
			handlers.NewSessionHandler(do.MustInvoke[*identity.Gateway](i), logger),
			handlers.NewReviewHandler(
				do.MustInvoke[*review.Store](i),
				do.MustInvoke[messaging.Publish[review.SubmittedEvent]](i),
				logger,
			),
			handlers.NewShortLinkHandler(do.MustInvoke[*shortlink.Store](i), opts.PublicBaseURL(), logger),
		)

		health.RegisterRoutes(api, health.NewHandler(
			do.MustInvoke[store.KeyValueStore](i),
			health.DefaultTimeout,
			logger,
		))

		return api, nil
	})
}

// postgresPool closes the pool on injector shutdown.
type postgresPool struct {
	*pgxpool.Pool
}

func (p *postgresPool) Shutdown() error {
	p.Close()

	return nil
}

// PublishingPackage provides the Mastodon client, the publication log and the
// review publishing handler.
func PublishingPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (publishing.StatusPoster, error) {
		worker := do.MustInvoke[*WorkerOptions](i)

		return publishing.NewMastodonClient(worker.MastodonHost, worker.MastodonAccessToken, nil), nil
	})

	do.Provide(i, func(i *do.Injector) (*postgresPool, error) {
		worker := do.MustInvoke[*WorkerOptions](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, worker.DatabaseURL)
		if err != nil {
			return nil, oops.Code("PUBLISHING_DB_CONNECT_FAILED").Wrap(err)
		}

		return &postgresPool{Pool: pool}, nil
	})

	do.Provide(i, func(i *do.Injector) (publishing.Log, error) {
		worker := do.MustInvoke[*WorkerOptions](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if worker.DatabaseURL == "" {
			logger.Info("no database configured, publications are only logged")

			return publishing.NewNoopLog(logger), nil
		}

		pool, err := do.Invoke[*postgresPool](i)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log := publishing.NewPostgresLog(pool)
		if err := log.Migrate(ctx); err != nil {
			return nil, oops.Code("PUBLISHING_DB_MIGRATE_FAILED").Wrap(err)
		}

		return log, nil
	})

	do.Provide(i, func(i *do.Injector) (*publishing.Handler, error) {
		worker := do.MustInvoke[*WorkerOptions](i)

		return publishing.NewHandler(
			do.MustInvoke[publishing.StatusPoster](i),
			do.MustInvoke[publishing.Log](i),
			worker.MastodonDebug,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// ConsumerGroupPackage provides the consumer group that feeds review events to
// the publishing handler.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		worker := do.MustInvoke[*WorkerOptions](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := messaging.NewRedisSubscriber(
			do.MustInvoke[*redis.Client](i),
			worker.ConsumerGroup,
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, err
		}

		handler := do.MustInvoke[*publishing.Handler](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[review.SubmittedEvent](subscriber, opts.ReviewTopic, handler.Handle, logger))

		return group, nil
	})
}
