package container

import (
	"github.com/DriveLinkHQ/dl-backend/internal/api"
	"github.com/DriveLinkHQ/dl-backend/internal/auth"
	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/DriveLinkHQ/dl-backend/internal/cache"
	"github.com/DriveLinkHQ/dl-backend/internal/config"
	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/DriveLinkHQ/dl-backend/internal/queue"
	"github.com/DriveLinkHQ/dl-backend/internal/upstream"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config        *config.Config
	RedisClient   *redis.Client
	BundleCache   authz.BundleCache
	TierCache     authz.TierCache
	Upstream      *upstream.Client
	Resolver      *authz.Resolver
	JWTService    *auth.JWTService
	Authenticator *auth.Authenticator
	Queue         *queue.TaskQueue
	Server        *api.Server
}

func New(cfg *config.Config) (*Container, error) {
	// The asynq task queue manages its own Redis connection; this client
	// backs the shared caches when the redis backend is selected.
	var redisClient *redis.Client
	var bundles authz.BundleCache
	var tiers authz.TierCache

	if cfg.Cache.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bundles = cache.NewRedisBundleCache(redisClient, cfg.Cache.BundleTTL)
		tiers = cache.NewRedisTierCache(redisClient, cfg.Cache.TierTTL)
		logging.Info("Using Redis permission caches", "addr", cfg.Redis.Addr)
	} else {
		bundles = cache.NewBundleCache(cfg.Cache.BundleTTL)
		tiers = cache.NewTierCache(cfg.Cache.TierTTL)
		logging.Info("Using in-process permission caches")
	}

	upstreamClient := upstream.New(&cfg.Upstream)
	resolver := authz.NewResolver(upstreamClient, bundles, tiers)

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}
	authenticator := auth.NewAuthenticator(jwtService)

	// The task queue exists to fan invalidations out to the worker and to
	// sibling instances sharing the Redis caches; with in-process caches
	// there is nothing to fan out to, and Redis need not be reachable.
	var taskQueue *queue.TaskQueue
	var enqueuer api.TaskEnqueuer
	if cfg.Cache.Backend == "redis" {
		taskQueue, err = queue.NewQueue(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		enqueuer = taskQueue
	}

	server := api.NewServer(resolver, bundles, tiers, enqueuer)

	logging.Info("Container initialized",
		"upstream", cfg.Upstream.BaseURL,
		"cache_backend", cfg.Cache.Backend)

	return &Container{
		Config:        cfg,
		RedisClient:   redisClient,
		BundleCache:   bundles,
		TierCache:     tiers,
		Upstream:      upstreamClient,
		Resolver:      resolver,
		JWTService:    jwtService,
		Authenticator: authenticator,
		Queue:         taskQueue,
		Server:        server,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
}
