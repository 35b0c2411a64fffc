package main

import (
	"log"

	"github.com/DriveLinkHQ/dl-backend/internal/authz"
	"github.com/DriveLinkHQ/dl-backend/internal/cache"
	"github.com/DriveLinkHQ/dl-backend/internal/config"
	"github.com/DriveLinkHQ/dl-backend/internal/logging"
	"github.com/DriveLinkHQ/dl-backend/internal/queue"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// The worker only makes sense against shared caches: an in-process
	// cache in a separate process would have nothing to invalidate.
	var bundles authz.BundleCache
	var tiers authz.TierCache
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bundles = cache.NewRedisBundleCache(client, cfg.Cache.BundleTTL)
		tiers = cache.NewRedisTierCache(client, cfg.Cache.TierTTL)
	} else {
		log.Fatal("Worker requires CACHE_BACKEND=redis")
	}

	worker := queue.NewWorker(&cfg.Redis, bundles, tiers)

	log.Println("Starting invalidation worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}
}
