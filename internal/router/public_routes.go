package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/homelet/lease-service/internal/config"
    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/middleware"
)

// RegisterPublic registers unauthenticated browse endpoints: branches
// and approved property listings.  These routes carry the Redis rate
// limiter and, for property reads, the response cache.  Draft and
// lease endpoints are never cached; stale negotiation state would be a
// correctness bug.
func RegisterPublic(e *echo.Echo, p *handler.PropertyHandler, b *handler.BranchHandler,
    cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {

    rl := middleware.NewTokenBucket(rlCfg, rdb)
    cache := middleware.ResponseCache(cacheCfg, rdb)

    e.GET("/v1/branches", b.List, rl)
    e.GET("/v1/properties", p.ListApproved, rl, cache)
    e.GET("/v1/properties/:id", p.GetProperty, rl, cache)
}
