package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/config"
    "github.com/homelet/lease-service/internal/database"
    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/lease"
    "github.com/homelet/lease-service/internal/queue"
    "github.com/homelet/lease-service/internal/repository"
    "github.com/homelet/lease-service/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: a nil client disables caching and rate limiting.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; cache and rate limiting disabled")
    }
    cacheCfg := config.LoadCacheConfig()
    rlCfg := config.LoadRateLimitConfig()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    branches := repository.NewBranchRepo(db)
    properties := repository.NewPropertyRepo(db)
    drafts := repository.NewLeaseDraftRepo(db)
    leases := repository.NewLeaseRepo(db)
    viewings := repository.NewViewRequestRepo(db)

    machine := lease.NewMachine(db, drafts, properties, leases)

    authHandler := handler.NewAuthHandler(cfg, users, tokens)
    draftHandler := handler.NewDraftHandler(machine)
    propertyHandler := handler.NewPropertyHandler(properties, users, cacheCfg, rdb)
    viewingHandler := handler.NewViewingHandler(viewings, properties)
    branchHandler := handler.NewBranchHandler(branches)

    e := echo.New()
    e.Validator = handler.NewRequestValidator()

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, propertyHandler, branchHandler, cacheCfg, rlCfg, rdb)
    router.RegisterNegotiation(e, draftHandler, cfg.JWTSecret)
    router.RegisterClient(e, propertyHandler, viewingHandler, cfg.JWTSecret)
    router.RegisterStaff(e, propertyHandler, viewingHandler, cfg.JWTSecret)

    // Background consumer appending lease.signed events to logs/lease.log.
    go func() {
        if err := queue.StartLeaseSignedConsumer(); err != nil {
            log.Printf("lease consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
