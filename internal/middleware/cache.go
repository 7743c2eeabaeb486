package middleware

import (
    "bytes"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/homelet/lease-service/internal/config"
)

// cachedResponse is the envelope stored in Redis for each cached entry.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// captureWriter captures the response body and status while forwarding
// everything to the client.  Bodies larger than limit are not cached.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    cw.size += int64(len(b))
    if cw.size <= cw.limit {
        cw.buf.Write(b)
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key from method, route and raw query.
func cacheKey(prefix string, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + "|" + c.Path() + "|" + r.URL.RawQuery))
    return prefix + ":" + hex.EncodeToString(sum[:])
}

// ResponseCache returns a middleware that serves successful responses
// to the configured methods from Redis for the configured TTL.  Only
// the public browse endpoints are wrapped with it; draft status reads
// are never cached because staleness there is a correctness bug, not a
// performance trade-off.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[c.Request().Method] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg.Prefix, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cached cachedResponse
                if json.Unmarshal(raw, &cached) == nil {
                    c.Response().Header().Set(echo.HeaderContentType, cached.ContentType)
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(cached.Status, cached.ContentType, cached.Body)
                }
            }

            cw := &captureWriter{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if cw.status == http.StatusOK && cw.size <= cw.limit {
                entry := cachedResponse{
                    Status:      cw.status,
                    ContentType: c.Response().Header().Get(echo.HeaderContentType),
                    Body:        cw.buf.Bytes(),
                }
                if raw, err := json.Marshal(entry); err == nil {
                    _ = rdb.Set(ctx, key, raw, cfg.TTL).Err()
                }
            }
            return nil
        }
    }
}

// InvalidateCache removes cached browse responses after a write that
// changes property visibility (application approval, finalization).
// Best effort: errors are ignored, entries fall out at TTL anyway.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client, c echo.Context) {
    if rdb == nil {
        return
    }
    ctx := c.Request().Context()
    iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
    deadline := time.Now().Add(200 * time.Millisecond)
    for iter.Next(ctx) {
        _ = rdb.Del(ctx, iter.Val()).Err()
        if time.Now().After(deadline) {
            return
        }
    }
}
