// Package httpapi wires the HTTP transport (Gin) to the poll services,
// middleware and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// principal resolution, idempotency, rate limiting, compression, CORS and
// security headers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/Akins-Coded/Online-Poll-System/docs"
	"github.com/Akins-Coded/Online-Poll-System/internal/cache"
	"github.com/Akins-Coded/Online-Poll-System/internal/config"
	"github.com/Akins-Coded/Online-Poll-System/internal/http/handlers"
	"github.com/Akins-Coded/Online-Poll-System/internal/http/middleware"
	"github.com/Akins-Coded/Online-Poll-System/internal/repo"
	"github.com/Akins-Coded/Online-Poll-System/internal/services"
)

// maxBodyBytes caps request bodies; poll payloads are small.
const maxBodyBytes = 1 << 20

var corsHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization",
	middleware.HeaderUserID, middleware.HeaderUserRole, middleware.HeaderIdempotencyKey,
}

// RegisterRoutes attaches all middleware and endpoints to r, building the
// services over db and store.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID
//  3. Logger (redacting access log)
//  4. Recovery, after the logger so panics carry the request id
//  5. Body size limit
//  6. Metrics
//  7. Authenticate (principal from X-User-ID / X-User-Role)
//  8. Idempotency validator, which needs the principal
//  9. Rate limiter, keyed by principal and skipped on replays
//  10. gzip, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store cache.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.Authenticate())

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 128,
			Scope:  idempotencyScope(cfg.APIBasePath),
		},
		idempotencyLookup(db),
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByPrincipalOrIP())
	r.Use(rl.Handler())

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/health/ready", readiness(db, store))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = basePathOrRoot(cfg.APIBasePath)
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services <- db/store
	rc := services.NewResultCache(store, &services.Aggregator{DB: db})
	if cfg.Cache.ResultsTTL > 0 {
		rc.TTL = cfg.Cache.ResultsTTL
	}
	if cfg.Cache.UserVoteTTL > 0 {
		rc.VoteTTL = cfg.Cache.UserVoteTTL
	}
	pollSvc := services.NewPollService(db, rc)
	if cfg.PollDefaultLifetime > 0 {
		pollSvc.DefaultLifetime = cfg.PollDefaultLifetime
	}
	if cfg.PageSize > 0 {
		pollSvc.PageSize = cfg.PageSize
	}
	if cfg.IdempotencyTTL > 0 {
		pollSvc.IdempotencyTTL = cfg.IdempotencyTTL
	}
	voteSvc := services.NewVoteService(db, rc)

	h := handlers.New(pollSvc, voteSvc, rc, cfg.PageSize)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Polls
		api.POST("/polls", h.CreatePoll)
		api.GET("/polls", h.ListPolls)
		api.GET("/polls/:id", h.GetPoll)
		api.DELETE("/polls/:id", h.DeletePoll)
		api.POST("/polls/:id/options", h.AddOption)

		// Votes
		api.POST("/polls/:id/vote", h.CastVote)
		api.GET("/polls/:id/vote", h.MyVote)
		api.PUT("/polls/:id/vote", h.UpdateVote)

		// Results
		api.GET("/polls/:id/results", h.GetResults)
	}
}

// idempotencyScope names the operation a key belongs to. Only poll creation
// records idempotency outcomes, so other routes get no scope and skip the
// lookup.
func idempotencyScope(base string) func(*gin.Context) string {
	createPath := basePathOrRoot(base)
	if createPath == "/" {
		createPath = "/polls"
	} else {
		createPath += "/polls"
	}
	return func(c *gin.Context) string {
		if c.Request.Method == http.MethodPost && c.FullPath() == createPath {
			return services.ScopeCreatePoll
		}
		return ""
	}
}

func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return rec != nil, nil
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After", "Idempotency-Replayed", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO: * even without an Origin header, e.g. for health checks.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// readiness reports 503 until both the ledger and the cache answer.
func readiness(db *gorm.DB, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"db": "ok", "cache": "ok"}
		status := http.StatusOK

		if sqlDB, err := db.DB(); err != nil {
			checks["db"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else if err := sqlDB.PingContext(ctx); err != nil {
			checks["db"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if err := store.Ping(ctx); err != nil {
			checks["cache"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
			middleware.LoggerFrom(c).Warn().Interface("checks", checks).Msg("readiness check failed")
		}
		c.JSON(status, gin.H{"status": overall, "checks": checks})
	}
}

// limitBody caps request bodies at maxBytes; reads beyond it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func basePathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
