package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/oceanwatch/hazard-api/internal/config"
	"github.com/oceanwatch/hazard-api/internal/handler"
	"github.com/oceanwatch/hazard-api/internal/middleware"
	"github.com/oceanwatch/hazard-api/internal/model"
)

// Register wires every route of the API onto the Echo instance.
//
// Layout:
//
//	GET  /                               liveness banner
//	GET  /healthz                        health check
//	POST /api/v1/auth/register           public, rate limited
//	POST /api/v1/auth/login              public, rate limited
//	GET  /api/v1/users/me                bearer token
//	PATCH /api/v1/users/me               bearer token
//	POST /api/v1/reports                 bearer token
//	GET  /api/v1/reports                 bearer token, response cached
//	PATCH /api/v1/reports/:id/validate   bearer token, Official/Analyst only
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	auth *handler.AuthHandler, users *handler.UserHandler, reports *handler.ReportHandler) {

	e.GET("/", handler.Live)
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")
	api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(cfg.Env), rdb))

	// Unauthenticated session establishment.
	authGroup := api.Group("/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	// Everything below requires a live user resolved from the token.
	protected := api.Group("", middleware.Protect(cfg.JWTSecret, auth.Users))

	protected.GET("/users/me", users.Me)
	protected.PATCH("/users/me", users.UpdateMe)

	protected.POST("/reports", reports.Create)
	protected.GET("/reports", reports.List,
		middleware.NewResponseCache(config.LoadCacheConfig(), rdb))
	protected.PATCH("/reports/:id/validate", reports.Validate,
		middleware.RestrictTo(model.RoleOfficial, model.RoleAnalyst))
}
