package app

import (
	"net/http"

	"github.com/hirmezb/tasktracker/internal/auth"
	"github.com/hirmezb/tasktracker/internal/cache"
	"github.com/hirmezb/tasktracker/internal/config"
	"github.com/hirmezb/tasktracker/internal/handlers"
	"github.com/hirmezb/tasktracker/internal/health"
	"github.com/hirmezb/tasktracker/internal/logging"
	"github.com/hirmezb/tasktracker/internal/repo"
	"github.com/hirmezb/tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

const apiPrefix = "/api"

// Deps are the storage-level dependencies the routes are built from.
// Redis is optional; without it the list cache and token revocation are off.
type Deps struct {
	Tasks    repo.TaskRepo
	Users    repo.UserRepo
	Redis    *redis.Client
	Checkers []health.Checker
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log logging.Logger, deps Deps) {
	readiness := health.NewService(deps.Checkers...)

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/ready", readyHandler(readiness, log))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group(apiPrefix)

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL.Duration())
	revoked := auth.NewRevocationStore(deps.Redis)
	requireAuth := auth.RequireBearer(tokens, revoked)

	userSvc := service.NewUserService(deps.Users, tokens)
	authHandler := handlers.NewAuthHandler(userSvc, revoked, log)
	registerUserRoutes(api, authHandler, requireAuth)

	var taskCache *cache.TaskCache
	if deps.Redis != nil {
		taskCache = cache.NewTaskCache(deps.Redis, cfg.Redis.DefaultTTL.Duration())
	}
	taskSvc := service.NewTaskService(deps.Tasks, taskCache, log.With("component", "tasks"))
	taskHandler := handlers.NewTaskHandler(taskSvc, log)
	registerTaskRoutes(api.Group("", requireAuth), taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"ready":   "/ready",
			"api":     apiPrefix,
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func readyHandler(readiness *health.Service, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := readiness.Ready(c.Request.Context()); err != nil {
			log.Warn(c.Request.Context(), "readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "dependency unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "checks": readiness.Names()})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:id", h.GetByID)
	api.PUT("/tasks/:id", h.Update)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	api.POST("/users/register", h.Register)
	api.POST("/users/login", h.Login)
	api.POST("/users/logout", requireAuth, h.Logout)
}
