package app

import (
	"Tracker/internal/auth"
	"Tracker/internal/cache"
	"Tracker/internal/config"
	"Tracker/internal/handlers"
	"Tracker/internal/repo"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)

	protected := r.Group("", auth.RequireAuth(tokens))
	habitRepo := repo.NewPGHabitRepo(db)
	habitCache := cache.NewHabitCache(rdb, cfg.Redis.DefaultTTL.Duration())
	habitSvc := service.NewHabitService(habitRepo, habitCache)
	habitHandler := handlers.NewHabitHandler(habitSvc)
	registerHabitRoutes(protected, habitHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Habit Tracker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerHabitRoutes(g *gin.RouterGroup, h *handlers.HabitHandler) {
	g.GET("/habits", h.List)
	g.POST("/habits", h.Create)
	g.PUT("/habits/:id", h.Update)
	g.DELETE("/habits/:id", h.Delete)
	g.POST("/habits/:id/log", h.Log)
	g.GET("/habits/:id/progress", h.Progress)
}
