package handler

import (
	"context"
	"io"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Links          *LinkHandler
	Health         *HealthHandler
	RequestTimeout time.Duration
	// LogWriter получает access log gin; nil отключает его
	LogWriter io.Writer
}

// NewRouter собирает gin engine со всеми маршрутами сервиса
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	// Пути со слешем в конце отвечают 400, а не редиректом
	router.RedirectTrailingSlash = false

	if cfg.LogWriter != nil {
		router.Use(gin.LoggerWithWriter(cfg.LogWriter))
	}
	router.Use(gin.Recovery())

	// Access-Control-Allow-Origin нужен и на ответах без Origin
	router.Use(allowAnyOrigin())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(requestTimeout(cfg.RequestTimeout))

	router.NoRoute(cfg.Links.InvalidRequest)
	router.NoMethod(cfg.Links.InvalidRequest)

	api := router.Group("/api")
	{
		api.GET("/links/:shortCode", cfg.Links.GetLinkStats)
		if cfg.Health != nil {
			api.GET("/health", cfg.Health.Health)
		}
	}

	router.POST("/"+CreatePath, cfg.Links.CreateLink)
	router.GET("/:shortCode", cfg.Links.ResolveLink)

	return router
}

func allowAnyOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}

func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
