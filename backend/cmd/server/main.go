package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"friendnet/backend/internal/graph"
	"friendnet/backend/internal/social"
	"friendnet/backend/pkg/config"
	apperrors "friendnet/backend/pkg/errors"
	"friendnet/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting friendship graph server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Pick the store backend
	var store social.Store
	switch cfg.StoreBackend {
	case config.StoreNeo4j:
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		defer driver.Close(context.Background())

		if err := driver.VerifyConnectivity(context.Background()); err != nil {
			log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
		}

		graphStore := graph.NewStore(driver)
		if err := graphStore.EnsureConstraints(context.Background()); err != nil {
			log.Warn("Failed to create constraints (may already exist)", zap.Error(err))
		}
		store = graphStore
	default:
		store = social.NewMemoryStore()
	}
	log.Info("Store backend ready", zap.String("backend", cfg.StoreBackend))

	projector := &social.Projector{
		Radius:         cfg.LayoutRadius,
		CenterX:        cfg.LayoutCenterX,
		CenterY:        cfg.LayoutCenterY,
		ScoreThreshold: cfg.ScoreThreshold,
		Jitter:         cfg.LayoutJitter,
	}
	if cfg.LayoutJitter > 0 {
		projector.Seed(time.Now().UnixNano())
	}

	service := social.NewService(store, projector)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(service, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newRouter builds the HTTP surface over the graph engine.
func newRouter(service *social.Service, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		api.GET("/users", func(c *gin.Context) {
			users, err := service.ListUsers(c.Request.Context())
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"users": users})
		})

		api.POST("/users", func(c *gin.Context) {
			var req social.UserInput
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			user, err := service.CreateUser(c.Request.Context(), req)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusCreated, user)
		})

		api.GET("/users/search", func(c *gin.Context) {
			users, err := service.Search(c.Request.Context(), c.Query("q"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"users": users})
		})

		api.GET("/users/:id", func(c *gin.Context) {
			user, err := service.GetUser(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})

		api.PUT("/users/:id", func(c *gin.Context) {
			var req social.UserUpdate
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			user, err := service.UpdateUser(c.Request.Context(), c.Param("id"), req)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})

		api.DELETE("/users/:id", func(c *gin.Context) {
			if err := service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
		})

		api.POST("/users/:id/friends/:friendId", func(c *gin.Context) {
			if err := service.Link(c.Request.Context(), c.Param("id"), c.Param("friendId")); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "linked"})
		})

		api.DELETE("/users/:id/friends/:friendId", func(c *gin.Context) {
			if err := service.Unlink(c.Request.Context(), c.Param("id"), c.Param("friendId")); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "unlinked"})
		})

		api.DELETE("/users/:id/hobbies/:hobby", func(c *gin.Context) {
			user, err := service.RemoveHobby(c.Request.Context(), c.Param("id"), c.Param("hobby"))
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})

		api.GET("/graph", func(c *gin.Context) {
			view, err := service.Project(c.Request.Context())
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, view)
		})

		api.GET("/stats", func(c *gin.Context) {
			stats, err := service.Stats(c.Request.Context())
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, stats)
		})

		api.GET("/hobbies", func(c *gin.Context) {
			hobbies, err := service.Hobbies(c.Request.Context())
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"hobbies": hobbies})
		})
	}

	return router
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeStore):
		log.Error("Store failure", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		log.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
