package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stitchlink/config"
	"stitchlink/internal/handler"
	"stitchlink/internal/middleware"
	"stitchlink/internal/transport/httpdto"
	"stitchlink/pkg/database"
	"stitchlink/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Orders  *handler.OrderHandler
	Chat    *handler.ChatHandler
	Reviews *handler.ReviewHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, db *gorm.DB) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authed := s.engine.Group("/v1")
	authed.Use(middleware.IdentityMiddleware([]byte(s.config.JWTSecret)))
	{
		orders := authed.Group("/orders")
		{
			orders.POST("", handlers.Orders.Request)
			orders.GET("", handlers.Orders.List)
			orders.GET("/:id", handlers.Orders.GetByID)
			orders.POST("/:id/quote", handlers.Orders.Quote)
			orders.POST("/:id/accept", handlers.Orders.Accept)
			orders.POST("/:id/status", handlers.Orders.Advance)
			orders.POST("/:id/review", handlers.Reviews.Submit)
		}

		conversations := authed.Group("/conversations")
		{
			conversations.POST("/ensure", handlers.Chat.Ensure)
			conversations.GET("", handlers.Chat.List)
			conversations.GET("/:id", handlers.Chat.GetByID)
			conversations.POST("/:id/messages", handlers.Chat.SendMessage)
			conversations.GET("/:id/messages", handlers.Chat.ListMessages)
			conversations.POST("/:id/read", handlers.Chat.MarkRead)
		}

		authed.POST("/attachments", handlers.Chat.UploadAttachment)
		authed.GET("/tailors/:id/reviews", handlers.Reviews.ListForTailor)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}

// Engine is exposed for route-level tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
