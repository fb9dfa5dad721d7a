package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabdesk/config"
	"collabdesk/internal/handler"
	"collabdesk/internal/middleware"
	"collabdesk/internal/transport/httpdto"
	"collabdesk/pkg/logger"

	"github.com/gin-gonic/gin"
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
	Conversations *handler.ConversationHandler
	Messages      *handler.MessageHandler
	Notifications *handler.NotificationHandler
	Attachments   *handler.AttachmentHandler
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

func (s *Server) SetupRoutes(handlers *Handlers, health func(ctx context.Context) error) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	conversations := s.engine.Group("/v1/conversations")
	{
		conversations.GET("", handlers.Conversations.List)
		conversations.POST("", handlers.Conversations.Create)
		conversations.GET("/:id", handlers.Conversations.Get)
		conversations.POST("/:id/select", handlers.Conversations.Select)
		conversations.POST("/deselect", handlers.Conversations.Deselect)
		conversations.POST("/:id/read", handlers.Conversations.MarkRead)
		conversations.GET("/:id/messages", handlers.Conversations.Messages)
		conversations.POST("/:id/messages", handlers.Messages.Send)
		conversations.POST("/:id/typing", handlers.Conversations.Typing)
	}

	notifications := s.engine.Group("/v1/notifications")
	{
		notifications.GET("", handlers.Notifications.List)
		notifications.POST("/:id/read", handlers.Notifications.MarkRead)
		notifications.POST("/read-all", handlers.Notifications.MarkAllRead)
		notifications.DELETE("/:id", handlers.Notifications.Delete)
		notifications.GET("/preferences", handlers.Notifications.GetPreferences)
		notifications.PATCH("/preferences", handlers.Notifications.UpdatePreferences)
	}

	platform := s.engine.Group("/v1/platform")
	{
		platform.POST("/visibility", handlers.Notifications.Visibility)
		platform.POST("/permission", handlers.Notifications.Permission)
	}

	s.engine.POST("/v1/attachments", handlers.Attachments.Upload)
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
