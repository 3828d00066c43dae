package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"groupchat/config"
	"groupchat/internal/handler"
	"groupchat/internal/middleware"
	"groupchat/internal/transport/httpdto"
	"groupchat/pkg/database"
	"groupchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	db         *gorm.DB
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Chats         *handler.ChatHandler
	Messages      *handler.MessageHandler
	Friends       *handler.FriendHandler
	Notifications *handler.NotificationHandler
	Profiles      *handler.ProfileHandler
}

func New(cfg *config.Config, db *gorm.DB, l *logger.Logger) *Server {
	switch cfg.AppMode {
	case ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		db:     db,
		logger: l,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(h *Handlers, tokens middleware.TokenParser, users middleware.UserLookup) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(tokens, users, s.logger))

	chats := v1.Group("/chats")
	{
		chats.POST("", h.Chats.Create)
		chats.GET("", h.Chats.List)
		chats.GET("/:chat_id", h.Chats.Get)
		chats.POST("/:chat_id/members", h.Chats.AddMember)
		chats.DELETE("/:chat_id/members/:user_id", h.Chats.RemoveMember)
		chats.POST("/:chat_id/messages", h.Messages.Send)
		chats.GET("/:chat_id/messages", h.Messages.List)
	}

	messages := v1.Group("/messages")
	{
		messages.GET("/:message_id", h.Messages.Get)
		messages.PATCH("/:message_id", h.Messages.Edit)
		messages.DELETE("/:message_id", h.Messages.Delete)
		messages.POST("/:message_id/read", h.Messages.MarkRead)
		messages.POST("/:message_id/attachments", h.Messages.Attach)
		messages.GET("/:message_id/attachments", h.Messages.ListAttachments)
	}

	friends := v1.Group("/friends")
	{
		friends.GET("", h.Friends.Friends)
		friends.POST("/requests", h.Friends.SendRequest)
		friends.GET("/requests/incoming", h.Friends.Incoming)
		friends.GET("/requests/outgoing", h.Friends.Outgoing)
		friends.POST("/requests/:request_id/accept", h.Friends.Accept)
	}

	notifications := v1.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread", h.Notifications.UnreadCount)
		notifications.POST("/:notification_id/read", h.Notifications.MarkRead)
		notifications.DELETE("/:notification_id", h.Notifications.Delete)
	}

	v1.GET("/profile", h.Profiles.Get)
	v1.PATCH("/profile", h.Profiles.Update)
}

// Start serves until ctx is cancelled, then shuts down within five seconds.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Errorf("Error in starting the server: %s", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}
	s.logger.Infof("Server stopped gracefully")
	return nil
}
