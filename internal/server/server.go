package server

import (
	"log/slog"

	"github.com/ButyrinIA/social/internal/config"
	"github.com/ButyrinIA/social/internal/engagement"
	"github.com/ButyrinIA/social/internal/feed"
	"github.com/ButyrinIA/social/internal/graph"
	"github.com/ButyrinIA/social/internal/storage"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// Метрики регистрируются в реестре один раз на процесс, поэтому
// middleware и обработчик создаются на уровне пакета.
var (
	metricsMiddleware = echoprometheus.NewMiddleware("social")
	metricsHandler    = echoprometheus.NewHandler()
)

type Server struct {
	cfg     *config.Config
	storage storage.Storage
	engine  *engagement.Engine
	feed    *feed.Assembler
}

func New(cfg *config.Config, store storage.Storage, socialGraph graph.Graph) *Server {
	return &Server{
		cfg:     cfg,
		storage: store,
		engine:  engagement.New(store),
		feed:    feed.New(store, socialGraph, cfg.Feed.MaxPageSize),
	}
}

func (s *Server) Run() error {
	return s.router().Start(":" + s.cfg.Server.Port)
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(slogecho.New(slog.Default()))
	e.Use(metricsMiddleware)

	e.GET("/metrics", metricsHandler)
	e.GET("/health", s.handleHealth)
	e.GET("/token", s.handleToken)

	e.GET("/feed", s.handleFeed, s.requireAuth)
	e.POST("/create", s.handleCreatePost, s.requireAuth)
	e.POST("/like/:id", s.handleToggleLike, s.requireAuth)
	e.POST("/reply/:id", s.handleReply, s.requireAuth)
	e.GET("/user/:id/posts", s.handleUserPosts)
	e.GET("/:id", s.handleGetPost)
	e.DELETE("/:id", s.handleDeletePost, s.requireAuth)

	return e
}
