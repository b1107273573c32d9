package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/admin"
	"github.com/Atul2512anand/buildforage5/internal/auth"
	"github.com/Atul2512anand/buildforage5/internal/messages"
	"github.com/Atul2512anand/buildforage5/internal/metrics"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/posts"
	"github.com/Atul2512anand/buildforage5/internal/realtime"
	"github.com/Atul2512anand/buildforage5/internal/users"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

// deps is everything the router needs. Avatars may be nil.
type deps struct {
	orc          *workflow.Orchestrator
	jwt          *auth.JWTService
	hub          *realtime.Hub
	metrics      *metrics.Metrics
	emails       queue.Enqueuer
	avatars      users.AvatarStore
	corsOrigins  []string
	supportEmail string
	pollOptions  realtime.Options
	logger       *zap.Logger
}

func newRouter(d deps) *gin.Engine {
	authHandler := auth.NewHandler(d.orc, d.jwt, d.emails, d.logger)
	postHandler := posts.NewHandler(d.orc)
	userHandler := users.NewHandler(d.orc.Store(), d.avatars, d.emails, d.supportEmail, d.logger)
	messageHandler := messages.NewHandler(d.orc)
	adminHandler := admin.NewHandler(d.orc, d.emails, d.logger)

	// The websocket resolves the same live session the HTTP API does.
	wsAuth := func(token string) (userID, role string, err error) {
		sid, err := d.jwt.SessionID(token)
		if err != nil {
			return "", "", err
		}
		_, u, err := d.orc.Resume(context.Background(), sid)
		if err != nil {
			return "", "", err
		}
		return u.ID, string(u.Role), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.corsOrigins))
	router.Use(middleware.Logger(d.logger))
	router.Use(d.metrics.Middleware())

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", d.metrics.Handler())

	public := router.Group("")
	authHandler.RegisterPublic(public)
	public.POST("/contact", userHandler.Contact)
	public.GET("/ws", realtime.ServeWs(d.hub, d.orc.Store(), wsAuth, d.pollOptions, d.logger))

	api := router.Group("")
	api.Use(middleware.JWT(d.jwt, d.orc))
	authHandler.Register(api)
	postHandler.Register(api)
	userHandler.Register(api)
	messageHandler.Register(api)
	adminHandler.Register(api)

	return router
}
