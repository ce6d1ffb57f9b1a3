package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Potowai/nomad-nantes/internal/chat"
	"github.com/Potowai/nomad-nantes/internal/events"
	"github.com/Potowai/nomad-nantes/internal/mapsync"
	"github.com/Potowai/nomad-nantes/internal/planner"
	"github.com/Potowai/nomad-nantes/internal/profile"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errMissingCatalog  = errors.New("event catalog dependency required")
	errMissingEngine   = errors.New("map engine dependency required")
	errMissingChat     = errors.New("chat session dependency required")
	errMissingProfiles = errors.New("profile service dependency required")
)

// PlaceAdvisor is the AI collaborator behind the planner endpoints.
type PlaceAdvisor interface {
	Enabled() bool
	Recommend(ctx context.Context, city string, interests []string) []planner.Recommendation
	SearchPlaces(ctx context.Context, query string) []planner.Place
}

type Dependencies struct {
	Catalog        *events.Catalog
	Engine         *mapsync.Engine
	Chat           *chat.Session
	Profiles       *profile.Service
	Advisor        PlaceAdvisor
	Matcher        *planner.CategoryMatcher
	Realtime       *RealtimeDispatcher
	MetricsHandler http.Handler
	Logger         *zap.Logger
	Clock          func() time.Time
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Catalog == nil {
		return nil, errMissingCatalog
	}
	if deps.Engine == nil {
		return nil, errMissingEngine
	}
	if deps.Chat == nil {
		return nil, errMissingChat
	}
	if deps.Profiles == nil {
		return nil, errMissingProfiles
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	matcher := deps.Matcher
	if matcher == nil {
		built, err := planner.NewCategoryMatcher()
		if err != nil {
			return nil, err
		}
		matcher = built
	}
	advisor := deps.Advisor
	if advisor == nil {
		advisor = planner.NewClient(planner.Config{Logger: logger})
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		catalog:  deps.Catalog,
		engine:   deps.Engine,
		chat:     deps.Chat,
		profiles: deps.Profiles,
		advisor:  advisor,
		matcher:  matcher,
		realtime: deps.Realtime,
		logger:   logger,
		clock:    clock,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	router.GET("/profile", handler.handleGetProfile)
	router.POST("/onboarding", handler.handleOnboarding)

	router.GET("/chats", handler.handleListChats)
	router.GET("/chats/:id/messages", handler.handleListMessages)
	router.POST("/chats/:id/messages", handler.handleSendMessage)

	router.GET("/events", handler.handleListEvents)
	router.GET("/events/:id", handler.handleGetEvent)
	router.POST("/events", handler.handleCreateEvent)

	router.GET("/map", handler.handleMapSnapshot)
	router.PUT("/map/query", handler.handleSetQuery)
	router.POST("/map/markers/:id/click", handler.handleMarkerClick)
	router.POST("/map/presentation", handler.handlePresentation)
	router.DELETE("/map/selection", handler.handleClearSelection)

	router.POST("/planner/recommendations", handler.handleRecommendations)
	router.POST("/planner/handoff", handler.handleHandoff)
	router.GET("/places", handler.handleSearchPlaces)

	if deps.Realtime != nil {
		router.GET("/realtime", handler.handleRealtimeStream)
	}

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	})
}

type httpHandler struct {
	catalog  *events.Catalog
	engine   *mapsync.Engine
	chat     *chat.Session
	profiles *profile.Service
	advisor  PlaceAdvisor
	matcher  *planner.CategoryMatcher
	realtime *RealtimeDispatcher
	logger   *zap.Logger
	clock    func() time.Time
}

func (h *httpHandler) publish(channel, eventType string, ids ...string) {
	if h.realtime == nil {
		return
	}
	h.realtime.Publish(RealtimeMessage{
		Channel:   channel,
		EventType: eventType,
		IDs:       ids,
		Timestamp: h.clock().UTC(),
	})
}

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"error": code})
}
