package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Potowai/nomad-nantes/internal/events"
	"github.com/Potowai/nomad-nantes/internal/mapsync"
	"github.com/Potowai/nomad-nantes/internal/profile"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const listView = "list"

func (h *httpHandler) handleListEvents(c *gin.Context) {
	query := c.Query("q")
	if c.Query("view") == listView {
		activities := make([]events.Activity, 0)
		for event := range h.catalog.Filter(query) {
			activities = append(activities, events.ToActivity(event))
		}
		c.JSON(http.StatusOK, gin.H{"activities": activities})
		return
	}
	matched := make([]events.Event, 0)
	for event := range h.catalog.Filter(query) {
		matched = append(matched, event)
	}
	c.JSON(http.StatusOK, gin.H{"events": matched})
}

func (h *httpHandler) handleGetEvent(c *gin.Context) {
	event, ok := h.catalog.FindByID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "event_not_found")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	var draft events.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	if strings.TrimSpace(draft.CreatorName) == "" {
		current, err := h.profiles.Load()
		if err != nil {
			h.logger.Warn("profile unavailable for event creator", zap.Error(err))
			current = profile.Default
		}
		draft.CreatorName = current.Name
	}
	if strings.TrimSpace(draft.CreatorAvatar) == "" {
		draft.CreatorAvatar = profile.AvatarURL(draft.CreatorName)
	}

	event, err := h.engine.CreateEvent(draft)
	if errors.Is(err, events.ErrInvalidDraft) {
		respondError(c, http.StatusBadRequest, "invalid_event")
		return
	}
	if err != nil {
		h.logger.Error("failed to create event", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "event_create_failed")
		return
	}
	h.publish(RealtimeChannelMap, RealtimeEventEventCreated, event.ID)
	c.JSON(http.StatusCreated, event)
}

func (h *httpHandler) handleMapSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

type setQueryRequestPayload struct {
	Query string `json:"query"`
}

func (h *httpHandler) handleSetQuery(c *gin.Context) {
	var request setQueryRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	result := h.engine.SetQuery(request.Query)
	h.publish(RealtimeChannelMap, RealtimeEventMarkersChanged, h.engine.MarkerIDs()...)
	c.JSON(http.StatusOK, gin.H{"reconciliation": result, "map": h.engine.Snapshot()})
}

func (h *httpHandler) handleMarkerClick(c *gin.Context) {
	if err := h.engine.Click(c.Param("id")); err != nil {
		if errors.Is(err, mapsync.ErrMarkerNotFound) {
			respondError(c, http.StatusNotFound, "marker_not_found")
			return
		}
		h.logger.Error("marker click failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "click_failed")
		return
	}
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

type presentationRequestPayload struct {
	Mode mapsync.Mode `json:"mode"`
}

func (h *httpHandler) handlePresentation(c *gin.Context) {
	var request presentationRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	switch request.Mode {
	case mapsync.ModeMap:
		h.engine.ShowMap()
	case mapsync.ModeList:
		h.engine.ShowList()
	default:
		respondError(c, http.StatusBadRequest, "invalid_mode")
		return
	}
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

func (h *httpHandler) handleClearSelection(c *gin.Context) {
	h.engine.ClearSelection()
	c.JSON(http.StatusOK, h.engine.Snapshot())
}
