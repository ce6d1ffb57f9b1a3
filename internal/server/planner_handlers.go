package server

import (
	"net/http"
	"strings"

	"github.com/Potowai/nomad-nantes/internal/planner"
	"github.com/gin-gonic/gin"
)

const defaultPlannerCity = "Nantes"

type recommendationsRequestPayload struct {
	City      string   `json:"city"`
	Interests []string `json:"interests"`
}

func (h *httpHandler) handleRecommendations(c *gin.Context) {
	var request recommendationsRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	city := strings.TrimSpace(request.City)
	if city == "" {
		city = defaultPlannerCity
	}
	recommendations := h.advisor.Recommend(c.Request.Context(), city, request.Interests)
	c.JSON(http.StatusOK, gin.H{
		"enabled":         h.advisor.Enabled(),
		"recommendations": recommendations,
	})
}

func (h *httpHandler) handleHandoff(c *gin.Context) {
	var recommendation planner.Recommendation
	if err := c.ShouldBindJSON(&recommendation); err != nil || strings.TrimSpace(recommendation.PlaceName) == "" {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	c.JSON(http.StatusOK, planner.Handoff(h.matcher, recommendation, h.clock()))
}

func (h *httpHandler) handleSearchPlaces(c *gin.Context) {
	places := h.advisor.SearchPlaces(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"places": places})
}
