package server

import (
	"errors"
	"net/http"

	"github.com/Potowai/nomad-nantes/internal/chat"
	"github.com/Potowai/nomad-nantes/internal/profile"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type profileResponsePayload struct {
	Profile        profile.Profile `json:"profile"`
	AvatarURL      string          `json:"avatarUrl"`
	OnboardingDone bool            `json:"onboardingDone"`
}

func (h *httpHandler) handleGetProfile(c *gin.Context) {
	done, err := h.profiles.OnboardingDone()
	if err != nil {
		h.logger.Error("failed to read onboarding flag", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "profile_unavailable")
		return
	}
	current, err := h.profiles.Load()
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "profile_unavailable")
		return
	}
	c.JSON(http.StatusOK, profileResponsePayload{
		Profile:        current,
		AvatarURL:      profile.AvatarURL(current.Name),
		OnboardingDone: done,
	})
}

func (h *httpHandler) handleOnboarding(c *gin.Context) {
	var request profile.Profile
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	stored, err := h.profiles.Complete(request)
	if errors.Is(err, profile.ErrInvalidProfile) {
		respondError(c, http.StatusBadRequest, "invalid_profile")
		return
	}
	if err != nil {
		h.logger.Error("failed to complete onboarding", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "onboarding_failed")
		return
	}
	c.JSON(http.StatusOK, profileResponsePayload{
		Profile:        stored,
		AvatarURL:      profile.AvatarURL(stored.Name),
		OnboardingDone: true,
	})
}

func (h *httpHandler) handleListChats(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.chat.Activate(ctx, chat.SurfaceList); err != nil {
		h.logger.Error("failed to activate chat list", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "chat_unavailable")
		return
	}
	summaries, err := h.chat.ChatList(ctx)
	if err != nil {
		h.logger.Error("failed to build chat list", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "chat_unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

func (h *httpHandler) handleListMessages(c *gin.Context) {
	if c.Param("id") != h.chat.ChatID() {
		respondError(c, http.StatusNotFound, "chat_not_found")
		return
	}
	if err := h.chat.Activate(c.Request.Context(), chat.SurfaceDetail); err != nil {
		h.logger.Error("failed to activate chat detail", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "chat_unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chatId": h.chat.ChatID(), "messages": h.chat.Messages()})
}

type sendMessageRequestPayload struct {
	Text string `json:"text"`
}

func (h *httpHandler) handleSendMessage(c *gin.Context) {
	if c.Param("id") != h.chat.ChatID() {
		respondError(c, http.StatusNotFound, "chat_not_found")
		return
	}
	var request sendMessageRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request")
		return
	}
	ctx := c.Request.Context()
	if !h.chat.Ready() {
		if err := h.chat.Activate(ctx, chat.SurfaceDetail); err != nil {
			h.logger.Error("failed to activate chat detail", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "chat_unavailable")
			return
		}
	}
	message, sent, err := h.chat.SendMessage(ctx, request.Text)
	if err != nil {
		h.logger.Error("failed to send chat message", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "send_failed")
		return
	}
	if sent {
		h.publish(RealtimeChannelChat, RealtimeEventMessageAdded, message.ID)
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "messages": h.chat.Messages()})
}
