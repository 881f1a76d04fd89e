package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/server/respond"
	"scentmatch-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.UpsertFromAuth(c.Request.Context(), User{
		ID:          middleware.UserIDFromContext(c),
		Email:       middleware.UserEmailFromContext(c),
		DisplayName: middleware.UserNameFromContext(c),
		AvatarURL:   middleware.UserPictureFromContext(c),
	})
	if err != nil {
		telemetry.Error("users.upsert_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":              user.ID,
		"email":           user.Email,
		"displayName":     user.DisplayName,
		"avatarUrl":       user.AvatarURL,
		"engagementScore": user.EngagementScore,
		"createdAt":       user.CreatedAt,
	})
}
