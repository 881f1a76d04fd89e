package quiz

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/server/respond"
)

type Handler struct {
	Sessions *SessionService
}

func NewHandler(sessions *SessionService) *Handler {
	return &Handler{Sessions: sessions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quiz/sessions/:token", h.getSession)
}

func (h *Handler) getSession(c *gin.Context) {
	if h.Sessions == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	session, err := h.Sessions.Get(c.Request.Context(), c.Param("token"), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quiz session not found", nil)
		case errors.Is(err, ErrSessionExpired):
			respond.Error(c, http.StatusGone, "session_expired", "quiz session expired, please retake the quiz", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again", nil)
		}
		return
	}
	c.Set("quizSessionToken", session.Token)
	respond.OK(c, session)
}
