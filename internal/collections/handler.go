package collections

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the collection routes. rg must already require a signed-in user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/collections", h.list)
	rg.POST("/collections", h.add)
	rg.GET("/collections/stats", h.stats)
	rg.PATCH("/collections/:id", h.update)
	rg.DELETE("/collections/:id", h.remove)
}

type addRequest struct {
	FragranceID string `json:"fragrance_id" binding:"required"`
	Status      Status `json:"status"`
	Rating      *int   `json:"rating"`
	Notes       string `json:"notes" binding:"max=2000"`
}

type updateRequest struct {
	Status *Status `json:"status"`
	Rating *int    `json:"rating"`
	Notes  *string `json:"notes"`
}

func (h *Handler) list(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), Status(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) add(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "fragrance_id is required", nil)
		return
	}
	item, err := h.Svc.Add(c.Request.Context(), middleware.UserIDFromContext(c), AddInput{
		FragranceID: req.FragranceID,
		Status:      req.Status,
		Rating:      req.Rating,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, item)
}

func (h *Handler) update(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	item, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), Patch{
		Status: req.Status,
		Rating: req.Rating,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, item)
}

func (h *Handler) remove(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if err := h.Svc.Remove(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stats(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, stats)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "collection item not found", nil)
	case errors.Is(err, ErrFragranceNotFound):
		respond.Error(c, http.StatusNotFound, "fragrance_not_found", "fragrance not found", nil)
	case errors.Is(err, ErrDuplicate):
		respond.Error(c, http.StatusConflict, "duplicate", "fragrance already in collection", nil)
	case errors.Is(err, ErrInvalidStatus):
		respond.Error(c, http.StatusBadRequest, "invalid_status", "status must be owned, wishlist or tried", nil)
	case errors.Is(err, ErrInvalidRating):
		respond.Error(c, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again", nil)
	}
}
