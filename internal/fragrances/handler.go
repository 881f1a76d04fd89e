package fragrances

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/fragrances", h.search)
	rg.GET("/fragrances/:id", h.get)
}

func (h *Handler) search(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "limit must be a number", nil)
		return
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "offset must be a number", nil)
		return
	}
	sampleOnly, _ := strconv.ParseBool(c.Query("sample_only"))

	page, err := h.Svc.Search(c.Request.Context(), Filter{
		Query:       c.Query("q"),
		ScentFamily: c.Query("family"),
		Gender:      c.Query("gender"),
		SampleOnly:  sampleOnly,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again", nil)
		return
	}
	respond.OK(c, page)
}

func (h *Handler) get(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	f, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "fragrance not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again", nil)
		return
	}
	respond.OK(c, f)
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
