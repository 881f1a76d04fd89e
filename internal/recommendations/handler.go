package recommendations

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/server/middleware"
	"scentmatch-backend/internal/shared/server/respond"
)

// Generator is satisfied by *Engine.
type Generator interface {
	Generate(ctx context.Context, req Request) Result
}

type Handler struct {
	Engine Generator
}

func NewHandler(engine Generator) *Handler {
	return &Handler{Engine: engine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations", h.create)
}

// create always answers 200 with a result once the body parses.
func (h *Handler) create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "request body must be valid JSON", nil)
		return
	}
	req.UserID = middleware.UserIDFromContext(c)

	res := h.Engine.Generate(c.Request.Context(), req)
	c.Set("strategy", res.Metadata.StrategyUsed)
	if res.QuizSessionToken != "" {
		c.Set("quizSessionToken", res.QuizSessionToken)
	}
	respond.OK(c, res)
}
