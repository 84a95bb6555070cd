package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/documents"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/simplify", h.simplify)
	rg.POST("/query", h.query)
	rg.GET("/query/suggestions", h.suggestions)
}

type simplifyRequest struct {
	Clause string `json:"clause"`
}

type queryRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentId"`
}

type suggestionsResponse struct {
	Welcome     string   `json:"welcome"`
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) simplify(c *gin.Context) {
	var req simplifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	note, err := h.Svc.Simplify(c.Request.Context(), req.Clause)
	if err != nil {
		writeError(c, err, "failed to simplify clause")
		return
	}
	respond.OK(c, note)
}

func (h *Handler) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	answer, err := h.Svc.Ask(c.Request.Context(), middleware.UserIDFromContext(c), req.Question, req.DocumentID)
	if err != nil {
		writeError(c, err, "failed to answer question")
		return
	}
	if answer.DocumentID != "" {
		c.Set(middleware.DocumentIDKey, answer.DocumentID)
	}
	respond.OK(c, answer)
}

func (h *Handler) suggestions(c *gin.Context) {
	respond.OK(c, suggestionsResponse{Welcome: Welcome(), Suggestions: Suggestions()})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
