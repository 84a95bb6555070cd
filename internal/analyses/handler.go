package analyses

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/risks", h.runRisks)
	rg.POST("/documents/:id/summary", h.runSummary)
	rg.POST("/documents/:id/insights", h.runInsights)
	rg.GET("/documents/:id/analyses", h.listByDocument)
	rg.GET("/analyses/:id", h.get)
	rg.GET("/analyses/:id/report", h.report)
	rg.GET("/analyses/:id/records/:recordId/report", h.recordReport)
}

func (h *Handler) runRisks(c *gin.Context) {
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)
	a, err := h.Svc.RunRisks(c.Request.Context(), middleware.UserIDFromContext(c), documentID, regenerate(c))
	if err != nil {
		writeError(c, err, "failed to assess risks")
		return
	}
	markRun(c, a)
	respond.JSON(c, http.StatusCreated, toResponse(a))
}

func (h *Handler) runSummary(c *gin.Context) {
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)
	a, err := h.Svc.RunSummary(c.Request.Context(), middleware.UserIDFromContext(c), documentID, regenerate(c))
	if err != nil {
		writeError(c, err, "failed to summarise document")
		return
	}
	markRun(c, a)
	respond.JSON(c, http.StatusCreated, toResponse(a))
}

func (h *Handler) runInsights(c *gin.Context) {
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)
	in, err := h.Svc.RunInsights(c.Request.Context(), middleware.UserIDFromContext(c), documentID, regenerate(c))
	if err != nil {
		writeError(c, err, "failed to analyse document")
		return
	}
	respond.JSON(c, http.StatusCreated, InsightsResponse{
		Risks:   toResponse(in.Risks),
		Summary: toResponse(in.Summary),
	})
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch analysis")
		return
	}
	markRun(c, a)
	respond.Tagged(c, a.Fingerprint, toResponse(a))
}

func (h *Handler) listByDocument(c *gin.Context) {
	documentID := c.Param("id")
	c.Set(middleware.DocumentIDKey, documentID)
	runs, err := h.Svc.ListByDocument(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		writeError(c, err, "failed to list analyses")
		return
	}
	resp := make([]AnalysisResponse, 0, len(runs))
	for _, a := range runs {
		resp = append(resp, toResponse(a))
	}
	respond.OK(c, resp)
}

func (h *Handler) report(c *gin.Context) {
	c.Set(middleware.AnalysisIDKey, c.Param("id"))
	export, err := h.Svc.Report(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to export analysis")
		return
	}
	respond.Attachment(c, export.FileName, export.Body)
}

func (h *Handler) recordReport(c *gin.Context) {
	c.Set(middleware.AnalysisIDKey, c.Param("id"))
	export, err := h.Svc.RecordReport(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), c.Param("recordId"))
	if err != nil {
		writeError(c, err, "failed to export record")
		return
	}
	respond.Attachment(c, export.FileName, export.Body)
}

func regenerate(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("regenerate"))
	return err == nil && v
}

func markRun(c *gin.Context, a Analysis) {
	c.Set(middleware.DocumentIDKey, a.DocumentID)
	c.Set(middleware.AnalysisIDKey, a.ID)
	c.Set(middleware.OutcomeKey, string(a.Outcome))
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ErrRecordNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "record not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, documents.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
