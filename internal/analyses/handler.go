package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insight-backend/internal/documents"
	"insight-backend/internal/shared/server/middleware"
	"insight-backend/internal/shared/server/respond"
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
	rg.POST("/analyses", h.create)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
	rg.DELETE("/analyses/:id", h.cancel)
	rg.POST("/documents/:id/analyze", h.analyzeDocument)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Create(ctx, userID, CreateInput{
		Topic:       req.Topic,
		Language:    req.Language,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		h.respondCreateError(c, err)
		return
	}

	c.Set("analysisId", analysis.ID)
	respond.JSON(c, http.StatusAccepted, toResponse(analysis))
}

func (h *Handler) analyzeDocument(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	var req analyzeDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Create(ctx, userID, CreateInput{
		Language:    req.Language,
		Model:       req.Model,
		Temperature: req.Temperature,
		DocumentID:  documentID,
	})
	if err != nil {
		h.respondCreateError(c, err)
		return
	}

	c.Set("analysisId", analysis.ID)
	c.Set("documentId", documentID)
	respond.JSON(c, http.StatusAccepted, toResponse(analysis))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	analysis, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(analysis))
}

func (h *Handler) list(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]AnalysisResponse, 0, len(items))
	for _, a := range items {
		resp = append(resp, toResponse(a))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) cancel(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")

	err := h.Svc.Cancel(c.Request.Context(), userID, analysisID)
	switch {
	case err == nil:
		c.Set("analysisId", analysisID)
		c.Set("statusTransition", StatusCanceled)
		respond.JSON(c, http.StatusOK, gin.H{
			"analysisId": analysisID,
			"status":     StatusCanceled,
		})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ErrNotCancelable):
		respond.Error(c, http.StatusConflict, "not_cancelable", "analysis is already running or finished", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to cancel analysis", nil)
	}
}

func (h *Handler) respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, documents.ErrNotExtracted):
		respond.Error(c, http.StatusUnprocessableEntity, "not_extracted", "document text could not be extracted", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create analysis", nil)
	}
}
