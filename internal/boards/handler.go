package boards

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches board routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/boards", h.create)
	rg.GET("/boards", h.list)
	rg.GET("/boards/:id", h.get)
	rg.PATCH("/boards/:id", h.rename)
	rg.DELETE("/boards/:id", h.remove)
}

type createBoardRequest struct {
	Title      string         `json:"title"`
	AnalysisID string         `json:"analysisId"`
	Result     map[string]any `json:"result"`
}

type renameBoardRequest struct {
	Title string `json:"title"`
}

// BoardResponse is the outward-facing representation of a board.
type BoardResponse struct {
	BoardID    string         `json:"boardId"`
	Title      string         `json:"title"`
	AnalysisID string         `json:"analysisId,omitempty"`
	Result     map[string]any `json:"result"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toResponse(board Board) BoardResponse {
	return BoardResponse{
		BoardID:    board.ID,
		Title:      board.Title,
		AnalysisID: board.AnalysisID,
		Result:     board.Result,
		CreatedAt:  board.CreatedAt,
		UpdatedAt:  board.UpdatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	board, err := h.Svc.Save(c.Request.Context(), userID, req.Title, req.AnalysisID, req.Result)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save board", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(board))
}

func (h *Handler) list(c *gin.Context) {
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list boards", nil)
		return
	}

	resp := make([]BoardResponse, 0, len(items))
	for _, board := range items {
		resp = append(resp, toResponse(board))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	board, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "board not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch board", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(board))
}

func (h *Handler) rename(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req renameBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	err := h.Svc.Rename(c.Request.Context(), userID, c.Param("id"), req.Title)
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, gin.H{"boardId": c.Param("id"), "title": req.Title})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "board not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to rename board", nil)
	}
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id"))
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, gin.H{"boardId": c.Param("id"), "deleted": true})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "board not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete board", nil)
	}
}
