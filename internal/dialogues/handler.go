package dialogues

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

// RegisterRoutes attaches dialogue routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/dialogues", h.create)
	rg.GET("/dialogues", h.list)
	rg.GET("/dialogues/:id", h.get)
	rg.PUT("/dialogues/:id", h.replace)
	rg.DELETE("/dialogues/:id", h.remove)
}

type dialogueRequest struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// DialogueResponse is the outward-facing representation of a dialogue.
type DialogueResponse struct {
	DialogueID string    `json:"dialogueId"`
	Title      string    `json:"title"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toResponse(dialogue Dialogue) DialogueResponse {
	messages := dialogue.Messages
	if messages == nil {
		messages = []Message{}
	}
	return DialogueResponse{
		DialogueID: dialogue.ID,
		Title:      dialogue.Title,
		Messages:   messages,
		CreatedAt:  dialogue.CreatedAt,
		UpdatedAt:  dialogue.UpdatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req dialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	dialogue, err := h.Svc.Save(c.Request.Context(), userID, req.Title, req.Messages)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save dialogue", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(dialogue))
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list dialogues", nil)
		return
	}

	resp := make([]DialogueResponse, 0, len(items))
	for _, dialogue := range items {
		resp = append(resp, toResponse(dialogue))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	dialogue, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "dialogue not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch dialogue", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(dialogue))
}

func (h *Handler) replace(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req dialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	dialogue, err := h.Svc.Replace(c.Request.Context(), userID, c.Param("id"), req.Title, req.Messages)
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, toResponse(dialogue))
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "dialogue not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update dialogue", nil)
	}
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id"))
	switch {
	case err == nil:
		respond.JSON(c, http.StatusOK, gin.H{"dialogueId": c.Param("id"), "deleted": true})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "dialogue not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete dialogue", nil)
	}
}
