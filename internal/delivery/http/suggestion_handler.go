package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/google/uuid"
)

// SuggestionService определяет интерфейс сервиса кандидатов маршрута
type SuggestionService interface {
	RequestSuggestions(ctx context.Context, laneID uuid.UUID, mode domain.SuggestionMode) ([]domain.RoutePattern, error)
	ApplySuggestion(ctx context.Context, laneID uuid.UUID, index int) (*domain.Lane, error)
}

// SuggestionHandler обрабатывает запросы кандидатов маршрута
type SuggestionHandler struct {
	suggestionService SuggestionService
	logger            logger.Logger
}

// NewSuggestionHandler создает новый handler
func NewSuggestionHandler(suggestionService SuggestionService, logger logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// RequestSuggestions запрашивает кандидатов маршрута для лейна
// POST /api/v1/lanes/{id}/suggestions
func (h *SuggestionHandler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	var req struct {
		Mode domain.SuggestionMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patterns, err := h.suggestionService.RequestSuggestions(r.Context(), laneID, req.Mode)
	if err != nil {
		h.logger.Error("Failed to fetch route suggestions", map[string]interface{}{
			"lane_id": laneID,
			"error":   err.Error(),
		})
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    patterns,
	})
}

// ApplySuggestion материализует выбранного кандидата в плечи лейна
// POST /api/v1/lanes/{id}/suggestions/apply
func (h *SuggestionHandler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.suggestionService.ApplySuggestion(r.Context(), laneID, req.Index)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}
