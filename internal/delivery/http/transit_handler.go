package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/google/uuid"
)

// TransitService определяет интерфейс сервиса расчета TAT
type TransitService interface {
	ComputeTat(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error)
}

// TransitHandler обрабатывает запросы расчета turn-around-time
type TransitHandler struct {
	transitService TransitService
	logger         logger.Logger
}

// NewTransitHandler создает новый handler
func NewTransitHandler(transitService TransitService, logger logger.Logger) *TransitHandler {
	return &TransitHandler{
		transitService: transitService,
		logger:         logger,
	}
}

// ComputeTat запрашивает расчет TAT для лейна у внешнего движка
// POST /api/v1/lanes/{id}/tat
func (h *TransitHandler) ComputeTat(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	lane, err := h.transitService.ComputeTat(r.Context(), laneID)
	if err != nil {
		h.logger.Error("Failed to compute TAT", map[string]interface{}{
			"lane_id": laneID,
			"error":   err.Error(),
		})
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}
