package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/google/uuid"
)

// ValidationService определяет интерфейс оркестратора проверки
type ValidationService interface {
	ValidateLane(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error)
	ValidateAllLanes(ctx context.Context) ([]*domain.Lane, error)
}

// ValidationHandler обрабатывает запросы проверки лейнов
type ValidationHandler struct {
	validationService ValidationService
	logger            logger.Logger
}

// NewValidationHandler создает новый handler
func NewValidationHandler(validationService ValidationService, logger logger.Logger) *ValidationHandler {
	return &ValidationHandler{
		validationService: validationService,
		logger:            logger,
	}
}

// ValidateLane проверяет один лейн
// POST /api/v1/lanes/{id}/validate
func (h *ValidationHandler) ValidateLane(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	lane, err := h.validationService.ValidateLane(r.Context(), laneID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// ValidateAllLanes проверяет весь рабочий набор
// POST /api/v1/lanes/validate
func (h *ValidationHandler) ValidateAllLanes(w http.ResponseWriter, r *http.Request) {
	lanes, err := h.validationService.ValidateAllLanes(r.Context())
	if err != nil {
		h.logger.Error("Bulk validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lanes,
	})
}
