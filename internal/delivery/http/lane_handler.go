package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/google/uuid"
)

// PersistService определяет интерфейс координатора сохранения
type PersistService interface {
	LoadByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error)
	LoadByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error)
	SelectDirty() []*domain.Lane
	SaveDirty(ctx context.Context) ([]*domain.Lane, error)
	SaveLane(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error)
	DeleteLane(ctx context.Context, laneID uuid.UUID) error
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
	CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error)
}

// LaneHandler обрабатывает загрузку, сохранение и удаление лейнов
type LaneHandler struct {
	persistService PersistService
	logger         logger.Logger
}

// NewLaneHandler создает новый handler
func NewLaneHandler(persistService PersistService, logger logger.Logger) *LaneHandler {
	return &LaneHandler{
		persistService: persistService,
		logger:         logger,
	}
}

// LoadLanes загружает рабочий набор по аккаунту или mapping
// GET /api/v1/lanes?account_id=... | ?mapping_id=...
func (h *LaneHandler) LoadLanes(w http.ResponseWriter, r *http.Request) {
	if accountIDStr := r.URL.Query().Get("account_id"); accountIDStr != "" {
		accountID, err := uuid.Parse(accountIDStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid account ID")
			return
		}

		lanes, err := h.persistService.LoadByAccount(r.Context(), accountID)
		if err != nil {
			h.logger.Error("Failed to load lanes by account", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to load lanes")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    lanes,
		})
		return
	}

	if mappingIDStr := r.URL.Query().Get("mapping_id"); mappingIDStr != "" {
		mappingID, err := uuid.Parse(mappingIDStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid mapping ID")
			return
		}

		lanes, err := h.persistService.LoadByMapping(r.Context(), mappingID)
		if err != nil {
			h.logger.Error("Failed to load lanes by mapping", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to load lanes")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    lanes,
		})
		return
	}

	respondError(w, http.StatusBadRequest, "account_id or mapping_id query parameter required")
}

// GetDirty возвращает лейны с несохраненными изменениями
// GET /api/v1/lanes/dirty
func (h *LaneHandler) GetDirty(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.persistService.SelectDirty(),
	})
}

// SaveDirty сохраняет все измененные лейны рабочего набора
// POST /api/v1/lanes/save
func (h *LaneHandler) SaveDirty(w http.ResponseWriter, r *http.Request) {
	lanes, err := h.persistService.SaveDirty(r.Context())
	if err != nil {
		h.logger.Error("Failed to save dirty lanes", map[string]interface{}{
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

// SaveLane сохраняет один лейн
// POST /api/v1/lanes/{id}/save
func (h *LaneHandler) SaveLane(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	lane, err := h.persistService.SaveLane(r.Context(), laneID)
	if err != nil {
		h.logger.Error("Failed to save lane", map[string]interface{}{
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

// DeleteLane удаляет лейн
// Удаление необратимо, поэтому требует явного подтверждения запросом:
// DELETE /api/v1/lanes/{id}?confirm=true
func (h *LaneHandler) DeleteLane(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	// Гейт подтверждения живет здесь: сам координатор удаляет безусловно
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "Deletion requires confirm=true")
		return
	}

	if err := h.persistService.DeleteLane(r.Context(), laneID); err != nil {
		h.logger.Error("Failed to delete lane", map[string]interface{}{
			"lane_id": laneID,
			"error":   err.Error(),
		})
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// GetLaneCount возвращает количество лейнов по аккаунту или mapping
// GET /api/v1/lanes/count?account_id=... | ?mapping_id=...
func (h *LaneHandler) GetLaneCount(w http.ResponseWriter, r *http.Request) {
	if accountIDStr := r.URL.Query().Get("account_id"); accountIDStr != "" {
		accountID, err := uuid.Parse(accountIDStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid account ID")
			return
		}

		count, err := h.persistService.CountByAccount(r.Context(), accountID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to count lanes")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]int{"count": count},
		})
		return
	}

	if mappingIDStr := r.URL.Query().Get("mapping_id"); mappingIDStr != "" {
		mappingID, err := uuid.Parse(mappingIDStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid mapping ID")
			return
		}

		count, err := h.persistService.CountByMapping(r.Context(), mappingID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to count lanes")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]int{"count": count},
		})
		return
	}

	respondError(w, http.StatusBadRequest, "account_id or mapping_id query parameter required")
}
