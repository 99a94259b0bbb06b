package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/usecase/editor"
	"github.com/google/uuid"
)

// EditorService определяет интерфейс сервиса редактирования
type EditorService interface {
	CreateLane(ctx context.Context, req *editor.CreateLaneRequest) (*domain.Lane, error)
	AddLeg(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error)
	RemoveLeg(ctx context.Context, laneID, legID uuid.UUID) (*domain.Lane, error)
	SetLegOrigin(ctx context.Context, laneID, legID uuid.UUID, station string) (*domain.Lane, error)
	SetLegDestination(ctx context.Context, laneID, legID uuid.UUID, station string) (*domain.Lane, error)
	UpdateLegFlight(ctx context.Context, laneID, legID uuid.UUID, req *editor.UpdateLegFlightRequest) (*domain.Lane, error)
	SetLaneField(ctx context.Context, laneID uuid.UUID, key, value string) (*domain.Lane, error)
	SetServiceLevel(ctx context.Context, laneID uuid.UUID, level domain.ServiceLevel) (*domain.Lane, error)
}

// EditorHandler обрабатывает запросы редактирования лейнов и плеч
type EditorHandler struct {
	editorService EditorService
	logger        logger.Logger
}

// NewEditorHandler создает новый handler
func NewEditorHandler(editorService EditorService, logger logger.Logger) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		logger:        logger,
	}
}

// CreateLane создает новый лейн в рабочем наборе
// POST /api/v1/lanes
func (h *EditorHandler) CreateLane(w http.ResponseWriter, r *http.Request) {
	var req editor.CreateLaneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.editorService.CreateLane(r.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create lane", map[string]interface{}{
			"error": err.Error(),
		})
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// SetLaneField изменяет одно поле лейна
// PATCH /api/v1/lanes/{id}/fields
func (h *EditorHandler) SetLaneField(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.editorService.SetLaneField(r.Context(), laneID, req.Key, req.Value)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// SetServiceLevel изменяет уровень сервиса лейна
// PATCH /api/v1/lanes/{id}/service-level
func (h *EditorHandler) SetServiceLevel(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	var req struct {
		ServiceLevel domain.ServiceLevel `json:"service_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.editorService.SetServiceLevel(r.Context(), laneID, req.ServiceLevel)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// AddLeg добавляет пустое плечо в конец маршрута
// POST /api/v1/lanes/{id}/legs
func (h *EditorHandler) AddLeg(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	lane, err := h.editorService.AddLeg(r.Context(), laneID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// RemoveLeg удаляет плечо из маршрута
// DELETE /api/v1/lanes/{id}/legs/{legID}
func (h *EditorHandler) RemoveLeg(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	legID, err := pathUUID(r, "legID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid leg ID")
		return
	}

	lane, err := h.editorService.RemoveLeg(r.Context(), laneID, legID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// SetLegOrigin изменяет станцию вылета плеча
// PATCH /api/v1/lanes/{id}/legs/{legID}/origin
func (h *EditorHandler) SetLegOrigin(w http.ResponseWriter, r *http.Request) {
	h.setLegStation(w, r, h.editorService.SetLegOrigin)
}

// SetLegDestination изменяет станцию прилета плеча
// PATCH /api/v1/lanes/{id}/legs/{legID}/destination
func (h *EditorHandler) SetLegDestination(w http.ResponseWriter, r *http.Request) {
	h.setLegStation(w, r, h.editorService.SetLegDestination)
}

// setLegStation - общий путь для изменения станции плеча
func (h *EditorHandler) setLegStation(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, laneID, legID uuid.UUID, station string) (*domain.Lane, error),
) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	legID, err := pathUUID(r, "legID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid leg ID")
		return
	}

	var req struct {
		Station string `json:"station"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := apply(r.Context(), laneID, legID, req.Station)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}

// UpdateLegFlight изменяет летные поля плеча
// PATCH /api/v1/lanes/{id}/legs/{legID}/flight
func (h *EditorHandler) UpdateLegFlight(w http.ResponseWriter, r *http.Request) {
	laneID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lane ID")
		return
	}

	legID, err := pathUUID(r, "legID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid leg ID")
		return
	}

	var req editor.UpdateLegFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lane, err := h.editorService.UpdateLegFlight(r.Context(), laneID, legID, &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lane,
	})
}
