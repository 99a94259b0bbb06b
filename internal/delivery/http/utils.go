package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondDomainError преобразует доменную ошибку в HTTP статус
// Отклонения uniqueness guard и устаревшие результаты - конфликты;
// нарушенные предусловия - ошибки запроса
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLaneNotFound),
		errors.Is(err, domain.ErrLegNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrDuplicateOrigin),
		errors.Is(err, domain.ErrOriginEqualsDestination),
		errors.Is(err, domain.ErrDestinationReusesOrigin),
		errors.Is(err, domain.ErrStaleResult):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrMissingAirportPair),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrReadOnlyField),
		errors.Is(err, domain.ErrInvalidServiceLevel),
		errors.Is(err, domain.ErrInvalidSuggestionMode),
		errors.Is(err, domain.ErrInvalidLaneData),
		errors.Is(err, domain.ErrNoPendingSuggestions),
		errors.Is(err, domain.ErrSuggestionNotFound):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, workspace.ErrNotLoaded):
		respondError(w, http.StatusBadRequest, err.Error())

	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pathUUID извлекает UUID параметр из пути запроса
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, param))
}
