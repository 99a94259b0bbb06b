package http

import (
	"net/http"

	"github.com/frontandrew/skylane/internal/delivery/http/middleware"
	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/jwt"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router содержит все зависимости для HTTP роутера
type Router struct {
	laneHandler       *LaneHandler
	editorHandler     *EditorHandler
	validationHandler *ValidationHandler
	suggestionHandler *SuggestionHandler
	transitHandler    *TransitHandler
	tokenService      *jwt.TokenService
	logger            logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	laneHandler *LaneHandler,
	editorHandler *EditorHandler,
	validationHandler *ValidationHandler,
	suggestionHandler *SuggestionHandler,
	transitHandler *TransitHandler,
	tokenService *jwt.TokenService,
	logger logger.Logger,
) *Router {
	return &Router{
		laneHandler:       laneHandler,
		editorHandler:     editorHandler,
		validationHandler: validationHandler,
		suggestionHandler: suggestionHandler,
		transitHandler:    transitHandler,
		tokenService:      tokenService,
		logger:            logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))

	// Health check endpoint (публичный)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// Prometheus метрики (публичный)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes (все требуют аутентификации)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(rt.tokenService))

		r.Route("/lanes", func(r chi.Router) {
			r.Get("/", rt.laneHandler.LoadLanes)
			r.Post("/", rt.editorHandler.CreateLane)
			r.Get("/count", rt.laneHandler.GetLaneCount)
			r.Get("/dirty", rt.laneHandler.GetDirty)
			r.Post("/save", rt.laneHandler.SaveDirty)
			r.Post("/validate", rt.validationHandler.ValidateAllLanes)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/save", rt.laneHandler.SaveLane)
				r.Patch("/fields", rt.editorHandler.SetLaneField)
				r.Patch("/service-level", rt.editorHandler.SetServiceLevel)
				r.Post("/validate", rt.validationHandler.ValidateLane)
				r.Post("/tat", rt.transitHandler.ComputeTat)

				r.Route("/legs", func(r chi.Router) {
					r.Post("/", rt.editorHandler.AddLeg)
					r.Delete("/{legID}", rt.editorHandler.RemoveLeg)
					r.Patch("/{legID}/origin", rt.editorHandler.SetLegOrigin)
					r.Patch("/{legID}/destination", rt.editorHandler.SetLegDestination)
					r.Patch("/{legID}/flight", rt.editorHandler.UpdateLegFlight)
				})

				r.Route("/suggestions", func(r chi.Router) {
					r.Post("/", rt.suggestionHandler.RequestSuggestions)
					r.Post("/apply", rt.suggestionHandler.ApplySuggestion)
				})

				// Удаление - только для администраторов
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleAdmin))
					r.Delete("/", rt.laneHandler.DeleteLane)
				})
			})
		})
	})

	return r
}
