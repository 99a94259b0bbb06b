package suggestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/infrastructure/routing"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
)

// Service запрашивает кандидатов маршрута у внешнего сервиса
// и материализует выбранного кандидата в плечи лейна
//
// На лейн одновременно живет не больше одного неподтвержденного набора
// кандидатов: новый запрос для того же лейна отбрасывает прежний
type Service struct {
	workspace *workspace.Workspace
	router    routing.Client
	logger    logger.Logger

	mu      sync.Mutex
	pending map[uuid.UUID][]domain.RoutePattern
}

// NewService создает новый suggestion service
func NewService(ws *workspace.Workspace, router routing.Client, logger logger.Logger) *Service {
	return &Service{
		workspace: ws,
		router:    router,
		logger:    logger,
		pending:   make(map[uuid.UUID][]domain.RoutePattern),
	}
}

// RequestSuggestions запрашивает кандидатов маршрута для лейна
//
// Режим by_airport_pair требует заполненных станций первого и последнего
// плеча и отклоняется до какого-либо сетевого вызова, если их нет.
// Режим by_location использует географию лейна без предусловий по станциям
func (s *Service) RequestSuggestions(ctx context.Context, laneID uuid.UUID, mode domain.SuggestionMode) ([]domain.RoutePattern, error) {
	if !mode.IsValid() {
		return nil, domain.ErrInvalidSuggestionMode
	}

	lane, err := s.workspace.Snapshot(laneID)
	if err != nil {
		return nil, err
	}

	var patterns []domain.RoutePattern

	switch mode {
	case domain.SuggestByAirportPair:
		// Предусловие проверяется до сетевого вызова
		if lane.OriginStation == "" || lane.DestinationStation == "" {
			return nil, domain.ErrMissingAirportPair
		}

		patterns, err = s.router.ByAirportPair(ctx, &routing.AirportPairRequest{
			OriginStation:      lane.OriginStation,
			DestinationStation: lane.DestinationStation,
			ItemNumber:         lane.ItemNumber,
			PickupTime:         lane.PickupTime,
		})

	case domain.SuggestByLocation:
		patterns, err = s.router.ByLocation(ctx, &routing.LocationRequest{
			OriginCity:         lane.OriginCity,
			OriginState:        lane.OriginState,
			OriginCountry:      lane.OriginCountry,
			DestinationCity:    lane.DestinationCity,
			DestinationState:   lane.DestinationState,
			DestinationCountry: lane.DestinationCountry,
			ItemNumber:         lane.ItemNumber,
			PickupTime:         lane.PickupTime,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch route suggestions: %w", err)
	}

	// Новый запрос замещает прежний неподтвержденный набор кандидатов
	s.mu.Lock()
	s.pending[laneID] = patterns
	s.mu.Unlock()

	s.logger.Info("Route suggestions fetched", map[string]interface{}{
		"lane_id":    laneID,
		"mode":       mode,
		"candidates": len(patterns),
	})

	return patterns, nil
}

// ApplySuggestion заменяет весь маршрут лейна выбранным кандидатом
// Плечи создаются заново: свежие ID, статус PENDING
func (s *Service) ApplySuggestion(ctx context.Context, laneID uuid.UUID, index int) (*domain.Lane, error) {
	s.mu.Lock()
	patterns, ok := s.pending[laneID]
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrNoPendingSuggestions
	}
	if index < 0 || index >= len(patterns) {
		return nil, domain.ErrSuggestionNotFound
	}
	pattern := patterns[index]

	lane, err := s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		lane.Legs = pattern.BuildLegs(lane.ID)
		lane.Status = domain.StatusPending
		lane.DeriveEndpoints()
		lane.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Примененный набор кандидатов больше не актуален
	s.mu.Lock()
	delete(s.pending, laneID)
	s.mu.Unlock()

	s.logger.Info("Route suggestion applied", map[string]interface{}{
		"lane_id": laneID,
		"legs":    len(lane.Legs),
	})

	return lane, nil
}

// PendingCount возвращает размер неподтвержденного набора кандидатов лейна
func (s *Service) PendingCount(laneID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[laneID])
}
