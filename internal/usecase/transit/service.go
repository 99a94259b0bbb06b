package transit

import (
	"context"
	"fmt"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/infrastructure/tat"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
)

// Service делегирует расчет turn-around-time внешнему движку
type Service struct {
	workspace *workspace.Workspace
	engine    tat.Client
	logger    logger.Logger
}

// NewService создает новый transit service
func NewService(ws *workspace.Workspace, engine tat.Client, logger logger.Logger) *Service {
	return &Service{
		workspace: ws,
		engine:    engine,
		logger:    logger,
	}
}

// ComputeTat запрашивает TAT для лейна у внешнего движка
// Успех перезаписывает поле TAT как есть и отмечает лейн измененным;
// при отказе лейн остается нетронутым, а ошибка возвращается вызывающему
func (s *Service) ComputeTat(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error) {
	snapshot, err := s.workspace.Snapshot(laneID)
	if err != nil {
		return nil, err
	}

	value, err := s.engine.ComputeTat(ctx, snapshot)
	if err != nil {
		s.logger.Error("TAT computation failed", map[string]interface{}{
			"lane_id": laneID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("failed to compute tat: %w", err)
	}

	lane, err := s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		lane.TAT = value
		lane.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("TAT computed", map[string]interface{}{
		"lane_id": laneID,
		"tat":     value,
	})

	return lane, nil
}
