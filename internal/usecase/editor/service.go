package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
)

// UpdateLegFlightRequest - частичное изменение летных полей плеча
// Заполненные указатели перезаписывают соответствующие поля
type UpdateLegFlightRequest struct {
	FlightNumber  *string  `json:"flight_number,omitempty"`
	DepartureTime *string  `json:"departure_time,omitempty"`
	ArrivalTime   *string  `json:"arrival_time,omitempty"`
	CutoffTime    *string  `json:"cutoff_time,omitempty"`
	OperatingDays []string `json:"operating_days,omitempty"`
}

// CreateLaneRequest - запрос на создание нового лейна в рабочем наборе
type CreateLaneRequest struct {
	AccountID    uuid.UUID           `json:"account_id" validate:"required"`
	MappingID    uuid.UUID           `json:"mapping_id,omitempty"`
	ItemNumber   string              `json:"item_number,omitempty"`
	LaneOption   string              `json:"lane_option,omitempty"`
	ServiceLevel domain.ServiceLevel `json:"service_level,omitempty"`
}

// Service содержит логику редактирования лейнов и плеч:
// порядок плеч, производные поля, uniqueness guard, Direct Drive
type Service struct {
	workspace *workspace.Workspace
	logger    logger.Logger
}

// NewService создает новый экземпляр editor service
func NewService(ws *workspace.Workspace, logger logger.Logger) *Service {
	return &Service{
		workspace: ws,
		logger:    logger,
	}
}

// CreateLane создает новый лейн с синтетическим ID в рабочем наборе
// Лейн сразу помечен измененным и попадет в ближайшее сохранение
func (s *Service) CreateLane(ctx context.Context, req *CreateLaneRequest) (*domain.Lane, error) {
	lane := &domain.Lane{
		ID:           uuid.New(),
		AccountID:    req.AccountID,
		MappingID:    req.MappingID,
		ItemNumber:   req.ItemNumber,
		LaneOption:   req.LaneOption,
		ServiceLevel: req.ServiceLevel,
		Status:       domain.StatusPending,
	}

	if err := lane.Validate(); err != nil {
		return nil, err
	}

	if lane.ServiceLevel == domain.ServiceLevelDirectDrive {
		lane.ApplyDirectDrive()
	}
	lane.Touch()

	s.workspace.Add(lane)

	s.logger.Info("Lane created", map[string]interface{}{
		"lane_id":    lane.ID,
		"account_id": lane.AccountID,
	})

	return lane.Clone(), nil
}

// AddLeg добавляет пустое плечо в конец маршрута лейна
func (s *Service) AddLeg(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error) {
	return s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		leg := lane.AddLeg()
		lane.Status = domain.StatusPending
		lane.Touch()

		s.logger.Info("Leg added", map[string]interface{}{
			"lane_id":  laneID,
			"leg_id":   leg.ID,
			"sequence": leg.Sequence,
		})
		return nil
	})
}

// RemoveLeg удаляет плечо из маршрута лейна
// Оставшиеся плечи не перенумеровываются
func (s *Service) RemoveLeg(ctx context.Context, laneID, legID uuid.UUID) (*domain.Lane, error) {
	return s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		if err := lane.RemoveLeg(legID); err != nil {
			return err
		}
		lane.Status = domain.StatusPending
		lane.Touch()

		s.logger.Info("Leg removed", map[string]interface{}{
			"lane_id": laneID,
			"leg_id":  legID,
		})
		return nil
	})
}

// SetLegOrigin изменяет станцию вылета плеча
// Изменение проверяется uniqueness guard до коммита: при отклонении
// прежнее значение сохраняется, а вызывающий получает причину синхронно
func (s *Service) SetLegOrigin(ctx context.Context, laneID, legID uuid.UUID, station string) (*domain.Lane, error) {
	station = normalizeStation(station)

	lane, err := s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		if err := lane.CheckOriginEdit(legID, station); err != nil {
			return err
		}

		leg, _ := lane.FindLeg(legID)
		leg.OriginStation = station
		leg.ResetValidation()
		lane.Status = domain.StatusPending
		lane.DeriveEndpoints()
		lane.Touch()
		return nil
	})

	if err != nil {
		if isGuardRejection(err) {
			s.logger.Warn("Origin edit rejected", map[string]interface{}{
				"lane_id": laneID,
				"leg_id":  legID,
				"station": station,
				"reason":  err.Error(),
			})
		}
		return nil, err
	}

	return lane, nil
}

// SetLegDestination изменяет станцию прилета плеча
// Изменение проверяется uniqueness guard до коммита
func (s *Service) SetLegDestination(ctx context.Context, laneID, legID uuid.UUID, station string) (*domain.Lane, error) {
	station = normalizeStation(station)

	lane, err := s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		if err := lane.CheckDestinationEdit(legID, station); err != nil {
			return err
		}

		leg, _ := lane.FindLeg(legID)
		leg.DestinationStation = station
		leg.ResetValidation()
		lane.Status = domain.StatusPending
		lane.DeriveEndpoints()
		lane.Touch()
		return nil
	})

	if err != nil {
		if isGuardRejection(err) {
			s.logger.Warn("Destination edit rejected", map[string]interface{}{
				"lane_id": laneID,
				"leg_id":  legID,
				"station": station,
				"reason":  err.Error(),
			})
		}
		return nil, err
	}

	return lane, nil
}

// UpdateLegFlight изменяет летные поля плеча
// Результат прежней проверки плеча сбрасывается в PENDING
func (s *Service) UpdateLegFlight(ctx context.Context, laneID, legID uuid.UUID, req *UpdateLegFlightRequest) (*domain.Lane, error) {
	return s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		leg, ok := lane.FindLeg(legID)
		if !ok {
			return domain.ErrLegNotFound
		}

		if req.FlightNumber != nil {
			leg.FlightNumber = strings.TrimSpace(*req.FlightNumber)
		}
		if req.DepartureTime != nil {
			leg.DepartureTime = *req.DepartureTime
		}
		if req.ArrivalTime != nil {
			leg.ArrivalTime = *req.ArrivalTime
		}
		if req.CutoffTime != nil {
			leg.CutoffTime = *req.CutoffTime
		}
		if req.OperatingDays != nil {
			leg.OperatingDays = req.OperatingDays
		}

		leg.ResetValidation()
		lane.Status = domain.StatusPending
		lane.DeriveEndpoints()
		lane.Touch()
		return nil
	})
}

// SetLaneField изменяет поле лейна через таблицу дескрипторов
// Read-only поля (включая производные станции) отклоняются
func (s *Service) SetLaneField(ctx context.Context, laneID uuid.UUID, key, value string) (*domain.Lane, error) {
	return s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		if err := lane.SetField(key, value); err != nil {
			return err
		}
		lane.Touch()
		return nil
	})
}

// SetServiceLevel изменяет уровень сервиса лейна
// Выбор Direct Drive схлопывает маршрут до одного плеча без летных полей;
// обратный переход летные поля не восстанавливает
func (s *Service) SetServiceLevel(ctx context.Context, laneID uuid.UUID, level domain.ServiceLevel) (*domain.Lane, error) {
	if !level.IsValid() {
		return nil, domain.ErrInvalidServiceLevel
	}

	return s.workspace.Mutate(laneID, func(lane *domain.Lane) error {
		if level == domain.ServiceLevelDirectDrive {
			lane.ApplyDirectDrive()
		} else {
			lane.ServiceLevel = level
		}
		lane.Touch()

		s.logger.Info("Service level changed", map[string]interface{}{
			"lane_id":       laneID,
			"service_level": level,
		})
		return nil
	})
}

// normalizeStation приводит код аэропорта к каноническому виду
func normalizeStation(station string) string {
	return strings.ToUpper(strings.TrimSpace(station))
}

// isGuardRejection сообщает, что ошибка - отклонение uniqueness guard
func isGuardRejection(err error) bool {
	return errors.Is(err, domain.ErrDuplicateOrigin) ||
		errors.Is(err, domain.ErrOriginEqualsDestination) ||
		errors.Is(err, domain.ErrDestinationReusesOrigin)
}
