package validation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/infrastructure/flightdata"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/frontandrew/skylane/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLanes ограничивает параллелизм при проверке всего рабочего набора
const maxConcurrentLanes = 8

// Service - оркестратор проверки лейнов
// Раздает проверку плеч внешнему сервису летных данных параллельно,
// ждет весь fan-out целиком и сводит результаты в статус лейна
type Service struct {
	workspace *workspace.Workspace
	validator flightdata.Client
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewService создает новый validation service
func NewService(ws *workspace.Workspace, validator flightdata.Client, logger logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		workspace: ws,
		validator: validator,
		logger:    logger,
		metrics:   m,
	}
}

// ValidateLane проверяет все плечи лейна и сводит результат
//
// Каждое плечо проверяется в своей горутине; отказ одного запроса
// конвертируется в невалидное плечо с текстом ошибки и не прерывает
// остальные. Агрегация не начинается, пока не завершится весь fan-out
// (барьер), поэтому частично примененных результатов не видно.
// Статус лейна = AND по плечам; лейн без плеч валиден по определению.
// Если лейн изменился, пока проверка была в полете, результат
// отбрасывается с ErrStaleResult
func (s *Service) ValidateLane(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error) {
	started := time.Now()

	snapshot, err := s.workspace.Snapshot(laneID)
	if err != nil {
		return nil, err
	}
	generation := snapshot.Generation

	// Direct Drive обслуживается без летных плеч: проверять нечего,
	// лейн валиден по определению
	if snapshot.IsDirectDrive() {
		lane, err := s.workspace.CommitIfCurrent(laneID, generation, func(lane *domain.Lane) {
			lane.Status = domain.StatusValid
			lane.Touch()
		})
		if err != nil {
			return nil, err
		}
		s.metrics.LanesValidated.WithLabelValues(string(domain.StatusValid)).Inc()
		return lane, nil
	}

	checked := make([]*domain.Leg, len(snapshot.Legs))

	var wg sync.WaitGroup
	for i, leg := range snapshot.Legs {
		wg.Add(1)
		go func(i int, leg *domain.Leg) {
			defer wg.Done()
			checked[i] = s.checkLeg(ctx, leg)
		}(i, leg)
	}

	// Барьер: агрегация видит только полный набор результатов
	wg.Wait()

	aggregate := domain.StatusValid
	for _, leg := range checked {
		if leg.Status != domain.StatusValid {
			aggregate = domain.StatusInvalid
			break
		}
	}

	lane, err := s.workspace.CommitIfCurrent(laneID, generation, func(lane *domain.Lane) {
		lane.Legs = checked
		lane.Status = aggregate
		lane.DeriveEndpoints()
		lane.Touch()
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleResult) {
			s.metrics.StaleResultsDiscarded.Inc()
			s.logger.Warn("Validation result discarded, lane changed mid-flight", map[string]interface{}{
				"lane_id": laneID,
			})
		}
		return nil, err
	}

	s.metrics.LanesValidated.WithLabelValues(string(aggregate)).Inc()
	s.metrics.ValidationDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("Lane validated", map[string]interface{}{
		"lane_id": laneID,
		"legs":    len(checked),
		"status":  aggregate,
	})

	return lane, nil
}

// ValidateAllLanes проверяет все лейны рабочего набора независимо
// Отказ или задержка одного лейна не блокирует и не искажает остальные;
// результат каждого лейна коммитится по его собственному завершению
func (s *Service) ValidateAllLanes(ctx context.Context) ([]*domain.Lane, error) {
	ids := s.workspace.IDs()

	results := make([]*domain.Lane, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLanes)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			lane, err := s.ValidateLane(ctx, id)
			if err != nil {
				// Устаревший или исчезнувший лейн пропускаем, остальные не трогаем
				s.logger.Warn("Lane skipped during bulk validation", map[string]interface{}{
					"lane_id": id,
					"reason":  err.Error(),
				})
				return nil
			}
			results[i] = lane
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	validated := make([]*domain.Lane, 0, len(results))
	for _, lane := range results {
		if lane != nil {
			validated = append(validated, lane)
		}
	}

	return validated, nil
}

// checkLeg проверяет одно плечо через внешний сервис
// Отказ запроса конвертируется в невалидное плечо с текстом ошибки
func (s *Service) checkLeg(ctx context.Context, leg *domain.Leg) *domain.Leg {
	checked := leg.Clone()

	result, err := s.validator.ValidateLeg(ctx, &flightdata.LegCheckRequest{
		FlightNumber:       leg.FlightNumber,
		OriginStation:      leg.OriginStation,
		DestinationStation: leg.DestinationStation,
		DepartureTime:      leg.DepartureTime,
		ArrivalTime:        leg.ArrivalTime,
		OperatingDays:      leg.OperatingDays,
	})
	if err != nil {
		s.metrics.LegCheckFailures.Inc()
		s.logger.Warn("Leg check request failed", map[string]interface{}{
			"leg_id": leg.ID,
			"error":  err.Error(),
		})

		checked.Status = domain.StatusInvalid
		checked.ValidationMessages = []string{err.Error()}
		return checked
	}

	if result.Valid {
		checked.Status = domain.StatusValid
	} else {
		checked.Status = domain.StatusInvalid
	}

	checked.ValidationMessages = nil
	if result.Message != "" {
		checked.ValidationMessages = append(checked.ValidationMessages, result.Message)
	}
	for _, field := range result.MismatchedFields {
		checked.ValidationMessages = append(checked.ValidationMessages, "mismatched field: "+field)
	}

	if result.OperatingDays != "" {
		checked.OperatingDays = strings.Fields(result.OperatingDays)
	}
	if result.AircraftByDay != nil {
		checked.AircraftByDay = result.AircraftByDay
	}

	return checked
}
