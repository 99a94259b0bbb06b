package persist

import (
	"context"
	"errors"
	"sync"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/repository"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/frontandrew/skylane/pkg/metrics"
	"github.com/google/uuid"
)

// SavedListener вызывается после успешного сохранения или удаления
// Используется для инвалидации зависимых представлений (списки, счетчики);
// само обновление представлений - забота подписчика, не этого сервиса
type SavedListener func(ctx context.Context, scope workspace.Scope)

// Service координирует сохранение рабочего набора:
// выбирает только измененные лейны, после записи заменяет локальное
// состояние канонической копией с сервера
type Service struct {
	workspace *workspace.Workspace
	repo      repository.LaneRepository
	logger    logger.Logger
	metrics   *metrics.Metrics

	mu        sync.Mutex
	listeners []SavedListener
}

// NewService создает новый persist service
func NewService(ws *workspace.Workspace, repo repository.LaneRepository, logger logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		workspace: ws,
		repo:      repo,
		logger:    logger,
		metrics:   m,
	}
}

// Subscribe регистрирует слушателя завершенных сохранений и удалений
func (s *Service) Subscribe(listener SavedListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// LoadByAccount загружает лейны аккаунта в рабочий набор
// Загруженные лейны чистые: признаков локальных изменений нет
func (s *Service) LoadByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error) {
	lanes, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.workspace.Reset(workspace.Scope{Kind: workspace.ScopeAccount, ID: accountID}, lanes)

	s.logger.Info("Lanes loaded", map[string]interface{}{
		"account_id": accountID,
		"count":      len(lanes),
	})

	return s.workspace.List(), nil
}

// LoadByMapping загружает лейны mapping в рабочий набор
func (s *Service) LoadByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error) {
	lanes, err := s.repo.GetByMapping(ctx, mappingID)
	if err != nil {
		return nil, err
	}

	s.workspace.Reset(workspace.Scope{Kind: workspace.ScopeMapping, ID: mappingID}, lanes)

	return s.workspace.List(), nil
}

// SelectDirty возвращает ровно те лейны, что имеют несохраненные изменения
func (s *Service) SelectDirty() []*domain.Lane {
	return s.workspace.Dirty()
}

// SaveDirty сохраняет только измененные лейны и выполняет полную сверку:
// локальное состояние рабочего набора заменяется свежей выборкой
// из persistence boundary. Признаки изменений при этом гаснут сами,
// потому что загруженные данные канонические - флаги никогда
// не сбрасываются вручную
//
// Если измененных лейнов нет, обращения к persistence boundary не происходит
func (s *Service) SaveDirty(ctx context.Context) ([]*domain.Lane, error) {
	dirty := s.workspace.Dirty()
	if len(dirty) == 0 {
		s.logger.Debug("No dirty lanes, save skipped")
		return s.workspace.List(), nil
	}

	scope, err := s.workspace.Scope()
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveAll(ctx, dirty); err != nil {
		return nil, err
	}

	// Полная сверка: отбрасываем локальное состояние в пользу канонического
	fresh, err := s.reload(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.workspace.Reset(scope, fresh)

	s.metrics.LanesSaved.Add(float64(len(dirty)))
	s.notify(ctx, scope)

	s.logger.Info("Dirty lanes saved", map[string]interface{}{
		"saved": len(dirty),
		"scope": scope.Kind,
	})

	return s.workspace.List(), nil
}

// SaveLane сохраняет один лейн и заменяет только его локальную запись
// канонической копией, не трогая соседние лейны
func (s *Service) SaveLane(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error) {
	snapshot, err := s.workspace.Snapshot(laneID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	fresh, err := s.repo.GetByID(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}

	s.workspace.Replace(fresh)

	s.metrics.LanesSaved.Inc()
	if scope, err := s.workspace.Scope(); err == nil {
		s.notify(ctx, scope)
	}

	s.logger.Info("Lane saved", map[string]interface{}{
		"lane_id": fresh.ID,
	})

	return fresh.Clone(), nil
}

// DeleteLane безусловно удаляет лейн из persistence boundary и затем
// из рабочего набора. Подтверждение пользователя - забота вызывающего:
// этот метод намеренно не требует подтверждения, чтобы его можно было
// обернуть любым гейтом
func (s *Service) DeleteLane(ctx context.Context, laneID uuid.UUID) error {
	err := s.repo.Delete(ctx, laneID)
	if err != nil && !errors.Is(err, domain.ErrLaneNotFound) {
		return err
	}
	// Лейн, еще ни разу не сохранявшийся, удаляется только локально

	s.workspace.Remove(laneID)

	s.metrics.LanesDeleted.Inc()
	if scope, scopeErr := s.workspace.Scope(); scopeErr == nil {
		s.notify(ctx, scope)
	}

	s.logger.Info("Lane deleted", map[string]interface{}{
		"lane_id": laneID,
	})

	return nil
}

// CountByAccount возвращает количество лейнов аккаунта
// Проходит через кэширующий декоратор репозитория, если тот подключен
func (s *Service) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountByAccount(ctx, accountID)
}

// CountByMapping возвращает количество лейнов mapping
func (s *Service) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error) {
	return s.repo.CountByMapping(ctx, mappingID)
}

// reload выполняет свежую выборку рабочего набора по его scope
func (s *Service) reload(ctx context.Context, scope workspace.Scope) ([]*domain.Lane, error) {
	switch scope.Kind {
	case workspace.ScopeAccount:
		return s.repo.GetByAccount(ctx, scope.ID)
	case workspace.ScopeMapping:
		return s.repo.GetByMapping(ctx, scope.ID)
	}
	return nil, workspace.ErrNotLoaded
}

// notify сообщает подписчикам о завершенном сохранении или удалении
func (s *Service) notify(ctx context.Context, scope workspace.Scope) {
	s.mu.Lock()
	listeners := make([]SavedListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(ctx, scope)
	}
}
