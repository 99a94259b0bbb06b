package workspace

import (
	"errors"
	"sync"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/google/uuid"
)

// ErrNotLoaded возвращается, когда операция требует загруженного рабочего набора
var ErrNotLoaded = errors.New("no lane scope loaded")

// ScopeKind - тип группировки, по которой загружен рабочий набор
type ScopeKind string

const (
	ScopeAccount ScopeKind = "account"
	ScopeMapping ScopeKind = "mapping"
)

// Scope описывает границу загруженного рабочего набора
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// IsZero сообщает, что scope еще не задан
func (s Scope) IsZero() bool {
	return s.Kind == "" || s.ID == uuid.Nil
}

// Workspace - рабочий набор лейнов, редактируемых в данный момент
// Все мутации проходят под общим мьютексом: изменение плеч и пересчет
// производных полей снаружи выглядят как одна атомарная операция
type Workspace struct {
	mu    sync.RWMutex
	scope Scope
	lanes map[uuid.UUID]*domain.Lane
	order []uuid.UUID // Порядок, в котором лейны пришли из persistence boundary
}

// New создает пустой рабочий набор
func New() *Workspace {
	return &Workspace{
		lanes: make(map[uuid.UUID]*domain.Lane),
	}
}

// Reset заменяет весь рабочий набор каноническими данными
// Локальные несохраненные изменения при этом отбрасываются
func (w *Workspace) Reset(scope Scope, lanes []*domain.Lane) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.scope = scope
	w.lanes = make(map[uuid.UUID]*domain.Lane, len(lanes))
	w.order = make([]uuid.UUID, 0, len(lanes))

	for _, lane := range lanes {
		w.lanes[lane.ID] = lane.Clone()
		w.order = append(w.order, lane.ID)
	}
}

// Scope возвращает границу текущего рабочего набора
func (w *Workspace) Scope() (Scope, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.scope.IsZero() {
		return Scope{}, ErrNotLoaded
	}
	return w.scope, nil
}

// Snapshot возвращает глубокую копию лейна
func (w *Workspace) Snapshot(laneID uuid.UUID) (*domain.Lane, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	lane, ok := w.lanes[laneID]
	if !ok {
		return nil, domain.ErrLaneNotFound
	}
	return lane.Clone(), nil
}

// List возвращает копии всех лейнов в порядке загрузки
func (w *Workspace) List() []*domain.Lane {
	w.mu.RLock()
	defer w.mu.RUnlock()

	lanes := make([]*domain.Lane, 0, len(w.order))
	for _, id := range w.order {
		if lane, ok := w.lanes[id]; ok {
			lanes = append(lanes, lane.Clone())
		}
	}
	return lanes
}

// IDs возвращает идентификаторы всех лейнов рабочего набора
func (w *Workspace) IDs() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]uuid.UUID, len(w.order))
	copy(ids, w.order)
	return ids
}

// Dirty возвращает копии лейнов с несохраненными изменениями
func (w *Workspace) Dirty() []*domain.Lane {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var dirty []*domain.Lane
	for _, id := range w.order {
		if lane, ok := w.lanes[id]; ok && lane.HasBeenUpdated {
			dirty = append(dirty, lane.Clone())
		}
	}
	return dirty
}

// Mutate выполняет мутацию лейна под блокировкой
// fn работает с черновой копией: при ошибке лейн остается без изменений,
// даже если fn успела что-то записать
func (w *Workspace) Mutate(laneID uuid.UUID, fn func(*domain.Lane) error) (*domain.Lane, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lane, ok := w.lanes[laneID]
	if !ok {
		return nil, domain.ErrLaneNotFound
	}

	draft := lane.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}

	w.lanes[laneID] = draft
	return draft.Clone(), nil
}

// CommitIfCurrent применяет результат асинхронной операции, только если
// поколение лейна не сдвинулось с момента снапшота. Устаревший результат
// отбрасывается с ErrStaleResult, а не затирает свежие правки
func (w *Workspace) CommitIfCurrent(laneID uuid.UUID, generation int64, fn func(*domain.Lane)) (*domain.Lane, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lane, ok := w.lanes[laneID]
	if !ok {
		return nil, domain.ErrLaneNotFound
	}

	if lane.Generation != generation {
		return nil, domain.ErrStaleResult
	}

	fn(lane)
	return lane.Clone(), nil
}

// Add добавляет в рабочий набор только что созданный лейн
func (w *Workspace) Add(lane *domain.Lane) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.lanes[lane.ID]; !ok {
		w.order = append(w.order, lane.ID)
	}
	w.lanes[lane.ID] = lane.Clone()
}

// Replace заменяет один лейн канонической копией, не трогая соседей
func (w *Workspace) Replace(lane *domain.Lane) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.lanes[lane.ID]; !ok {
		w.order = append(w.order, lane.ID)
	}
	w.lanes[lane.ID] = lane.Clone()
}

// Remove удаляет лейн из рабочего набора
func (w *Workspace) Remove(laneID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.lanes, laneID)
	for i, id := range w.order {
		if id == laneID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}
