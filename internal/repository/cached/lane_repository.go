package cached

import (
	"context"
	"strconv"
	"time"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/redis"
	"github.com/frontandrew/skylane/internal/repository"
	"github.com/google/uuid"
)

const (
	accountCountPrefix = "lane_count:account:"
	mappingCountPrefix = "lane_count:mapping:"
	countCacheTTL      = 30 * time.Minute
)

// LaneRepository добавляет кэширование агрегатов (количество лейнов
// по аккаунту и mapping) поверх основного репозитория
// Любая успешная запись или удаление инвалидирует затронутые ключи
type LaneRepository struct {
	repo  repository.LaneRepository
	cache *redis.Client
}

// NewLaneRepository создает кэшируемый lane repository
func NewLaneRepository(repo repository.LaneRepository, cache *redis.Client) *LaneRepository {
	return &LaneRepository{
		repo:  repo,
		cache: cache,
	}
}

// GetByID делегирует в основной репозиторий, чтение лейнов не кэшируется
func (r *LaneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lane, error) {
	return r.repo.GetByID(ctx, id)
}

// GetByAccount делегирует в основной репозиторий
func (r *LaneRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error) {
	return r.repo.GetByAccount(ctx, accountID)
}

// GetByMapping делегирует в основной репозиторий
func (r *LaneRepository) GetByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error) {
	return r.repo.GetByMapping(ctx, mappingID)
}

// Save сохраняет лейн и инвалидирует агрегаты его аккаунта и mapping
func (r *LaneRepository) Save(ctx context.Context, lane *domain.Lane) error {
	if err := r.repo.Save(ctx, lane); err != nil {
		return err
	}

	r.invalidate(ctx, lane)
	return nil
}

// SaveAll сохраняет набор лейнов и инвалидирует затронутые агрегаты
func (r *LaneRepository) SaveAll(ctx context.Context, lanes []*domain.Lane) error {
	if err := r.repo.SaveAll(ctx, lanes); err != nil {
		return err
	}

	for _, lane := range lanes {
		r.invalidate(ctx, lane)
	}
	return nil
}

// Delete удаляет лейн и инвалидирует агрегаты его группировок
func (r *LaneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Scope лейна нужен до удаления, иначе нечего инвалидировать
	lane, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, lane)
	return nil
}

// CountByAccount возвращает количество лейнов аккаунта с кэшированием
func (r *LaneRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	return r.cachedCount(ctx, accountCountPrefix+accountID.String(), func() (int, error) {
		return r.repo.CountByAccount(ctx, accountID)
	})
}

// CountByMapping возвращает количество лейнов mapping с кэшированием
func (r *LaneRepository) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error) {
	return r.cachedCount(ctx, mappingCountPrefix+mappingID.String(), func() (int, error) {
		return r.repo.CountByMapping(ctx, mappingID)
	})
}

func (r *LaneRepository) cachedCount(ctx context.Context, cacheKey string, load func() (int, error)) (int, error) {
	// 1. Проверяем кэш
	cachedValue, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		if count, convErr := strconv.Atoi(cachedValue); convErr == nil {
			return count, nil
		}
	}

	// 2. Cache miss или ошибка кэша - идем в БД, кэш не критичен
	count, err := load()
	if err != nil {
		return 0, err
	}

	// 3. Сохраняем результат в кэш, ошибку записи игнорируем
	_ = r.cache.Set(ctx, cacheKey, strconv.Itoa(count), countCacheTTL)

	return count, nil
}

func (r *LaneRepository) invalidate(ctx context.Context, lane *domain.Lane) {
	keys := []string{accountCountPrefix + lane.AccountID.String()}
	if lane.MappingID != uuid.Nil {
		keys = append(keys, mappingCountPrefix+lane.MappingID.String())
	}
	_ = r.cache.Del(ctx, keys...)
}
