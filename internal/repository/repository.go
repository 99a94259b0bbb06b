package repository

import (
	"context"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/google/uuid"
)

// LaneRepository определяет persistence boundary для лейнов
// Чтение и запись всегда оперируют полной структурой Lane+Legs:
// частичные обновления не поддерживаются, список плеч заменяется целиком
type LaneRepository interface {
	// GetByID возвращает лейн вместе с плечами
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lane, error)

	// GetByAccount возвращает все лейны аккаунта
	GetByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error)

	// GetByMapping возвращает все лейны, привязанные к mapping
	GetByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error)

	// Save сохраняет один лейн, заменяя его список плеч целиком
	// Временные клиентские ID плеч заменяются постоянными
	Save(ctx context.Context, lane *domain.Lane) error

	// SaveAll сохраняет набор лейнов в одной транзакции
	SaveAll(ctx context.Context, lanes []*domain.Lane) error

	// Delete удаляет лейн вместе с плечами
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByAccount возвращает количество лейнов аккаунта
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)

	// CountByMapping возвращает количество лейнов mapping
	CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error)
}
