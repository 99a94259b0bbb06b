package transit

import (
	"context"
	"errors"
	"testing"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTatClient - мок внешнего движка расчета TAT
type MockTatClient struct {
	mock.Mock
}

func (m *MockTatClient) ComputeTat(ctx context.Context, lane *domain.Lane) (string, error) {
	args := m.Called(ctx, lane)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, client *MockTatClient, lanes ...*domain.Lane) (*Service, *workspace.Workspace) {
	t.Helper()

	ws := workspace.New()
	ws.Reset(workspace.Scope{Kind: workspace.ScopeAccount, ID: uuid.New()}, lanes)

	return NewService(ws, client, logger.NewNoop()), ws
}

// TestService_ComputeTat тестирует делегирование расчета внешнему движку
func TestService_ComputeTat(t *testing.T) {
	t.Run("успешный расчет перезаписывает TAT", func(t *testing.T) {
		lane := &domain.Lane{ID: uuid.New(), AccountID: uuid.New(), TAT: "24h", Status: domain.StatusPending}
		client := new(MockTatClient)
		client.On("ComputeTat", mock.Anything, mock.AnythingOfType("*domain.Lane")).
			Return("36h 30m", nil)

		svc, _ := newTestService(t, client, lane)

		updated, err := svc.ComputeTat(context.Background(), lane.ID)
		require.NoError(t, err)

		// Значение хранится как вернул движок, без интерпретации
		assert.Equal(t, "36h 30m", updated.TAT)
		assert.True(t, updated.HasBeenUpdated)
		client.AssertExpectations(t)
	})

	t.Run("отказ движка оставляет лейн нетронутым", func(t *testing.T) {
		lane := &domain.Lane{ID: uuid.New(), AccountID: uuid.New(), TAT: "24h", Status: domain.StatusPending}
		client := new(MockTatClient)
		client.On("ComputeTat", mock.Anything, mock.Anything).
			Return("", errors.New("engine overloaded"))

		svc, ws := newTestService(t, client, lane)

		_, err := svc.ComputeTat(context.Background(), lane.ID)
		assert.Error(t, err)

		snapshot, snapErr := ws.Snapshot(lane.ID)
		require.NoError(t, snapErr)
		assert.Equal(t, "24h", snapshot.TAT)
		assert.False(t, snapshot.HasBeenUpdated)
	})

	t.Run("неизвестный лейн", func(t *testing.T) {
		svc, _ := newTestService(t, new(MockTatClient))

		_, err := svc.ComputeTat(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrLaneNotFound)
	})
}
