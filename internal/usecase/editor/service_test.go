package editor

import (
	"context"
	"testing"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, lanes ...*domain.Lane) (*Service, *workspace.Workspace) {
	t.Helper()

	ws := workspace.New()
	scope := workspace.Scope{Kind: workspace.ScopeAccount, ID: uuid.New()}
	ws.Reset(scope, lanes)

	return NewService(ws, logger.NewNoop()), ws
}

func laneWithLegs(stations ...[2]string) *domain.Lane {
	lane := &domain.Lane{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Status:    domain.StatusPending,
	}
	for i, pair := range stations {
		lane.Legs = append(lane.Legs, &domain.Leg{
			ID:                 uuid.New(),
			LaneID:             lane.ID,
			Sequence:           i + 1,
			OriginStation:      pair[0],
			DestinationStation: pair[1],
			Status:             domain.StatusValid,
		})
	}
	lane.DeriveEndpoints()
	return lane
}

// TestService_CreateLane тестирует создание лейна в рабочем наборе
func TestService_CreateLane(t *testing.T) {
	t.Run("новый лейн сразу помечен измененным", func(t *testing.T) {
		svc, ws := newTestService(t)

		lane, err := svc.CreateLane(context.Background(), &CreateLaneRequest{
			AccountID:    uuid.New(),
			ItemNumber:   "IT-100",
			ServiceLevel: domain.ServiceLevelNFO,
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, lane.ID)
		assert.True(t, lane.HasBeenUpdated)
		assert.Equal(t, domain.StatusPending, lane.Status)
		assert.Len(t, ws.Dirty(), 1)
	})

	t.Run("Direct Drive сразу схлопнут до одного плеча", func(t *testing.T) {
		svc, _ := newTestService(t)

		lane, err := svc.CreateLane(context.Background(), &CreateLaneRequest{
			AccountID:    uuid.New(),
			ServiceLevel: domain.ServiceLevelDirectDrive,
		})
		require.NoError(t, err)

		require.Len(t, lane.Legs, 1)
		assert.Equal(t, domain.StatusValid, lane.Status)
	})

	t.Run("лейн без аккаунта отклоняется", func(t *testing.T) {
		svc, ws := newTestService(t)

		_, err := svc.CreateLane(context.Background(), &CreateLaneRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidLaneData)
		assert.Empty(t, ws.Dirty())
	})
}

// TestService_AddRemoveLeg тестирует изменение состава маршрута
func TestService_AddRemoveLeg(t *testing.T) {
	lane := laneWithLegs([2]string{"JFK", "ORD"})
	lane.Status = domain.StatusValid
	svc, _ := newTestService(t, lane)

	updated, err := svc.AddLeg(context.Background(), lane.ID)
	require.NoError(t, err)

	require.Len(t, updated.Legs, 2)
	assert.Equal(t, 2, updated.Legs[1].Sequence)
	// Изменение маршрута сбрасывает статус лейна
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.True(t, updated.HasBeenUpdated)

	updated, err = svc.RemoveLeg(context.Background(), lane.ID, updated.Legs[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Legs, 1)

	_, err = svc.RemoveLeg(context.Background(), lane.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrLegNotFound)
}

// TestService_SetLegOrigin тестирует изменение станции вылета через guard
func TestService_SetLegOrigin(t *testing.T) {
	t.Run("легальное изменение коммитится и пересчитывает производные", func(t *testing.T) {
		lane := laneWithLegs([2]string{"JFK", "ORD"}, [2]string{"ORD", "LAX"})
		svc, _ := newTestService(t, lane)

		updated, err := svc.SetLegOrigin(context.Background(), lane.ID, lane.Legs[0].ID, " dfw ")
		require.NoError(t, err)

		assert.Equal(t, "DFW", updated.Legs[0].OriginStation)
		assert.Equal(t, "DFW", updated.OriginStation)
		assert.Equal(t, domain.StatusPending, updated.Legs[0].Status)
		assert.Equal(t, domain.StatusPending, updated.Status)
	})

	t.Run("отклонение guard сохраняет прежнее значение", func(t *testing.T) {
		lane := laneWithLegs([2]string{"JFK", "ORD"}, [2]string{"ORD", "LAX"})
		svc, ws := newTestService(t, lane)

		_, err := svc.SetLegOrigin(context.Background(), lane.ID, lane.Legs[1].ID, "JFK")
		assert.ErrorIs(t, err, domain.ErrDuplicateOrigin)

		snapshot, snapErr := ws.Snapshot(lane.ID)
		require.NoError(t, snapErr)
		assert.Equal(t, "ORD", snapshot.Legs[1].OriginStation)
		assert.Equal(t, domain.StatusValid, snapshot.Legs[1].Status)
		assert.False(t, snapshot.HasBeenUpdated)
	})
}

// TestService_SetLegDestination тестирует изменение станции прилета через guard
func TestService_SetLegDestination(t *testing.T) {
	lane := laneWithLegs([2]string{"JFK", "ORD"}, [2]string{"ORD", "LAX"})
	svc, ws := newTestService(t, lane)

	t.Run("прилет в чужую точку вылета отклоняется", func(t *testing.T) {
		_, err := svc.SetLegDestination(context.Background(), lane.ID, lane.Legs[0].ID, "jfk")
		assert.ErrorIs(t, err, domain.ErrDestinationReusesOrigin)

		snapshot, snapErr := ws.Snapshot(lane.ID)
		require.NoError(t, snapErr)
		assert.Equal(t, "ORD", snapshot.Legs[0].DestinationStation)
	})

	t.Run("легальное изменение последнего плеча меняет пункт назначения лейна", func(t *testing.T) {
		updated, err := svc.SetLegDestination(context.Background(), lane.ID, lane.Legs[1].ID, "atl")
		require.NoError(t, err)

		assert.Equal(t, "ATL", updated.Legs[1].DestinationStation)
		assert.Equal(t, "ATL", updated.DestinationStation)
	})
}

// TestService_UpdateLegFlight тестирует частичное изменение летных полей
func TestService_UpdateLegFlight(t *testing.T) {
	lane := laneWithLegs([2]string{"JFK", "ORD"})
	lane.Legs[0].FlightNumber = "AA100"
	lane.Legs[0].DepartureTime = "08:00"
	svc, _ := newTestService(t, lane)

	flight := " AA200 "
	arrival := "12:30"
	updated, err := svc.UpdateLegFlight(context.Background(), lane.ID, lane.Legs[0].ID, &UpdateLegFlightRequest{
		FlightNumber: &flight,
		ArrivalTime:  &arrival,
	})
	require.NoError(t, err)

	leg := updated.Legs[0]
	assert.Equal(t, "AA200", leg.FlightNumber)
	assert.Equal(t, "12:30", leg.ArrivalTime)
	// Незаполненные указатели не трогают поля
	assert.Equal(t, "08:00", leg.DepartureTime)
	// Результат прежней проверки сброшен
	assert.Equal(t, domain.StatusPending, leg.Status)

	_, err = svc.UpdateLegFlight(context.Background(), lane.ID, uuid.New(), &UpdateLegFlightRequest{})
	assert.ErrorIs(t, err, domain.ErrLegNotFound)
}

// TestService_SetLaneField тестирует редактирование через таблицу дескрипторов
func TestService_SetLaneField(t *testing.T) {
	lane := laneWithLegs([2]string{"JFK", "ORD"})
	svc, ws := newTestService(t, lane)

	updated, err := svc.SetLaneField(context.Background(), lane.ID, "origin_city", "New York")
	require.NoError(t, err)
	assert.Equal(t, "New York", updated.OriginCity)
	assert.True(t, updated.HasBeenUpdated)

	_, err = svc.SetLaneField(context.Background(), lane.ID, "origin_station", "DFW")
	assert.ErrorIs(t, err, domain.ErrReadOnlyField)

	snapshot, snapErr := ws.Snapshot(lane.ID)
	require.NoError(t, snapErr)
	assert.Equal(t, "JFK", snapshot.OriginStation)
}

// TestService_SetServiceLevel тестирует смену уровня сервиса
func TestService_SetServiceLevel(t *testing.T) {
	t.Run("Direct Drive схлопывает маршрут", func(t *testing.T) {
		lane := laneWithLegs([2]string{"JFK", "ORD"}, [2]string{"ORD", "LAX"})
		svc, _ := newTestService(t, lane)

		updated, err := svc.SetServiceLevel(context.Background(), lane.ID, domain.ServiceLevelDirectDrive)
		require.NoError(t, err)

		require.Len(t, updated.Legs, 1)
		assert.Empty(t, updated.Legs[0].OriginStation)
		assert.Equal(t, domain.StatusValid, updated.Status)
	})

	t.Run("обратный переход не восстанавливает летные поля", func(t *testing.T) {
		lane := laneWithLegs([2]string{"JFK", "ORD"})
		svc, _ := newTestService(t, lane)

		_, err := svc.SetServiceLevel(context.Background(), lane.ID, domain.ServiceLevelDirectDrive)
		require.NoError(t, err)

		updated, err := svc.SetServiceLevel(context.Background(), lane.ID, domain.ServiceLevelNFO)
		require.NoError(t, err)

		assert.Equal(t, domain.ServiceLevelNFO, updated.ServiceLevel)
		require.Len(t, updated.Legs, 1)
		assert.Empty(t, updated.Legs[0].OriginStation)
	})

	t.Run("неизвестный уровень сервиса отклоняется", func(t *testing.T) {
		lane := laneWithLegs([2]string{"JFK", "ORD"})
		svc, _ := newTestService(t, lane)

		_, err := svc.SetServiceLevel(context.Background(), lane.ID, "SAME DAY")
		assert.ErrorIs(t, err, domain.ErrInvalidServiceLevel)
	})
}
