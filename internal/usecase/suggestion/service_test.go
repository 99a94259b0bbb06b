package suggestion

import (
	"context"
	"errors"
	"testing"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/infrastructure/routing"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRoutingClient - мок сервиса подсказок маршрутов
type MockRoutingClient struct {
	mock.Mock
}

func (m *MockRoutingClient) ByAirportPair(ctx context.Context, req *routing.AirportPairRequest) ([]domain.RoutePattern, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutePattern), args.Error(1)
}

func (m *MockRoutingClient) ByLocation(ctx context.Context, req *routing.LocationRequest) ([]domain.RoutePattern, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutePattern), args.Error(1)
}

func newTestService(t *testing.T, client routing.Client, lanes ...*domain.Lane) (*Service, *workspace.Workspace) {
	t.Helper()

	ws := workspace.New()
	ws.Reset(workspace.Scope{Kind: workspace.ScopeAccount, ID: uuid.New()}, lanes)

	return NewService(ws, client, logger.NewNoop()), ws
}

func routedLane() *domain.Lane {
	lane := &domain.Lane{
		ID:              uuid.New(),
		AccountID:       uuid.New(),
		OriginCity:      "Dallas",
		OriginCountry:   "US",
		DestinationCity: "Chicago",
		Status:          domain.StatusPending,
	}
	lane.Legs = []*domain.Leg{
		{ID: uuid.New(), LaneID: lane.ID, Sequence: 1, OriginStation: "DFW", DestinationStation: "ORD", Status: domain.StatusValid},
	}
	lane.DeriveEndpoints()
	return lane
}

func testPatterns() []domain.RoutePattern {
	return []domain.RoutePattern{
		{Legs: []domain.PatternLeg{
			{Sequence: 1, FlightNumber: "AA100", OriginStation: "DFW", DestinationStation: "ORD"},
		}},
		{Legs: []domain.PatternLeg{
			{Sequence: 1, FlightNumber: "AA300", OriginStation: "DFW", DestinationStation: "ATL"},
			{Sequence: 2, FlightNumber: "AA400", OriginStation: "ATL", DestinationStation: "ORD"},
		}},
	}
}

// TestService_RequestSuggestions тестирует запрос кандидатов маршрута
func TestService_RequestSuggestions(t *testing.T) {
	t.Run("по паре аэропортов", func(t *testing.T) {
		lane := routedLane()
		client := new(MockRoutingClient)
		client.On("ByAirportPair", mock.Anything, mock.MatchedBy(func(req *routing.AirportPairRequest) bool {
			return req.OriginStation == "DFW" && req.DestinationStation == "ORD"
		})).Return(testPatterns(), nil)

		svc, _ := newTestService(t, client, lane)

		patterns, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		require.NoError(t, err)

		assert.Len(t, patterns, 2)
		assert.Equal(t, 2, svc.PendingCount(lane.ID))
		client.AssertExpectations(t)
	})

	t.Run("без станций отклоняется до сетевого вызова", func(t *testing.T) {
		lane := routedLane()
		lane.Legs = nil
		lane.DeriveEndpoints()

		client := new(MockRoutingClient)
		svc, _ := newTestService(t, client, lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		assert.ErrorIs(t, err, domain.ErrMissingAirportPair)
		client.AssertNotCalled(t, "ByAirportPair", mock.Anything, mock.Anything)
	})

	t.Run("по географии предусловий по станциям нет", func(t *testing.T) {
		lane := routedLane()
		lane.Legs = nil
		lane.DeriveEndpoints()

		client := new(MockRoutingClient)
		client.On("ByLocation", mock.Anything, mock.MatchedBy(func(req *routing.LocationRequest) bool {
			return req.OriginCity == "Dallas" && req.DestinationCity == "Chicago"
		})).Return(testPatterns()[:1], nil)

		svc, _ := newTestService(t, client, lane)

		patterns, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByLocation)
		require.NoError(t, err)
		assert.Len(t, patterns, 1)
	})

	t.Run("новый запрос замещает прежний набор", func(t *testing.T) {
		lane := routedLane()
		client := new(MockRoutingClient)
		client.On("ByAirportPair", mock.Anything, mock.Anything).Return(testPatterns(), nil).Once()
		client.On("ByAirportPair", mock.Anything, mock.Anything).Return(testPatterns()[:1], nil).Once()

		svc, _ := newTestService(t, client, lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		require.NoError(t, err)
		assert.Equal(t, 2, svc.PendingCount(lane.ID))

		_, err = svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		require.NoError(t, err)
		assert.Equal(t, 1, svc.PendingCount(lane.ID))
	})

	t.Run("неизвестный режим", func(t *testing.T) {
		lane := routedLane()
		svc, _ := newTestService(t, new(MockRoutingClient), lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, "by_magic")
		assert.ErrorIs(t, err, domain.ErrInvalidSuggestionMode)
	})

	t.Run("отказ внешнего сервиса пробрасывается", func(t *testing.T) {
		lane := routedLane()
		client := new(MockRoutingClient)
		client.On("ByAirportPair", mock.Anything, mock.Anything).Return(nil, errors.New("service unavailable"))

		svc, _ := newTestService(t, client, lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		assert.Error(t, err)
		assert.Zero(t, svc.PendingCount(lane.ID))
	})
}

// TestService_ApplySuggestion тестирует материализацию кандидата в плечи
func TestService_ApplySuggestion(t *testing.T) {
	t.Run("маршрут заменяется целиком со свежими плечами", func(t *testing.T) {
		lane := routedLane()
		oldLegID := lane.Legs[0].ID

		client := new(MockRoutingClient)
		client.On("ByAirportPair", mock.Anything, mock.Anything).Return(testPatterns(), nil)

		svc, ws := newTestService(t, client, lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		require.NoError(t, err)

		updated, err := svc.ApplySuggestion(context.Background(), lane.ID, 1)
		require.NoError(t, err)

		require.Len(t, updated.Legs, 2)
		assert.Equal(t, "AA300", updated.Legs[0].FlightNumber)
		assert.Equal(t, "AA400", updated.Legs[1].FlightNumber)
		assert.NotEqual(t, oldLegID, updated.Legs[0].ID)
		assert.Equal(t, domain.StatusPending, updated.Legs[0].Status)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.Equal(t, "DFW", updated.OriginStation)
		assert.Equal(t, "ORD", updated.DestinationStation)
		assert.True(t, updated.HasBeenUpdated)

		// Примененный набор кандидатов погашен
		assert.Zero(t, svc.PendingCount(lane.ID))

		snapshot, snapErr := ws.Snapshot(lane.ID)
		require.NoError(t, snapErr)
		assert.Len(t, snapshot.Legs, 2)
	})

	t.Run("без запрошенных кандидатов", func(t *testing.T) {
		lane := routedLane()
		svc, _ := newTestService(t, new(MockRoutingClient), lane)

		_, err := svc.ApplySuggestion(context.Background(), lane.ID, 0)
		assert.ErrorIs(t, err, domain.ErrNoPendingSuggestions)
	})

	t.Run("индекс вне набора", func(t *testing.T) {
		lane := routedLane()
		client := new(MockRoutingClient)
		client.On("ByAirportPair", mock.Anything, mock.Anything).Return(testPatterns(), nil)

		svc, _ := newTestService(t, client, lane)

		_, err := svc.RequestSuggestions(context.Background(), lane.ID, domain.SuggestByAirportPair)
		require.NoError(t, err)

		_, err = svc.ApplySuggestion(context.Background(), lane.ID, 5)
		assert.ErrorIs(t, err, domain.ErrSuggestionNotFound)

		// Неудачная попытка не гасит набор кандидатов
		assert.Equal(t, 2, svc.PendingCount(lane.ID))
	})
}
