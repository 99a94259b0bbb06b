package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPersistService - мок координатора сохранения
type MockPersistService struct {
	mock.Mock
}

func (m *MockPersistService) LoadByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lane), args.Error(1)
}

func (m *MockPersistService) LoadByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error) {
	args := m.Called(ctx, mappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lane), args.Error(1)
}

func (m *MockPersistService) SelectDirty() []*domain.Lane {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.Lane)
}

func (m *MockPersistService) SaveDirty(ctx context.Context) ([]*domain.Lane, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lane), args.Error(1)
}

func (m *MockPersistService) SaveLane(ctx context.Context, laneID uuid.UUID) (*domain.Lane, error) {
	args := m.Called(ctx, laneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lane), args.Error(1)
}

func (m *MockPersistService) DeleteLane(ctx context.Context, laneID uuid.UUID) error {
	args := m.Called(ctx, laneID)
	return args.Error(0)
}

func (m *MockPersistService) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockPersistService) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error) {
	args := m.Called(ctx, mappingID)
	return args.Int(0), args.Error(1)
}

// TestLaneHandler_LoadLanes тестирует загрузку рабочего набора
func TestLaneHandler_LoadLanes(t *testing.T) {
	accountID := uuid.New()
	mappingID := uuid.New()

	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockPersistService)
		expectedStatus int
	}{
		{
			name:  "по аккаунту",
			query: "?account_id=" + accountID.String(),
			mockSetup: func(m *MockPersistService) {
				m.On("LoadByAccount", mock.Anything, accountID).
					Return([]*domain.Lane{{ID: uuid.New(), AccountID: accountID}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "по mapping",
			query: "?mapping_id=" + mappingID.String(),
			mockSetup: func(m *MockPersistService) {
				m.On("LoadByMapping", mock.Anything, mappingID).
					Return([]*domain.Lane{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "без параметров",
			query:          "",
			mockSetup:      func(m *MockPersistService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "невалидный account_id",
			query:          "?account_id=not-a-uuid",
			mockSetup:      func(m *MockPersistService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPersistService)
			tt.mockSetup(mockService)

			handler := NewLaneHandler(mockService, logger.NewNoop())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/lanes"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.LoadLanes(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestLaneHandler_DeleteLane тестирует гейт подтверждения удаления
func TestLaneHandler_DeleteLane(t *testing.T) {
	laneID := uuid.New()

	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockPersistService)
		expectedStatus int
	}{
		{
			name:  "с подтверждением",
			query: "?confirm=true",
			mockSetup: func(m *MockPersistService) {
				m.On("DeleteLane", mock.Anything, laneID).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "без подтверждения сервис не вызывается",
			query:          "",
			mockSetup:      func(m *MockPersistService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "confirm=false сервис не вызывается",
			query:          "?confirm=false",
			mockSetup:      func(m *MockPersistService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPersistService)
			tt.mockSetup(mockService)

			handler := NewLaneHandler(mockService, logger.NewNoop())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/lanes/"+laneID.String()+tt.query, nil)
			req = withURLParams(req, map[string]string{"id": laneID.String()})
			w := httptest.NewRecorder()

			handler.DeleteLane(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
			if tt.expectedStatus != http.StatusOK {
				mockService.AssertNotCalled(t, "DeleteLane", mock.Anything, mock.Anything)
			}
		})
	}
}

// TestLaneHandler_SaveDirty тестирует сохранение измененных лейнов
func TestLaneHandler_SaveDirty(t *testing.T) {
	mockService := new(MockPersistService)
	mockService.On("SaveDirty", mock.Anything).
		Return([]*domain.Lane{{ID: uuid.New()}}, nil)

	handler := NewLaneHandler(mockService, logger.NewNoop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lanes/save", nil)
	w := httptest.NewRecorder()

	handler.SaveDirty(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["success"])
	mockService.AssertExpectations(t)
}

// TestLaneHandler_GetLaneCount тестирует счетчики лейнов
func TestLaneHandler_GetLaneCount(t *testing.T) {
	accountID := uuid.New()

	mockService := new(MockPersistService)
	mockService.On("CountByAccount", mock.Anything, accountID).Return(42, nil)

	handler := NewLaneHandler(mockService, logger.NewNoop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lanes/count?account_id="+accountID.String(), nil)
	w := httptest.NewRecorder()

	handler.GetLaneCount(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, 42, response.Data["count"])
	mockService.AssertExpectations(t)
}
