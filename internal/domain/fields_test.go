package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLane_SetField тестирует generic-редактирование через таблицу дескрипторов
func TestLane_SetField(t *testing.T) {
	t.Run("запись обычного поля", func(t *testing.T) {
		lane := &Lane{ID: uuid.New()}

		require.NoError(t, lane.SetField("origin_city", "Dallas"))
		assert.Equal(t, "Dallas", lane.OriginCity)

		require.NoError(t, lane.SetField("notes", "fragile cargo"))
		assert.Equal(t, "fragile cargo", lane.Notes)
	})

	t.Run("время нормализуется к HH:MM", func(t *testing.T) {
		lane := &Lane{ID: uuid.New()}

		require.NoError(t, lane.SetField("pickup_time", "9:05"))
		assert.Equal(t, "09:05", lane.PickupTime)

		require.NoError(t, lane.SetField("delivery_estimate", " 14:30 "))
		assert.Equal(t, "14:30", lane.DeliveryEstimate)
	})

	t.Run("некорректное время отклоняется", func(t *testing.T) {
		lane := &Lane{ID: uuid.New()}

		err := lane.SetField("pickup_time", "25:99")
		assert.ErrorIs(t, err, ErrInvalidLaneData)
		assert.Empty(t, lane.PickupTime)
	})

	t.Run("неизвестное поле", func(t *testing.T) {
		lane := &Lane{ID: uuid.New()}
		assert.ErrorIs(t, lane.SetField("carrier", "AA"), ErrUnknownField)
	})

	t.Run("производные поля только для чтения", func(t *testing.T) {
		lane := &Lane{ID: uuid.New()}

		assert.ErrorIs(t, lane.SetField("origin_station", "JFK"), ErrReadOnlyField)
		assert.ErrorIs(t, lane.SetField("destination_station", "LAX"), ErrReadOnlyField)
		assert.ErrorIs(t, lane.SetField("tat", "48h"), ErrReadOnlyField)
		assert.Empty(t, lane.OriginStation)
	})
}

// TestFormatHour тестирует нормализацию времени
func TestFormatHour(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "09:05", want: "09:05"},
		{input: "9:05", want: "09:05"},
		{input: "23:59", want: "23:59"},
		{input: "", want: ""},
		{input: "not-a-time", wantErr: true},
		{input: "24:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatHour(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
