package domain

import (
	"fmt"
	"strings"
	"time"
)

// FieldDescriptor описывает редактируемое поле лейна
// Явная таблица дескрипторов вместо динамического доступа к полям по имени
type FieldDescriptor struct {
	Label    string
	ReadOnly bool
	// Format нормализует введенное значение перед записью, может вернуть ошибку
	Format func(value string) (string, error)
	// apply записывает значение в структуру лейна
	apply func(lane *Lane, value string)
}

// formatHour нормализует время вида "9:5" или "09:05" к формату HH:MM
func formatHour(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	t, err := time.Parse("15:04", value)
	if err != nil {
		t, err = time.Parse("3:04", value)
	}
	if err != nil {
		return "", fmt.Errorf("invalid hour value %q: %w", value, err)
	}

	return t.Format("15:04"), nil
}

// LaneFields - таблица всех полей лейна, доступных через generic-редактирование
// Производные поля присутствуют как read-only: попытка их записи отклоняется
var LaneFields = map[string]FieldDescriptor{
	"item_number": {
		Label: "Item Number",
		apply: func(l *Lane, v string) { l.ItemNumber = v },
	},
	"lane_option": {
		Label: "Lane Option",
		apply: func(l *Lane, v string) { l.LaneOption = v },
	},
	"origin_city": {
		Label: "Origin City",
		apply: func(l *Lane, v string) { l.OriginCity = v },
	},
	"origin_state": {
		Label: "Origin State",
		apply: func(l *Lane, v string) { l.OriginState = v },
	},
	"origin_country": {
		Label: "Origin Country",
		apply: func(l *Lane, v string) { l.OriginCountry = v },
	},
	"destination_city": {
		Label: "Destination City",
		apply: func(l *Lane, v string) { l.DestinationCity = v },
	},
	"destination_state": {
		Label: "Destination State",
		apply: func(l *Lane, v string) { l.DestinationState = v },
	},
	"destination_country": {
		Label: "Destination Country",
		apply: func(l *Lane, v string) { l.DestinationCountry = v },
	},
	"pickup_time": {
		Label:  "Pick-up Time",
		Format: formatHour,
		apply:  func(l *Lane, v string) { l.PickupTime = v },
	},
	"custom_clearance": {
		Label: "Custom Clearance",
		apply: func(l *Lane, v string) { l.CustomClearance = v },
	},
	"drive_to_dest": {
		Label: "Drive To Destination",
		apply: func(l *Lane, v string) { l.DriveToDest = v },
	},
	"delivery_estimate": {
		Label:  "Delivery Estimate",
		Format: formatHour,
		apply:  func(l *Lane, v string) { l.DeliveryEstimate = v },
	},
	"notes": {
		Label: "Notes",
		apply: func(l *Lane, v string) { l.Notes = v },
	},

	// Производные и вычисляемые поля - только чтение
	"origin_station":      {Label: "Origin Station", ReadOnly: true},
	"destination_station": {Label: "Destination Station", ReadOnly: true},
	"tat":                 {Label: "TAT", ReadOnly: true},
}

// SetField записывает значение поля лейна через таблицу дескрипторов
// Неизвестные и read-only поля отклоняются без изменения лейна
func (l *Lane) SetField(key, value string) error {
	desc, ok := LaneFields[key]
	if !ok {
		return ErrUnknownField
	}

	if desc.ReadOnly {
		return ErrReadOnlyField
	}

	if desc.Format != nil {
		formatted, err := desc.Format(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLaneData, err)
		}
		value = formatted
	}

	desc.apply(l, value)
	return nil
}
