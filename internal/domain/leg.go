package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Leg - одно летное плечо маршрута лейна
// Плечо принадлежит ровно одному лейну (композиция)
type Leg struct {
	ID            uuid.UUID `json:"id"`
	LaneID        uuid.UUID `json:"lane_id"`
	Sequence      int       `json:"sequence"` // Позиция в маршруте, после удалений возможны пропуски

	FlightNumber       string            `json:"flight_number,omitempty"`
	OriginStation      string            `json:"origin_station,omitempty"`      // Код аэропорта вылета
	DestinationStation string            `json:"destination_station,omitempty"` // Код аэропорта прилета
	DepartureTime      string            `json:"departure_time,omitempty"`
	ArrivalTime        string            `json:"arrival_time,omitempty"`
	CutoffTime         string            `json:"cutoff_time,omitempty"`
	OperatingDays      []string          `json:"operating_days,omitempty"` // Дни недели, например ["MON","WED","FRI"]
	AircraftByDay      map[string]string `json:"aircraft_by_day,omitempty"`

	Status             ValidationStatus `json:"status"`
	ValidationMessages []string         `json:"validation_messages,omitempty"`
}

// UnmarshalJSON поддерживает устаревшие записи, где вместо status
// приходило nullable булево поле valid
func (l *Leg) UnmarshalJSON(data []byte) error {
	type alias Leg
	aux := struct {
		*alias
		LegacyValid *bool `json:"valid,omitempty"`
	}{alias: (*alias)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if l.Status == "" {
		l.Status = StatusFromLegacyBool(aux.LegacyValid)
	}

	return nil
}

// Clone возвращает глубокую копию плеча
func (l *Leg) Clone() *Leg {
	cp := *l

	if l.OperatingDays != nil {
		cp.OperatingDays = make([]string, len(l.OperatingDays))
		copy(cp.OperatingDays, l.OperatingDays)
	}
	if l.AircraftByDay != nil {
		cp.AircraftByDay = make(map[string]string, len(l.AircraftByDay))
		for day, aircraft := range l.AircraftByDay {
			cp.AircraftByDay[day] = aircraft
		}
	}
	if l.ValidationMessages != nil {
		cp.ValidationMessages = make([]string, len(l.ValidationMessages))
		copy(cp.ValidationMessages, l.ValidationMessages)
	}

	return &cp
}

// ResetValidation сбрасывает результат проверки после изменения плеча
func (l *Leg) ResetValidation() {
	l.Status = StatusPending
	l.ValidationMessages = nil
}

// ClearFlightFields очищает все летные поля плеча
// Используется при переводе лейна в Direct Drive
func (l *Leg) ClearFlightFields() {
	l.FlightNumber = ""
	l.OriginStation = ""
	l.DestinationStation = ""
	l.DepartureTime = ""
	l.ArrivalTime = ""
	l.CutoffTime = ""
	l.OperatingDays = nil
	l.AircraftByDay = nil
	l.ValidationMessages = nil
	l.Status = StatusPending
}
