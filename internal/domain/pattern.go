package domain

import "github.com/google/uuid"

// SuggestionMode - способ запроса кандидатов маршрута у внешнего сервиса
type SuggestionMode string

const (
	// SuggestByAirportPair требует заполненных станций первого и последнего плеча
	SuggestByAirportPair SuggestionMode = "by_airport_pair"
	// SuggestByLocation использует город/регион/страну, предусловий по станциям нет
	SuggestByLocation SuggestionMode = "by_location"
)

// IsValid проверяет, что режим принадлежит множеству допустимых значений
func (m SuggestionMode) IsValid() bool {
	return m == SuggestByAirportPair || m == SuggestByLocation
}

// PatternLeg - одно плечо кандидата маршрута
type PatternLeg struct {
	Sequence           int      `json:"sequence"`
	FlightNumber       string   `json:"flight_number"`
	OriginStation      string   `json:"origin_station"`
	DestinationStation string   `json:"destination_station"`
	DepartureTime      string   `json:"departure_time,omitempty"`
	ArrivalTime        string   `json:"arrival_time,omitempty"`
	OperatingDays      []string `json:"operating_days,omitempty"`
}

// RoutePattern - кандидат маршрута от сервиса подсказок
// Еще не применен к лейну
type RoutePattern struct {
	Legs []PatternLeg `json:"legs"`
}

// BuildLegs материализует кандидата в свежие плечи для лейна
// Каждое плечо получает новый ID и статус PENDING
func (p *RoutePattern) BuildLegs(laneID uuid.UUID) []*Leg {
	legs := make([]*Leg, 0, len(p.Legs))
	for _, pl := range p.Legs {
		days := make([]string, len(pl.OperatingDays))
		copy(days, pl.OperatingDays)

		legs = append(legs, &Leg{
			ID:                 uuid.New(),
			LaneID:             laneID,
			Sequence:           pl.Sequence,
			FlightNumber:       pl.FlightNumber,
			OriginStation:      pl.OriginStation,
			DestinationStation: pl.DestinationStation,
			DepartureTime:      pl.DepartureTime,
			ArrivalTime:        pl.ArrivalTime,
			OperatingDays:      days,
			Status:             StatusPending,
		})
	}
	return legs
}
