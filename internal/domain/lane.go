package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceLevel представляет уровень сервиса лейна
type ServiceLevel string

const (
	ServiceLevelNFO         ServiceLevel = "NFO"      // Next flight out
	ServiceLevelNextDay     ServiceLevel = "NEXT DAY"
	ServiceLevelEconomy     ServiceLevel = "ECONOMY"
	ServiceLevelDirectDrive ServiceLevel = "DIRECT DRIVE" // Только наземная доставка, без летных плеч
)

// IsValid проверяет, что уровень сервиса принадлежит множеству допустимых значений
func (s ServiceLevel) IsValid() bool {
	switch s {
	case ServiceLevelNFO, ServiceLevelNextDay, ServiceLevelEconomy, ServiceLevelDirectDrive:
		return true
	}
	return false
}

// Lane - маршрут доставки между пунктом отправления и назначения
// Лейн владеет своим упорядоченным списком плеч (композиция)
type Lane struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	MappingID  uuid.UUID `json:"mapping_id,omitempty"` // Группировка лейнов по mapping
	ItemNumber string    `json:"item_number,omitempty"`
	LaneOption string    `json:"lane_option,omitempty"`

	OriginCity         string `json:"origin_city,omitempty"`
	OriginState        string `json:"origin_state,omitempty"`
	OriginCountry      string `json:"origin_country,omitempty"`
	DestinationCity    string `json:"destination_city,omitempty"`
	DestinationState   string `json:"destination_state,omitempty"`
	DestinationCountry string `json:"destination_country,omitempty"`

	// Производные поля: всегда равны станциям первого/последнего плеча
	// Никогда не устанавливаются пользователем напрямую
	OriginStation      string `json:"origin_station,omitempty"`
	DestinationStation string `json:"destination_station,omitempty"`

	PickupTime       string       `json:"pickup_time,omitempty"`
	ServiceLevel     ServiceLevel `json:"service_level,omitempty"`
	CustomClearance  string       `json:"custom_clearance,omitempty"`  // Длительность таможенной очистки
	DriveToDest      string       `json:"drive_to_dest,omitempty"`     // Длительность доставки до адреса
	DeliveryEstimate string       `json:"delivery_estimate,omitempty"`
	TAT              string       `json:"tat,omitempty"` // Turn-around-time, хранится как вернул внешний движок
	Notes            string       `json:"notes,omitempty"`

	Status ValidationStatus `json:"status"`

	// Признак локальных несохраненных изменений
	// Устанавливается только этим ядром, никогда persistence boundary
	HasBeenUpdated bool      `json:"has_been_updated"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Счетчик поколений: результат асинхронной операции, стартовавшей
	// на устаревшем поколении, отбрасывается при коммите
	Generation int64 `json:"-"`

	Legs []*Leg `json:"legs,omitempty"`
}

// UnmarshalJSON поддерживает устаревшие записи, где вместо status
// приходило булево поле valid
func (l *Lane) UnmarshalJSON(data []byte) error {
	type alias Lane
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

// Touch отмечает лейн как измененный и сдвигает поколение
func (l *Lane) Touch() {
	l.HasBeenUpdated = true
	l.UpdatedAt = time.Now()
	l.Generation++
}

// Clone возвращает глубокую копию лейна вместе с плечами
func (l *Lane) Clone() *Lane {
	cp := *l

	if l.Legs != nil {
		cp.Legs = make([]*Leg, len(l.Legs))
		for i, leg := range l.Legs {
			cp.Legs[i] = leg.Clone()
		}
	}

	return &cp
}

// SortedLegs возвращает плечи в порядке возрастания sequence
// Пропуски в нумерации допустимы и не мешают сортировке
func (l *Lane) SortedLegs() []*Leg {
	legs := make([]*Leg, len(l.Legs))
	copy(legs, l.Legs)
	sort.SliceStable(legs, func(i, j int) bool {
		return legs[i].Sequence < legs[j].Sequence
	})
	return legs
}

// FindLeg возвращает плечо по ID
func (l *Lane) FindLeg(legID uuid.UUID) (*Leg, bool) {
	for _, leg := range l.Legs {
		if leg.ID == legID {
			return leg, true
		}
	}
	return nil, false
}

// DeriveEndpoints пересчитывает станции отправления и назначения лейна
// из первого и последнего плеча. Вызывается при каждом изменении списка плеч
func (l *Lane) DeriveEndpoints() {
	if len(l.Legs) == 0 {
		l.OriginStation = ""
		l.DestinationStation = ""
		return
	}

	legs := l.SortedLegs()
	l.OriginStation = legs[0].OriginStation
	l.DestinationStation = legs[len(legs)-1].DestinationStation
}

// NextSequence возвращает порядковый номер для нового плеча
func (l *Lane) NextSequence() int {
	max := 0
	for _, leg := range l.Legs {
		if leg.Sequence > max {
			max = leg.Sequence
		}
	}
	return max + 1
}

// AddLeg добавляет пустое плечо в конец маршрута и возвращает его
// Производные поля пересчитываются сразу же
func (l *Lane) AddLeg() *Leg {
	leg := &Leg{
		ID:       uuid.New(),
		LaneID:   l.ID,
		Sequence: l.NextSequence(),
		Status:   StatusPending,
	}

	l.Legs = append(l.Legs, leg)
	l.DeriveEndpoints()

	return leg
}

// RemoveLeg удаляет плечо по ID без перенумерации остальных
func (l *Lane) RemoveLeg(legID uuid.UUID) error {
	for i, leg := range l.Legs {
		if leg.ID == legID {
			l.Legs = append(l.Legs[:i], l.Legs[i+1:]...)
			l.DeriveEndpoints()
			return nil
		}
	}
	return ErrLegNotFound
}

// CheckOriginEdit проверяет изменение станции вылета плеча до коммита
// Правило: физическая точка вылета не может использоваться дважды
// Проверка выполняется только против текущего закоммиченного состояния
func (l *Lane) CheckOriginEdit(legID uuid.UUID, newOrigin string) error {
	if _, ok := l.FindLeg(legID); !ok {
		return ErrLegNotFound
	}

	for _, leg := range l.Legs {
		if leg.ID == legID {
			continue
		}
		if stationsEqual(leg.OriginStation, newOrigin) {
			return ErrDuplicateOrigin
		}
	}

	return nil
}

// CheckDestinationEdit проверяет изменение станции прилета плеча до коммита
// Запрещены совпадение с вылетом того же плеча и прилет в точку,
// которая используется как точка вылета любым плечом маршрута
func (l *Lane) CheckDestinationEdit(legID uuid.UUID, newDestination string) error {
	edited, ok := l.FindLeg(legID)
	if !ok {
		return ErrLegNotFound
	}

	if stationsEqual(edited.OriginStation, newDestination) {
		return ErrOriginEqualsDestination
	}

	for _, leg := range l.Legs {
		if stationsEqual(leg.OriginStation, newDestination) {
			return ErrDestinationReusesOrigin
		}
	}

	return nil
}

// ApplyDirectDrive схлопывает маршрут до одного синтетического плеча
// с очищенными летными полями. Лейн без летных плеч валиден по определению
func (l *Lane) ApplyDirectDrive() {
	leg := &Leg{
		ID:       uuid.New(),
		LaneID:   l.ID,
		Sequence: 1,
		Status:   StatusPending,
	}
	leg.ClearFlightFields()

	l.ServiceLevel = ServiceLevelDirectDrive
	l.Legs = []*Leg{leg}
	l.Status = StatusValid
	l.DeriveEndpoints()
}

// IsDirectDrive сообщает, что лейн обслуживается только наземной доставкой
func (l *Lane) IsDirectDrive() bool {
	return l.ServiceLevel == ServiceLevelDirectDrive
}

// Validate проверяет корректность данных лейна
func (l *Lane) Validate() error {
	if l.AccountID == uuid.Nil {
		return ErrInvalidLaneData
	}

	if l.ServiceLevel != "" && !l.ServiceLevel.IsValid() {
		return ErrInvalidServiceLevel
	}

	if l.Status != "" && !l.Status.IsValid() {
		return ErrInvalidLaneData
	}

	return nil
}

// stationsEqual сравнивает коды аэропортов без учета регистра
func stationsEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
