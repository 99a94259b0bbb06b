package domain

// ValidationStatus - трехзначный статус проверки лейна или плеча
// Заменяет устаревшее представление через nullable boolean
type ValidationStatus string

const (
	StatusPending ValidationStatus = "PENDING" // Проверка не выполнялась после последнего изменения
	StatusValid   ValidationStatus = "VALID"
	StatusInvalid ValidationStatus = "INVALID"
)

// IsValid проверяет, что статус принадлежит множеству допустимых значений
func (s ValidationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusValid, StatusInvalid:
		return true
	}
	return false
}

// StatusFromLegacyBool преобразует устаревшее булево поле valid в статус
// nil означает "еще не проверялось"
func StatusFromLegacyBool(valid *bool) ValidationStatus {
	if valid == nil {
		return StatusPending
	}
	if *valid {
		return StatusValid
	}
	return StatusInvalid
}
