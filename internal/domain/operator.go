package domain

// OperatorRole представляет роль оператора в API
// Учетные записи живут во внешнем identity сервисе,
// здесь роль нужна только для авторизации запросов
type OperatorRole string

const (
	RoleOperator OperatorRole = "operator"
	RoleAdmin    OperatorRole = "admin"
)
