package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// Lane errors
var (
	ErrLaneNotFound    = errors.New("lane not found")
	ErrInvalidLaneData = errors.New("invalid lane data")
	ErrUnknownField    = errors.New("unknown lane field")
	ErrReadOnlyField   = errors.New("field is read-only")
)

// Leg errors
var (
	ErrLegNotFound    = errors.New("leg not found")
	ErrInvalidLegData = errors.New("invalid leg data")
)

// Ошибки uniqueness guard - нарушения структурных ограничений маршрута
var (
	ErrDuplicateOrigin         = errors.New("duplicate departure airport")
	ErrOriginEqualsDestination = errors.New("origin and destination identical")
	ErrDestinationReusesOrigin = errors.New("destination reuses a departure airport")
)

// Service level errors
var (
	ErrInvalidServiceLevel = errors.New("invalid service level")
)

// Suggestion errors
var (
	ErrMissingAirportPair    = errors.New("origin and destination stations are required for airport pair suggestions")
	ErrNoPendingSuggestions  = errors.New("no pending suggestions for lane")
	ErrSuggestionNotFound    = errors.New("suggestion not found")
	ErrInvalidSuggestionMode = errors.New("invalid suggestion mode")
)

// Orchestration errors
var (
	ErrStaleResult = errors.New("lane changed while operation was in flight, result discarded")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)
