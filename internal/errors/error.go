package errors

import (
	"errors"
	"net/http"
)

var (
	ErrUserNotFound    = errors.New("user with provided username was not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrSessionNotFound = errors.New("session was not found")
	ErrUserExists      = errors.New("user already exists")

	ErrMatchNotFound       = errors.New("match not found")
	ErrBadCoordinate       = errors.New("invalid coordinate")
	ErrMatchAlreadyStarted = errors.New("match has already started")
	ErrMatchFull           = errors.New("match already has two players")
	ErrDuplicateShot       = errors.New("coordinate was already fired at")
	ErrNotParticipant      = errors.New("player is not a participant of this match")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrMatchNotActive      = errors.New("match is not in progress")
	ErrNoOpponent          = errors.New("opponent not found")

	ErrInternal = errors.New("internal error")
)

// HTTPStatus переводит доменную ошибку в http-статус, чтобы delivery
// не сворачивал известные ошибки в 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, ErrMatchAlreadyStarted),
		errors.Is(err, ErrMatchFull),
		errors.Is(err, ErrDuplicateShot),
		errors.Is(err, ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, ErrMatchNotActive), errors.Is(err, ErrNoOpponent):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
