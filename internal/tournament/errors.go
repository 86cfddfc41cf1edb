package tournament

import "errors"

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyRegistered  = errors.New("already registered for this tournament")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrLateRegExpired     = errors.New("late registration expired")
	ErrValidation         = errors.New("required fields missing")
)
