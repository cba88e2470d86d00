package domain

import "errors"

var (
	ErrSeatNotFound          = errors.New("seat not found")
	ErrSeatUnavailable       = errors.New("seat is already booked or held by another session")
	ErrSeatAlreadyHeld       = errors.New("seat is already in the current selection")
	ErrCapacityExceeded      = errors.New("a maximum of 8 seats can be held at a time")
	ErrEmptySelection        = errors.New("no seats are selected")
	ErrHoldExpired           = errors.New("your selections have expired, please select your seats again")
	ErrUnknownCategory       = errors.New("unknown seat category")
	ErrInvalidState          = errors.New("operation not allowed in the current booking state")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrShowtimeNotFound      = errors.New("showtime not found")
	ErrShowtimeAlreadyExists = errors.New("showtime already exists")
	ErrInternalInconsistency = errors.New("seat state is inconsistent, selection has been released")
)
