package domain

import "errors"

// Business outcomes. Everything here is an expected result of a request,
// not a defect; any other error coming out of a store is a storage failure.
var (
	ErrMissingParameter  = errors.New("missing required parameter")
	ErrOutOfWindow       = errors.New("date is outside the booking window")
	ErrUnknownDepartment = errors.New("unknown department")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrAlreadyBooked     = errors.New("phone already has an active appointment")
	ErrFull              = errors.New("no slots left for this date")
	ErrNoActiveBooking   = errors.New("no active appointment for this phone")
	ErrDepartmentExists  = errors.New("department already exists")
)

// IsBusinessError reports whether err belongs to the expected outcome
// taxonomy, as opposed to a backend fault.
func IsBusinessError(err error) bool {
	for _, known := range []error{
		ErrMissingParameter,
		ErrOutOfWindow,
		ErrUnknownDepartment,
		ErrInvalidPhone,
		ErrAlreadyBooked,
		ErrFull,
		ErrNoActiveBooking,
		ErrDepartmentExists,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
