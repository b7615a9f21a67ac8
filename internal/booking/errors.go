package booking

import "errors"

// Rejection reasons surfaced to callers. Handlers map these onto HTTP
// statuses; everything else is an internal error.
var (
	// ErrNotFound covers a missing branch, settings, service or appointment.
	ErrNotFound = errors.New("booking: not found")
	// ErrInvalidInput covers malformed dates, times and illegal state
	// transitions.
	ErrInvalidInput = errors.New("booking: invalid input")
	// ErrSlotConflict means the requested slot was taken, either before the
	// admission check or by a concurrent request that won the insert.
	ErrSlotConflict = errors.New("booking: slot already booked")
	// ErrPaymentMethodRequired means branch policy collects fees and the
	// customer has no payment method on file.
	ErrPaymentMethodRequired = errors.New("booking: stored payment method required")
	// ErrTaxCalculation means the tax processor failed; the whole booking
	// request can be retried.
	ErrTaxCalculation = errors.New("booking: tax calculation failed")
)
