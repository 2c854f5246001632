package parking

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoCapacity           = errors.New("parking lot is full")
	ErrUnknownVehicleType   = errors.New("unknown vehicle type")
	ErrVehicleAlreadyParked = errors.New("vehicle already parked")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketAlreadySettled = errors.New("ticket already settled")
)

// IsAdmissionDenied reports whether err means the vehicle was turned away at
// the entry gate. Denials are ordinary outcomes, not failures.
func IsAdmissionDenied(err error) bool {
	return errors.Is(err, ErrNoCapacity) ||
		errors.Is(err, ErrUnknownVehicleType) ||
		errors.Is(err, ErrVehicleAlreadyParked)
}

// AlreadySettledError is returned for every settlement after the first one.
// It matches ErrTicketAlreadySettled and carries the original settlement.
type AlreadySettledError struct {
	Settlement *Settlement
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("ticket %s already settled at %s", e.Settlement.Ticket.ID, e.Settlement.ExitTime.Format("2006-01-02T15:04:05Z07:00"))
}

func (e *AlreadySettledError) Is(target error) bool {
	return target == ErrTicketAlreadySettled
}

// InvariantViolation is the panic value used when the at-most-one-occupant
// invariant is broken by a caller or by a bad garage layout.
type InvariantViolation struct {
	Reason string
	Floor  int
	Slot   int
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("parking invariant violated: %s (floor %d, slot %d)", v.Reason, v.Floor, v.Slot)
}
