package parking

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is proof that a vehicle was admitted. It is never modified after
// the entry gate issues it.
type Ticket struct {
	ID        string
	Vehicle   Vehicle
	EntryTime time.Time
	Floor     int
	Slot      int
}

func NewTicket(vehicle *Vehicle, slot *Slot, entryTime time.Time) *Ticket {
	return &Ticket{
		ID:        uuid.New().String(),
		Vehicle:   *vehicle,
		EntryTime: entryTime,
		Floor:     slot.Floor,
		Slot:      slot.Number,
	}
}

// Settlement closes a ticket: the exit time and the amount billed.
type Settlement struct {
	Ticket   *Ticket
	ExitTime time.Time
	Amount   int
}

func (s *Settlement) Duration() time.Duration {
	return s.ExitTime.Sub(s.Ticket.EntryTime)
}
