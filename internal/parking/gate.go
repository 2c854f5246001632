package parking

import (
	"github.com/pkg/errors"
	"k8s.io/utils/clock"
)

// EntryGate admits vehicles: it reserves a slot and issues a ticket.
type EntryGate struct {
	manager *ParkingManager
	tickets *TicketDirectory
	clock   clock.PassiveClock
}

func NewEntryGate(manager *ParkingManager, tickets *TicketDirectory, clk clock.PassiveClock) *EntryGate {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &EntryGate{
		manager: manager,
		tickets: tickets,
		clock:   clk,
	}
}

// Admit returns ErrUnknownVehicleType, ErrVehicleAlreadyParked or
// ErrNoCapacity when the vehicle is turned away. No slot or ticket state
// changes on denial.
func (g *EntryGate) Admit(vehicle *Vehicle) (*Ticket, error) {
	if _, ok := RequiredSpotSize(vehicle.Type); !ok {
		return nil, errors.Wrapf(ErrUnknownVehicleType, "vehicle type %d", int(vehicle.Type))
	}

	slot, err := g.manager.Reserve(vehicle)
	if err != nil {
		return nil, err
	}

	ticket := NewTicket(vehicle, slot, g.clock.Now())
	g.tickets.Add(ticket)
	return ticket, nil
}

// ExitGate settles tickets and frees the vehicle's slot.
type ExitGate struct {
	manager *ParkingManager
	tickets *TicketDirectory
	pricing PricingStrategy
	clock   clock.PassiveClock
}

func NewExitGate(manager *ParkingManager, tickets *TicketDirectory, pricing PricingStrategy, clk clock.PassiveClock) *ExitGate {
	if pricing == nil {
		pricing = HourlyPricing(DefaultHourlyRate)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &ExitGate{
		manager: manager,
		tickets: tickets,
		pricing: pricing,
		clock:   clk,
	}
}

// Settle bills the ticket up to now and frees its slot. A ticket can be
// settled once; later calls return an error matching ErrTicketAlreadySettled.
func (g *ExitGate) Settle(ticketID string) (*Settlement, error) {
	settlement, err := g.tickets.Close(ticketID, g.clock.Now(), g.pricing)
	if err != nil {
		return nil, err
	}

	vehicle := settlement.Ticket.Vehicle
	g.manager.Release(&vehicle)
	return settlement, nil
}
