package parking

import (
	"github.com/pkg/errors"
	"k8s.io/utils/clock"
)

type ParkingLot struct {
	layout  Layout
	manager *ParkingManager
	tickets *TicketDirectory
	entry   *EntryGate
	exit    *ExitGate
}

type options struct {
	clock       clock.PassiveClock
	pricing     PricingStrategy
	assignment  AssignmentStrategy
	historySize int
}

type Option func(*options)

func WithClock(clk clock.PassiveClock) Option {
	return func(o *options) { o.clock = clk }
}

func WithPricing(pricing PricingStrategy) Option {
	return func(o *options) { o.pricing = pricing }
}

func WithAssignment(assignment AssignmentStrategy) Option {
	return func(o *options) { o.assignment = assignment }
}

// WithTicketHistory bounds how many settled tickets stay queryable.
func WithTicketHistory(size int) Option {
	return func(o *options) { o.historySize = size }
}

func NewParkingLot(layout Layout, opts ...Option) (*ParkingLot, error) {
	if layout.Capacity() == 0 {
		return nil, errors.New("parking lot needs at least one spot")
	}

	o := options{
		clock:       clock.RealClock{},
		pricing:     HourlyPricing(DefaultHourlyRate),
		assignment:  FirstFitAssignment,
		historySize: DefaultTicketHistorySize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	tickets, err := NewTicketDirectory(o.historySize)
	if err != nil {
		return nil, err
	}

	manager := NewParkingManager(layout.Floors(), o.assignment)

	return &ParkingLot{
		layout:  layout,
		manager: manager,
		tickets: tickets,
		entry:   NewEntryGate(manager, tickets, o.clock),
		exit:    NewExitGate(manager, tickets, o.pricing, o.clock),
	}, nil
}

// Park admits a new vehicle of the given type.
func (pl *ParkingLot) Park(vehicleType VehicleType) (*Ticket, error) {
	return pl.entry.Admit(NewVehicle(vehicleType))
}

// Admit admits an existing vehicle.
func (pl *ParkingLot) Admit(vehicle *Vehicle) (*Ticket, error) {
	return pl.entry.Admit(vehicle)
}

func (pl *ParkingLot) Settle(ticketID string) (*Settlement, error) {
	return pl.exit.Settle(ticketID)
}

// Ticket looks up an open ticket. Settled tickets still in history return an
// *AlreadySettledError.
func (pl *ParkingLot) Ticket(ticketID string) (*Ticket, error) {
	return pl.tickets.Get(ticketID)
}

func (pl *ParkingLot) OpenTickets() int {
	return pl.tickets.OpenCount()
}

func (pl *ParkingLot) Status() []SpotStatus {
	return pl.manager.Status()
}

func (pl *ParkingLot) Capacity() int {
	return pl.manager.Capacity()
}

func (pl *ParkingLot) Layout() Layout {
	return pl.layout
}

// SizeSummary counts spots of one size.
type SizeSummary struct {
	Size      SpotSize
	Capacity  int
	Available int
}

// Summary aggregates Status per spot size in Small, Medium, Large order.
func (pl *ParkingLot) Summary() []SizeSummary {
	summary := []SizeSummary{{Size: Small}, {Size: Medium}, {Size: Large}}
	for _, spot := range pl.Status() {
		s := &summary[spot.Size-1]
		s.Capacity++
		if spot.Available {
			s.Available++
		}
	}
	return summary
}
