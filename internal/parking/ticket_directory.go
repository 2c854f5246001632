package parking

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const DefaultTicketHistorySize = 1024

// TicketDirectory is the system of record for issued tickets. Open tickets
// are kept until settled; settled ones move to a bounded history so repeated
// settlement can be recognised without growing forever.
type TicketDirectory struct {
	mu      sync.RWMutex
	open    map[string]*Ticket
	settled *lru.Cache
}

func NewTicketDirectory(historySize int) (*TicketDirectory, error) {
	if historySize <= 0 {
		historySize = DefaultTicketHistorySize
	}

	settled, err := lru.New(historySize)
	if err != nil {
		return nil, errors.Wrap(err, "creating settled ticket history")
	}

	return &TicketDirectory{
		open:    make(map[string]*Ticket),
		settled: settled,
	}, nil
}

// Add records a newly issued ticket. Ticket ids are random UUIDs, so a
// duplicate means the id source is broken.
func (d *TicketDirectory) Add(ticket *Ticket) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.open[ticket.ID]; exists || d.settled.Contains(ticket.ID) {
		panic(InvariantViolation{Reason: "duplicate ticket id " + ticket.ID, Floor: ticket.Floor, Slot: ticket.Slot})
	}
	d.open[ticket.ID] = ticket
}

// Get returns the open ticket with the given id. For a settled ticket it
// returns an *AlreadySettledError.
func (d *TicketDirectory) Get(id string) (*Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if ticket, ok := d.open[id]; ok {
		return ticket, nil
	}
	if s, ok := d.settled.Peek(id); ok {
		return nil, &AlreadySettledError{Settlement: s.(*Settlement)}
	}
	return nil, errors.Wrapf(ErrTicketNotFound, "ticket %s", id)
}

// Close settles an open ticket at exitTime using price. Pricing and closing
// happen under the directory lock, so a ticket is billed exactly once even
// when settled concurrently.
func (d *TicketDirectory) Close(id string, exitTime time.Time, price PricingStrategy) (*Settlement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ticket, ok := d.open[id]
	if !ok {
		if s, ok := d.settled.Peek(id); ok {
			return nil, &AlreadySettledError{Settlement: s.(*Settlement)}
		}
		return nil, errors.Wrapf(ErrTicketNotFound, "ticket %s", id)
	}

	settlement := &Settlement{
		Ticket:   ticket,
		ExitTime: exitTime,
		Amount:   price(ticket.EntryTime, exitTime),
	}
	delete(d.open, id)
	d.settled.Add(id, settlement)

	return settlement, nil
}

func (d *TicketDirectory) OpenCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.open)
}
