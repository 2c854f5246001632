package parking

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newTestTicket(t *testing.T) *Ticket {
	t.Helper()
	return NewTicket(NewVehicle(Car), NewSlot(1, 1, Medium), epoch)
}

func TestTicketDirectoryAddAndGet(t *testing.T) {
	d, err := NewTicketDirectory(4)
	require.NoError(t, err)

	ticket := newTestTicket(t)
	d.Add(ticket)

	found, err := d.Get(ticket.ID)
	require.NoError(t, err)
	assert.Same(t, ticket, found)
	assert.Equal(t, 1, d.OpenCount())

	_, err = d.Get("missing")
	assert.True(t, errors.Is(err, ErrTicketNotFound))
}

func TestTicketDirectoryDuplicatePanics(t *testing.T) {
	d, err := NewTicketDirectory(4)
	require.NoError(t, err)

	ticket := newTestTicket(t)
	d.Add(ticket)

	assert.Panics(t, func() { d.Add(ticket) })
}

func TestTicketDirectoryCloseOnce(t *testing.T) {
	d, err := NewTicketDirectory(4)
	require.NoError(t, err)

	ticket := newTestTicket(t)
	d.Add(ticket)

	settlement, err := d.Close(ticket.ID, epoch.Add(90*time.Minute), HourlyPricing(10))
	require.NoError(t, err)
	assert.Equal(t, 20, settlement.Amount)
	assert.Equal(t, 90*time.Minute, settlement.Duration())
	assert.Equal(t, 0, d.OpenCount())

	_, err = d.Close(ticket.ID, epoch.Add(10*time.Hour), HourlyPricing(10))
	var settled *AlreadySettledError
	require.True(t, errors.As(err, &settled))
	assert.Same(t, settlement, settled.Settlement)

	_, err = d.Get(ticket.ID)
	assert.True(t, errors.Is(err, ErrTicketAlreadySettled))
}

func TestTicketDirectoryHistoryIsBounded(t *testing.T) {
	d, err := NewTicketDirectory(2)
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		ticket := newTestTicket(t)
		d.Add(ticket)
		_, err := d.Close(ticket.ID, epoch, HourlyPricing(1))
		require.NoError(t, err)
		ids = append(ids, ticket.ID)
	}

	_, err = d.Get(ids[0])
	assert.True(t, errors.Is(err, ErrTicketNotFound), "oldest settlement should be evicted")
	_, err = d.Get(ids[2])
	assert.True(t, errors.Is(err, ErrTicketAlreadySettled))
}

func TestTicketDirectoryDefaultHistorySize(t *testing.T) {
	d, err := NewTicketDirectory(0)
	require.NoError(t, err)
	assert.NotNil(t, d.settled)
}

func TestExitGateConcurrentSettleBillsOnce(t *testing.T) {
	clk := testingclock.NewFakeClock(epoch)
	pl, err := NewParkingLot(Layout{{Small}}, WithClock(clk))
	require.NoError(t, err)

	ticket, err := pl.Park(Motorcycle)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		settled  atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pl.Settle(ticket.ID)
			switch {
			case err == nil:
				settled.Add(1)
			case errors.Is(err, ErrTicketAlreadySettled):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, settled.Load())
	assert.EqualValues(t, 19, rejected.Load())
	assert.True(t, pl.Status()[0].Available)
}

func TestEntryGateConcurrentAdmitIssuesUniqueTickets(t *testing.T) {
	layout := Layout{{Small, Small, Small, Small}, {Small, Small, Small, Small}}
	pl, err := NewParkingLot(layout)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		tickets = make(map[string]*Ticket)
		denied  atomic.Int32
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := pl.Park(Motorcycle)
			if err != nil {
				if IsAdmissionDenied(err) {
					denied.Add(1)
				}
				return
			}
			mu.Lock()
			tickets[ticket.ID] = ticket
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, tickets, 8)
	assert.EqualValues(t, 32, denied.Load())

	type spot struct{ floor, slot int }
	used := make(map[spot]bool)
	for _, ticket := range tickets {
		key := spot{ticket.Floor, ticket.Slot}
		assert.False(t, used[key], "spot %+v issued twice", key)
		used[key] = true

		found, err := pl.Ticket(ticket.ID)
		require.NoError(t, err)
		assert.Same(t, ticket, found)
	}
}
