package parking

import (
	"sync"

	"github.com/pkg/errors"
)

// SpotStatus is a point-in-time view of one slot.
type SpotStatus struct {
	Floor     int
	Number    int
	Size      SpotSize
	Available bool
	VehicleID string
}

// ParkingManager owns the floors and serializes every read and write of slot
// occupancy behind a single lock.
type ParkingManager struct {
	mu       sync.Mutex
	floors   []*Floor
	assign   AssignmentStrategy
	capacity int
	parked   map[string]*Slot
}

// NewParkingManager panics if a slot is shared between floors, since that
// would let two vehicles hold the same spot.
func NewParkingManager(floors []*Floor, assign AssignmentStrategy) *ParkingManager {
	if assign == nil {
		assign = FirstFitAssignment
	}

	seen := make(map[*Slot]struct{})
	capacity := 0
	for _, floor := range floors {
		for _, slot := range floor.slots {
			if _, dup := seen[slot]; dup {
				panic(InvariantViolation{Reason: "slot belongs to more than one floor", Floor: slot.Floor, Slot: slot.Number})
			}
			seen[slot] = struct{}{}
			capacity++
		}
	}

	return &ParkingManager{
		floors:   floors,
		assign:   assign,
		capacity: capacity,
		parked:   make(map[string]*Slot),
	}
}

func (m *ParkingManager) Capacity() int {
	return m.capacity
}

// FindSpot asks the assignment strategy for a slot without occupying it.
func (m *ParkingManager) FindSpot(vehicle *Vehicle) *Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assign(m.floors, vehicle)
}

// Occupy parks the vehicle in slot. The slot must be free and the vehicle
// must not hold another slot; otherwise Occupy panics with InvariantViolation.
func (m *ParkingManager) Occupy(slot *Slot, vehicle *Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, ok := m.parked[vehicle.ID]; ok {
		panic(InvariantViolation{Reason: "vehicle already parked", Floor: held.Floor, Slot: held.Number})
	}
	m.occupy(slot, vehicle)
}

// Reserve finds and occupies a slot in one critical section. It returns
// ErrVehicleAlreadyParked when the vehicle holds a slot already and
// ErrNoCapacity when nothing suitable is free.
func (m *ParkingManager) Reserve(vehicle *Vehicle) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, ok := m.parked[vehicle.ID]; ok {
		return nil, errors.Wrapf(ErrVehicleAlreadyParked, "vehicle %s is at floor %d slot %d", vehicle.ID, held.Floor, held.Number)
	}

	slot := m.assign(m.floors, vehicle)
	if slot == nil {
		return nil, errors.Wrapf(ErrNoCapacity, "no free spot for %s", vehicle.Type)
	}
	m.occupy(slot, vehicle)
	return slot, nil
}

func (m *ParkingManager) occupy(slot *Slot, vehicle *Vehicle) {
	slot.park(vehicle)
	m.parked[vehicle.ID] = slot
}

// Release frees the slot held by the vehicle. Releasing a vehicle that is not
// parked is a no-op and reports false.
func (m *ParkingManager) Release(vehicle *Vehicle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.parked[vehicle.ID]
	if !ok {
		return false
	}
	slot.leave()
	delete(m.parked, vehicle.ID)
	return true
}

func (m *ParkingManager) Status() []SpotStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := make([]SpotStatus, 0, m.capacity)
	for _, floor := range m.floors {
		for _, slot := range floor.slots {
			status = append(status, SpotStatus{
				Floor:     slot.Floor,
				Number:    slot.Number,
				Size:      slot.Size,
				Available: slot.IsAvailable(),
				VehicleID: slot.vehicleID,
			})
		}
	}
	return status
}
