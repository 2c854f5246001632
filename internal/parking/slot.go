package parking

type SpotSize int

const (
	Small SpotSize = iota + 1
	Medium
	Large
)

func (s SpotSize) String() string {
	switch s {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

// Slot is a single parking spot. Its size is fixed at construction; the
// occupant is only changed by ParkingManager while it holds its lock.
type Slot struct {
	Floor  int
	Number int
	Size   SpotSize

	vehicleID string
}

func NewSlot(floor, number int, size SpotSize) *Slot {
	return &Slot{
		Floor:  floor,
		Number: number,
		Size:   size,
	}
}

func (s *Slot) IsAvailable() bool {
	return s.vehicleID == ""
}

func (s *Slot) VehicleID() string {
	return s.vehicleID
}

func (s *Slot) park(vehicle *Vehicle) {
	if !s.IsAvailable() {
		panic(InvariantViolation{Reason: "slot already occupied", Floor: s.Floor, Slot: s.Number})
	}
	s.vehicleID = vehicle.ID
}

func (s *Slot) leave() string {
	vehicleID := s.vehicleID
	s.vehicleID = ""
	return vehicleID
}
