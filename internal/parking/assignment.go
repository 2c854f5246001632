package parking

// AssignmentStrategy picks a free slot for the vehicle or returns nil. It must
// not change slot state; the caller occupies the returned slot.
type AssignmentStrategy func(floors []*Floor, vehicle *Vehicle) *Slot

// RequiredSpotSize maps a vehicle type to the only spot size it may use.
func RequiredSpotSize(vehicleType VehicleType) (SpotSize, bool) {
	switch vehicleType {
	case Motorcycle:
		return Small, true
	case Car:
		return Medium, true
	case Truck:
		return Large, true
	default:
		return 0, false
	}
}

// FirstFitAssignment scans floors and then slots in construction order and
// returns the first free slot of the required size.
func FirstFitAssignment(floors []*Floor, vehicle *Vehicle) *Slot {
	size, ok := RequiredSpotSize(vehicle.Type)
	if !ok {
		return nil
	}

	for _, floor := range floors {
		if slot := firstFree(floor, size); slot != nil {
			return slot
		}
	}
	return nil
}

// LeastOccupiedFloorAssignment spreads vehicles over floors: it picks the
// floor with the most free slots of the required size (lowest floor on ties)
// and then the first free slot on it.
func LeastOccupiedFloorAssignment(floors []*Floor, vehicle *Vehicle) *Slot {
	size, ok := RequiredSpotSize(vehicle.Type)
	if !ok {
		return nil
	}

	var best *Floor
	bestFree := 0
	for _, floor := range floors {
		if free := floor.freeCount(size); free > bestFree {
			best, bestFree = floor, free
		}
	}
	if best == nil {
		return nil
	}
	return firstFree(best, size)
}

// AssignmentByName resolves the names accepted in configuration.
func AssignmentByName(name string) (AssignmentStrategy, bool) {
	switch name {
	case "", "first-fit":
		return FirstFitAssignment, true
	case "least-occupied":
		return LeastOccupiedFloorAssignment, true
	default:
		return nil, false
	}
}

func firstFree(floor *Floor, size SpotSize) *Slot {
	for _, slot := range floor.slots {
		if slot.Size == size && slot.IsAvailable() {
			return slot
		}
	}
	return nil
}
