package parking

// Floor owns a fixed, ordered set of slots. Membership never changes after
// NewFloor; only the occupancy of the slots does.
type Floor struct {
	Number int
	slots  []*Slot
}

func NewFloor(number int, sizes ...SpotSize) *Floor {
	slots := make([]*Slot, len(sizes))
	for i, size := range sizes {
		slots[i] = NewSlot(number, i+1, size)
	}

	return &Floor{
		Number: number,
		slots:  slots,
	}
}

func (f *Floor) Slots() []*Slot {
	return f.slots
}

func (f *Floor) FreeSlots() []*Slot {
	var free []*Slot
	for _, slot := range f.slots {
		if slot.IsAvailable() {
			free = append(free, slot)
		}
	}
	return free
}

func (f *Floor) freeCount(size SpotSize) int {
	count := 0
	for _, slot := range f.slots {
		if slot.Size == size && slot.IsAvailable() {
			count++
		}
	}
	return count
}
