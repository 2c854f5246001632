package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredSpotSize(t *testing.T) {
	for vehicleType, want := range map[VehicleType]SpotSize{
		Motorcycle: Small,
		Car:        Medium,
		Truck:      Large,
	} {
		size, ok := RequiredSpotSize(vehicleType)
		assert.True(t, ok)
		assert.Equal(t, want, size)
	}

	_, ok := RequiredSpotSize(VehicleType(0))
	assert.False(t, ok)
}

func TestFirstFitAssignmentScansInDeclarationOrder(t *testing.T) {
	floors := []*Floor{
		NewFloor(1, Large, Medium, Small),
		NewFloor(2, Small, Medium),
	}

	slot := FirstFitAssignment(floors, NewVehicle(Car))
	require.NotNil(t, slot)
	assert.Equal(t, 1, slot.Floor)
	assert.Equal(t, 2, slot.Number)
}

func TestFirstFitAssignmentIsDeterministic(t *testing.T) {
	floors := []*Floor{
		NewFloor(1, Medium, Medium, Medium),
		NewFloor(2, Medium, Medium),
	}
	// Leave only floor 2 slot 1 free.
	for _, slot := range floors[0].Slots() {
		slot.park(NewVehicle(Car))
	}
	floors[1].Slots()[1].park(NewVehicle(Car))

	for i := 0; i < 50; i++ {
		slot := FirstFitAssignment(floors, NewVehicle(Car))
		require.NotNil(t, slot)
		assert.Same(t, floors[1].Slots()[0], slot)
	}
}

func TestFirstFitAssignmentDoesNotMutate(t *testing.T) {
	floors := []*Floor{NewFloor(1, Small)}

	first := FirstFitAssignment(floors, NewVehicle(Motorcycle))
	second := FirstFitAssignment(floors, NewVehicle(Motorcycle))

	assert.Same(t, first, second)
	assert.True(t, first.IsAvailable())
}

func TestFirstFitAssignmentNoMatch(t *testing.T) {
	floors := []*Floor{NewFloor(1, Small, Medium)}

	assert.Nil(t, FirstFitAssignment(floors, NewVehicle(Truck)))
	assert.Nil(t, FirstFitAssignment(floors, &Vehicle{ID: "x", Type: VehicleType(7)}))
	assert.Nil(t, FirstFitAssignment(nil, NewVehicle(Car)))
}

func TestLeastOccupiedFloorAssignment(t *testing.T) {
	floors := []*Floor{
		NewFloor(1, Medium, Medium),
		NewFloor(2, Medium, Medium, Medium),
	}

	slot := LeastOccupiedFloorAssignment(floors, NewVehicle(Car))
	require.NotNil(t, slot)
	assert.Equal(t, 2, slot.Floor)
	slot.park(NewVehicle(Car))

	// Floors now tie on two free spots; the lower floor wins.
	slot = LeastOccupiedFloorAssignment(floors, NewVehicle(Car))
	require.NotNil(t, slot)
	assert.Equal(t, 1, slot.Floor)

	assert.Nil(t, LeastOccupiedFloorAssignment(floors, NewVehicle(Truck)))
}

func TestAssignmentStrategyIsSwappable(t *testing.T) {
	layout := Layout{{Medium}, {Medium, Medium}}

	firstFit, err := NewParkingLot(layout)
	require.NoError(t, err)
	balanced, err := NewParkingLot(layout, WithAssignment(LeastOccupiedFloorAssignment))
	require.NoError(t, err)

	t1, err := firstFit.Park(Car)
	require.NoError(t, err)
	t2, err := balanced.Park(Car)
	require.NoError(t, err)

	assert.Equal(t, 1, t1.Floor)
	assert.Equal(t, 2, t2.Floor)
}

func TestAssignmentByName(t *testing.T) {
	_, ok := AssignmentByName("first-fit")
	assert.True(t, ok)
	_, ok = AssignmentByName("least-occupied")
	assert.True(t, ok)
	_, ok = AssignmentByName("random")
	assert.False(t, ok)
}
