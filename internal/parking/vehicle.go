package parking

import (
	"strings"

	"github.com/google/uuid"
)

type VehicleType int

const (
	Motorcycle VehicleType = iota + 1
	Car
	Truck
)

func (t VehicleType) String() string {
	switch t {
	case Motorcycle:
		return "motorcycle"
	case Car:
		return "car"
	case Truck:
		return "truck"
	default:
		return "unknown"
	}
}

// ParseVehicleType accepts the lower-case names printed by String. Anything
// else yields the zero VehicleType, which no spot size accepts.
func ParseVehicleType(s string) VehicleType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motorcycle", "bike":
		return Motorcycle
	case "car":
		return Car
	case "truck":
		return Truck
	default:
		return 0
	}
}

// Vehicle is immutable once created. ID is a random UUID so two vehicles
// never share an identity for the lifetime of the process.
type Vehicle struct {
	ID   string
	Type VehicleType
}

func NewVehicle(vehicleType VehicleType) *Vehicle {
	return &Vehicle{
		ID:   uuid.New().String(),
		Type: vehicleType,
	}
}
