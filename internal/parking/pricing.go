package parking

import "time"

const DefaultHourlyRate = 20

// PricingStrategy returns the amount owed for a stay. It must be pure.
type PricingStrategy func(entryTime, exitTime time.Time) int

// HourlyPricing bills every started hour, with a minimum of one hour. A 59
// minute stay costs the same as a 1 minute stay; 61 minutes costs two hours.
func HourlyPricing(rate int) PricingStrategy {
	return func(entryTime, exitTime time.Time) int {
		elapsed := exitTime.Sub(entryTime)
		hours := int(elapsed / time.Hour)
		if elapsed%time.Hour > 0 {
			hours++
		}
		return max(hours, 1) * rate
	}
}

// WholeHourPricing bills only completed hours, with a minimum of one hour, so
// 1h59m costs one hour.
func WholeHourPricing(rate int) PricingStrategy {
	return func(entryTime, exitTime time.Time) int {
		hours := int(exitTime.Sub(entryTime) / time.Hour)
		return max(hours, 1) * rate
	}
}

// PricingByName resolves the names accepted in configuration. "started-hour"
// is the default; "whole-hour" bills only completed hours, so stays of 61 to
// 119 minutes cost one hour instead of two.
func PricingByName(name string, rate int) (PricingStrategy, bool) {
	switch name {
	case "", "started-hour":
		return HourlyPricing(rate), true
	case "whole-hour":
		return WholeHourPricing(rate), true
	default:
		return nil, false
	}
}
