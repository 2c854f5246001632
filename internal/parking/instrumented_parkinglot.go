package parking

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations metric.Int64Counter
	leavingOperations metric.Int64Counter
	revenue           metric.Int64Counter
	operationDuration metric.Float64Histogram

	// Occupancy and slot gauges read Summary at collection time.
	gauges metric.Registration
}

func NewInstrumentedParkingLot(layout Layout, telemetry *TelemetryProvider, opts ...Option) (*InstrumentedParkingLot, error) {
	baseParkingLot, err := NewParkingLot(layout, opts...)
	if err != nil {
		return nil, err
	}

	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	leavingOperations, err := meter.Int64Counter("leaving_operations_total",
		metric.WithDescription("Total number of leaving operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Int64Counter("parking_revenue_total",
		metric.WithDescription("Total amount billed at the exit gate"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64ObservableGauge("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64ObservableGauge("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	gauges, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, s := range baseParkingLot.Summary() {
			if s.Capacity == 0 {
				continue
			}
			attrs := metric.WithAttributes(attribute.String("spot_size", s.Size.String()))
			o.ObserveInt64(totalSlotsGauge, int64(s.Capacity), attrs)
			o.ObserveInt64(occupancyGauge, int64(s.Capacity-s.Available), attrs)
		}
		return nil
	}, occupancyGauge, totalSlotsGauge)
	if err != nil {
		return nil, err
	}

	return &InstrumentedParkingLot{
		ParkingLot:        baseParkingLot,
		telemetry:         telemetry,
		parkingOperations: parkingOperations,
		leavingOperations: leavingOperations,
		revenue:           revenue,
		operationDuration: operationDuration,
		gauges:            gauges,
	}, nil
}

// Close stops reporting this lot's occupancy and slot gauges. Call it when
// the lot is replaced.
func (ipl *InstrumentedParkingLot) Close() error {
	return ipl.gauges.Unregister()
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, vehicleType VehicleType) (*Ticket, error) {
	return ipl.Admit(ctx, NewVehicle(vehicleType))
}

func (ipl *InstrumentedParkingLot) Admit(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.id", vehicle.ID),
			attribute.String("vehicle.type", vehicle.Type.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_slot")

	ticket, err := ipl.ParkingLot.Admit(vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_type", vehicle.Type.String()),
	}

	if err != nil {
		status := "failed"
		if IsAdmissionDenied(err) {
			status = "denied"
		}
		// Denial is an expected outcome, not a span error.
		span.AddEvent("admission_denied", trace.WithAttributes(attribute.String("reason", err.Error())))
		labels = append(labels, attribute.String("status", status))
		ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		logging.Info(ctx, "vehicle turned away", "vehicle_type", vehicle.Type.String(), "reason", err.Error())
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.Int("allocated_floor", ticket.Floor),
			attribute.Int("allocated_slot_number", ticket.Slot),
		)
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("floor", ticket.Floor),
			attribute.Int("slot_number", ticket.Slot),
		))

		ipl.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		logging.Info(ctx, "ticket issued",
			"ticket_id", ticket.ID,
			"vehicle_type", vehicle.Type.String(),
			"floor", ticket.Floor,
			"slot", ticket.Slot,
		)
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) Settle(ctx context.Context, ticketID string) (*Settlement, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.settle",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slot")

	settlement, err := ipl.ParkingLot.Settle(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "leave"),
	}

	switch {
	case err == nil:
		vehicleType := settlement.Ticket.Vehicle.Type.String()
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_type", vehicleType),
		)
		span.SetAttributes(
			attribute.String("vehicle.type", vehicleType),
			attribute.Int("settlement.amount", settlement.Amount),
			attribute.Float64("settlement.duration_hours", settlement.Duration().Hours()),
		)
		span.AddEvent("slot_released")
		ipl.revenue.Add(ctx, int64(settlement.Amount), metric.WithAttributes(attribute.String("vehicle_type", vehicleType)))
		logging.Info(ctx, "ticket settled",
			"ticket_id", ticketID,
			"amount", settlement.Amount,
			"duration", settlement.Duration().String(),
		)
	case errors.Is(err, ErrTicketAlreadySettled):
		span.AddEvent("ticket_already_settled")
		labels = append(labels, attribute.String("status", "already_settled"))
		logging.Warn(ctx, "repeated settlement rejected", "ticket_id", ticketID)
	case errors.Is(err, ErrTicketNotFound):
		span.AddEvent("ticket_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	}

	ipl.leavingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return settlement, err
}

func (ipl *InstrumentedParkingLot) GetStatus(ctx context.Context) []SpotStatus {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.get_status")
	defer span.End()

	start := time.Now()

	span.AddEvent("retrieving_status")

	status := ipl.ParkingLot.Status()

	duration := time.Since(start).Seconds()

	occupied := 0
	for _, spot := range status {
		if !spot.Available {
			occupied++
		}
	}

	span.SetAttributes(
		attribute.Int("occupied_slots_count", occupied),
		attribute.Int("total_capacity", len(status)),
	)

	labels := []attribute.KeyValue{
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return status
}

func (ipl *InstrumentedParkingLot) GetTicket(ctx context.Context, ticketID string) (*Ticket, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.get_ticket",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	ticket, err := ipl.ParkingLot.Ticket(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "get_ticket"),
	}

	switch {
	case err == nil:
		span.AddEvent("ticket_found", trace.WithAttributes(
			attribute.Int("floor", ticket.Floor),
			attribute.Int("slot_number", ticket.Slot),
		))
		labels = append(labels, attribute.String("status", "open"))
	case errors.Is(err, ErrTicketAlreadySettled):
		span.AddEvent("ticket_settled")
		labels = append(labels, attribute.String("status", "settled"))
	default:
		span.AddEvent("ticket_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	}

	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}
