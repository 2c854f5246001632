package parking

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is the line-oriented front end used in cli mode.
type Shell struct {
	lots      *LotHolder
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
	options   []Option
}

func NewShell(in io.Reader, out io.Writer, telemetry *TelemetryProvider, opts ...Option) *Shell {
	return &Shell{
		lots:      NewLotHolder(nil),
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
		options:   opts,
	}
}

// Attach makes the shell operate on a shared holder, e.g. the one the HTTP
// server uses. create_parking_lot then replaces the lot for both.
func (s *Shell) Attach(lots *LotHolder) {
	s.lots = lots
}

// Run processes commands until the input ends or ctx is cancelled. A read
// blocked on a terminal does not keep Run from returning on cancellation.
func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	lines := s.readLines(ctx)
	for {
		var input string
		select {
		case <-ctx.Done():
			span.AddEvent("shell_interrupted")
			return
		case line, ok := <-lines:
			if !ok {
				span.AddEvent("shell_ended")
				return
			}
			input = strings.TrimSpace(line)
		}

		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}
}

func (s *Shell) readLines(ctx context.Context) <-chan string {
	scanner := s.scanner
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_parking_lot":
		s.handleCreateParkingLot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "ticket":
		s.handleTicket(ctx, parts)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleCreateParkingLot(ctx context.Context, parts []string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.create_parking_lot")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: create_parking_lot <layout>   e.g. SML,SSMML")
		return
	}

	layout, err := ParseLayout(parts[1])
	if err != nil {
		span.RecordError(err)
		span.AddEvent("invalid_layout")
		s.printf("Invalid layout: %s\n", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("parking_lot.layout", layout.String()),
		attribute.Int("parking_lot.capacity", layout.Capacity()),
	)

	instrumentedParkingLot, err := NewInstrumentedParkingLot(layout, s.telemetry, s.options...)
	if err != nil {
		span.RecordError(err)
		s.printf("Error creating parking lot: %s\n", err.Error())
		return
	}

	s.lots.Replace(ctx, instrumentedParkingLot)
	span.AddEvent("parking_lot_created")
	s.printf("Created a parking lot with %d floors and %d slots\n", len(layout), layout.Capacity())
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.park_command")
	defer span.End()

	lot := s.lots.Current()
	if lot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: park <motorcycle|car|truck>")
		return
	}

	vehicleType := ParseVehicleType(parts[1])
	span.SetAttributes(attribute.String("vehicle.type", parts[1]))

	ticket, err := lot.Park(ctx, vehicleType)
	if err != nil {
		span.AddEvent("parking_failed")
		if errors.Is(err, ErrUnknownVehicleType) {
			s.printf("Sorry, %s is not a known vehicle type\n", parts[1])
			return
		}
		s.printf("Sorry, no %s spot available\n", vehicleType)
		return
	}

	span.AddEvent("parking_successful", trace.WithAttributes(
		attribute.Int("allocated_floor", ticket.Floor),
		attribute.Int("allocated_slot", ticket.Slot),
	))
	s.printf("Allocated floor %d slot %d, ticket %s\n", ticket.Floor, ticket.Slot, ticket.ID)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.leave_command")
	defer span.End()

	lot := s.lots.Current()
	if lot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: leave <ticket_id>")
		return
	}

	ticketID := parts[1]
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	settlement, err := lot.Settle(ctx, ticketID)
	if err != nil {
		span.AddEvent("leave_failed")
		switch {
		case errors.Is(err, ErrTicketAlreadySettled):
			s.println("Ticket already settled")
		case errors.Is(err, ErrTicketNotFound):
			s.println("Ticket not found")
		default:
			s.printf("Error: %s\n", err.Error())
		}
		return
	}

	span.AddEvent("leave_successful")
	s.printf("Floor %d slot %d is free, amount due: %d\n",
		settlement.Ticket.Floor, settlement.Ticket.Slot, settlement.Amount)
}

func (s *Shell) handleStatus(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.status_command")
	defer span.End()

	lot := s.lots.Current()
	if lot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	status := lot.GetStatus(ctx)
	span.AddEvent("status_retrieved")

	s.println("Floor\tSlot\tSize\tAvailable")
	for _, spot := range status {
		s.printf("%d\t%d\t%s\t%t\n", spot.Floor, spot.Number, spot.Size, spot.Available)
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	tracer := s.telemetry.Tracer()
	_, span := tracer.Start(ctx, "shell.ticket_command")
	defer span.End()

	lot := s.lots.Current()
	if lot == nil {
		span.AddEvent("parking_lot_not_created")
		s.println("Parking lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.println("Usage: ticket <ticket_id>")
		return
	}

	ticket, err := lot.GetTicket(ctx, parts[1])
	if err != nil {
		var settled *AlreadySettledError
		if errors.As(err, &settled) {
			s.printf("Settled: %d for %s\n", settled.Settlement.Amount, settled.Settlement.Duration())
			return
		}
		s.println("Not found")
		return
	}

	s.printf("%s\tfloor %d slot %d\tsince %s\n",
		ticket.Vehicle.Type, ticket.Floor, ticket.Slot, ticket.EntryTime.Format("15:04:05"))
}
