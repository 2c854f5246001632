package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"parking-garage/internal/parking"
)

type Handler struct {
	serviceName string
	telemetry   *parking.TelemetryProvider
	options     []parking.Option
	lots        *parking.LotHolder
}

// NewHandler serves the lot in lots, which may be empty until a client
// creates one. A nil holder gets a fresh one. options are applied to every
// lot created through the API.
func NewHandler(serviceName string, telemetry *parking.TelemetryProvider, lots *parking.LotHolder, options ...parking.Option) *Handler {
	if lots == nil {
		lots = parking.NewLotHolder(nil)
	}
	return &Handler{
		serviceName: serviceName,
		telemetry:   telemetry,
		options:     options,
		lots:        lots,
	}
}

func (h *Handler) lot() *parking.InstrumentedParkingLot {
	return h.lots.Current()
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkingLotCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	layout, err := parking.ParseLayout(req.Layout)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid layout: "+err.Error())
		return
	}

	parkingLot, err := parking.NewInstrumentedParkingLot(layout, h.telemetry, h.options...)
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create parking lot")
		return
	}

	h.lots.Replace(ctx, parkingLot)

	WriteSuccess(ctx, w, "Parking lot created successfully", map[string]any{
		"layout":   layout.String(),
		"floors":   len(layout),
		"capacity": layout.Capacity(),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot := h.lot()
	if parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.VehicleType == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Vehicle type is required")
		return
	}

	ticket, err := parkingLot.Park(ctx, parking.ParseVehicleType(req.VehicleType))
	if err != nil {
		if parking.IsAdmissionDenied(err) {
			WriteError(ctx, w, http.StatusConflict, err.Error())
			return
		}
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", ticketResponse(ticket, "open"))
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot := h.lot()
	if parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket id is required")
		return
	}

	settlement, err := parkingLot.Settle(ctx, req.TicketID)
	switch {
	case errors.Is(err, parking.ErrTicketAlreadySettled):
		WriteError(ctx, w, http.StatusConflict, "Ticket already settled")
		return
	case errors.Is(err, parking.ErrTicketNotFound):
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	case err != nil:
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Slot vacated successfully", SettlementResponse{
		TicketID:        settlement.Ticket.ID,
		Floor:           settlement.Ticket.Floor,
		Slot:            settlement.Ticket.Slot,
		EntryTime:       settlement.Ticket.EntryTime,
		ExitTime:        settlement.ExitTime,
		DurationSeconds: int64(settlement.Duration().Seconds()),
		AmountOwed:      settlement.Amount,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot := h.lot()
	if parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	status := parkingLot.GetStatus(ctx)

	response := StatusResponse{
		Layout:   parkingLot.Layout().String(),
		Capacity: len(status),
		Slots:    make([]SlotStatus, 0, len(status)),
		Sizes:    make([]SizeStatus, 0, 3),
	}

	sizes := map[parking.SpotSize]*SizeStatus{}
	for _, spot := range status {
		response.Slots = append(response.Slots, SlotStatus{
			Floor:      spot.Floor,
			SlotNumber: spot.Number,
			Size:       spot.Size.String(),
			Available:  spot.Available,
			VehicleID:  spot.VehicleID,
		})

		s, ok := sizes[spot.Size]
		if !ok {
			s = &SizeStatus{Size: spot.Size.String()}
			sizes[spot.Size] = s
		}
		s.Capacity++
		if spot.Available {
			s.Available++
			response.Available++
		} else {
			response.Occupied++
		}
	}

	for _, size := range []parking.SpotSize{parking.Small, parking.Medium, parking.Large} {
		if s, ok := sizes[size]; ok {
			response.Sizes = append(response.Sizes, *s)
		}
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", response)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parkingLot := h.lot()
	if parkingLot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket id is required")
		return
	}

	ticket, err := parkingLot.GetTicket(ctx, ticketID)
	if err != nil {
		var settled *parking.AlreadySettledError
		if errors.As(err, &settled) {
			WriteSuccess(ctx, w, "Ticket settled", map[string]any{
				"ticket":      ticketResponse(settled.Settlement.Ticket, "settled"),
				"exit_time":   settled.Settlement.ExitTime,
				"amount_owed": settled.Settlement.Amount,
			})
			return
		}
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", ticketResponse(ticket, "open"))
}

func ticketResponse(ticket *parking.Ticket, state string) TicketResponse {
	return TicketResponse{
		TicketID:    ticket.ID,
		VehicleID:   ticket.Vehicle.ID,
		VehicleType: ticket.Vehicle.Type.String(),
		Floor:       ticket.Floor,
		Slot:        ticket.Slot,
		EntryTime:   ticket.EntryTime,
		State:       state,
	}
}
