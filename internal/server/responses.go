package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkingLotCreateRequest struct {
	Layout string `json:"layout"`
}

type ParkVehicleRequest struct {
	VehicleType string `json:"vehicle_type"`
}

type LeaveRequest struct {
	TicketID string `json:"ticket_id"`
}

type TicketResponse struct {
	TicketID    string    `json:"ticket_id"`
	VehicleID   string    `json:"vehicle_id"`
	VehicleType string    `json:"vehicle_type"`
	Floor       int       `json:"floor"`
	Slot        int       `json:"slot"`
	EntryTime   time.Time `json:"entry_time"`
	State       string    `json:"state"`
}

type SettlementResponse struct {
	TicketID        string    `json:"ticket_id"`
	Floor           int       `json:"floor"`
	Slot            int       `json:"slot"`
	EntryTime       time.Time `json:"entry_time"`
	ExitTime        time.Time `json:"exit_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	AmountOwed      int       `json:"amount_owed"`
}

type SlotStatus struct {
	Floor      int    `json:"floor"`
	SlotNumber int    `json:"slot_number"`
	Size       string `json:"size"`
	Available  bool   `json:"available"`
	VehicleID  string `json:"vehicle_id,omitempty"`
}

type SizeStatus struct {
	Size      string `json:"size"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
}

type StatusResponse struct {
	Layout    string       `json:"layout"`
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Sizes     []SizeStatus `json:"sizes"`
	Slots     []SlotStatus `json:"slots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
