package parking

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	testingclock "k8s.io/utils/clock/testing"
)

type testTelemetry struct {
	*TelemetryProvider
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func newTestTelemetry(t *testing.T) *testTelemetry {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	return &testTelemetry{
		TelemetryProvider: NewTelemetryProviderFrom("parking-test", tp, mp),
		spans:             spans,
		reader:            reader,
	}
}

func (tt *testTelemetry) spanNames() []string {
	var names []string
	for _, s := range tt.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func (tt *testTelemetry) sum(t *testing.T, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, tt.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestInstrumentedParkingLotIntegration(t *testing.T) {
	telemetry := newTestTelemetry(t)
	clk := testingclock.NewFakeClock(epoch)

	ipl, err := NewInstrumentedParkingLot(Layout{{Small, Medium, Large}}, telemetry.TelemetryProvider, WithClock(clk))
	require.NoError(t, err)

	ctx := context.Background()

	ticket, err := ipl.Park(ctx, Motorcycle)
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.Slot)

	_, err = ipl.Park(ctx, Motorcycle)
	assert.True(t, errors.Is(err, ErrNoCapacity))

	found, err := ipl.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)

	status := ipl.GetStatus(ctx)
	require.Len(t, status, 3)
	assert.False(t, status[0].Available)

	assert.EqualValues(t, 1, telemetry.sum(t, "parking_lot_occupancy"))

	settlement, err := ipl.Settle(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultHourlyRate, settlement.Amount)

	_, err = ipl.Settle(ctx, ticket.ID)
	assert.True(t, errors.Is(err, ErrTicketAlreadySettled))

	assert.True(t, ipl.GetStatus(ctx)[0].Available)

	assert.EqualValues(t, 0, telemetry.sum(t, "parking_lot_occupancy"))
	assert.EqualValues(t, 3, telemetry.sum(t, "parking_lot_total_slots"))
	assert.EqualValues(t, 2, telemetry.sum(t, "parking_operations_total"))
	assert.EqualValues(t, 2, telemetry.sum(t, "leaving_operations_total"))
	assert.EqualValues(t, DefaultHourlyRate, telemetry.sum(t, "parking_revenue_total"))

	assert.Subset(t, telemetry.spanNames(), []string{
		"parking_lot.park",
		"parking_lot.settle",
		"parking_lot.get_status",
		"parking_lot.get_ticket",
	})
}

func TestInstrumentedParkingLotCloseRetiresGauges(t *testing.T) {
	telemetry := newTestTelemetry(t)
	ctx := context.Background()

	old, err := NewInstrumentedParkingLot(Layout{{Small, Medium, Large}}, telemetry.TelemetryProvider)
	require.NoError(t, err)
	_, err = old.Park(ctx, Motorcycle)
	require.NoError(t, err)
	_, err = old.Park(ctx, Truck)
	require.NoError(t, err)
	assert.EqualValues(t, 2, telemetry.sum(t, "parking_lot_occupancy"))

	replacement, err := NewInstrumentedParkingLot(Layout{{Medium}}, telemetry.TelemetryProvider)
	require.NoError(t, err)
	require.NoError(t, old.Close())

	assert.EqualValues(t, 1, telemetry.sum(t, "parking_lot_total_slots"))
	assert.EqualValues(t, 0, telemetry.sum(t, "parking_lot_occupancy"))

	_, err = replacement.Park(ctx, Car)
	require.NoError(t, err)
	assert.EqualValues(t, 1, telemetry.sum(t, "parking_lot_occupancy"))
}

func TestInstrumentedParkingLotDenialIsNotSpanError(t *testing.T) {
	telemetry := newTestTelemetry(t)

	ipl, err := NewInstrumentedParkingLot(Layout{{Small}}, telemetry.TelemetryProvider)
	require.NoError(t, err)

	_, err = ipl.Park(context.Background(), Truck)
	require.Error(t, err)

	spans := telemetry.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "parking_lot.park", spans[0].Name())
	assert.NotEqual(t, "Error", spans[0].Status().Code.String())
}
