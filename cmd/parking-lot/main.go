package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"parking-garage/internal/config"
	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
	"parking-garage/internal/server"
)

var (
	mode   = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port   = flag.String("port", "", "Port for HTTP server (overrides APP_PORT)")
	layout = flag.String("layout", "", "Initial garage layout, e.g. SML,SSM (overrides PARKING_LAYOUT)")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *layout != "" {
		cfg.Layout = *layout
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:  cfg.OTelConfig.ServiceName,
		OTLPEndpoint: cfg.OTelConfig.OTLPEndpoint,
	})
	if err != nil {
		logging.Error(ctx, "failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.OTelConfig.ServiceName, cfg.Environment)

	options, err := lotOptions(cfg)
	if err != nil {
		logging.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, cfg, telemetryProvider, options, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, telemetryProvider, options, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, telemetryProvider, options, sigChan)
	default:
		logging.Error(ctx, "invalid mode, must be cli, server, or both", "mode", *mode)
		shutdownTelemetry(telemetryProvider)
		os.Exit(1)
	}
}

func lotOptions(cfg *config.Config) ([]parking.Option, error) {
	pricing, ok := parking.PricingByName(cfg.PricingMode, cfg.HourlyRate)
	if !ok {
		return nil, errors.Errorf("unknown pricing mode %q", cfg.PricingMode)
	}
	assignment, ok := parking.AssignmentByName(cfg.AssignmentStrategy)
	if !ok {
		return nil, errors.Errorf("unknown assignment strategy %q", cfg.AssignmentStrategy)
	}
	return []parking.Option{
		parking.WithPricing(pricing),
		parking.WithAssignment(assignment),
		parking.WithTicketHistory(cfg.TicketHistorySize),
	}, nil
}

// initialLot builds the lot described by the configured layout. A bad layout
// is logged and leaves the service without a lot until a client creates one.
func initialLot(ctx context.Context, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, options []parking.Option) *parking.InstrumentedParkingLot {
	garageLayout, err := parking.ParseLayout(cfg.Layout)
	if err != nil {
		logging.Warn(ctx, "ignoring configured layout", "layout", cfg.Layout, "error", err)
		return nil
	}

	lot, err := parking.NewInstrumentedParkingLot(garageLayout, telemetryProvider, options...)
	if err != nil {
		logging.Warn(ctx, "failed to create initial parking lot", "layout", cfg.Layout, "error", err)
		return nil
	}

	logging.Info(ctx, "parking lot created", "layout", garageLayout.String(), "capacity", garageLayout.Capacity())
	return lot
}

func newShell(lots *parking.LotHolder, telemetryProvider *parking.TelemetryProvider, options []parking.Option) *parking.Shell {
	shell := parking.NewShell(os.Stdin, os.Stdout, telemetryProvider, options...)
	shell.Attach(lots)
	return shell
}

func newServer(cfg *config.Config, lots *parking.LotHolder, telemetryProvider *parking.TelemetryProvider, options []parking.Option) *server.Server {
	handler := server.NewHandler(cfg.OTelConfig.ServiceName, telemetryProvider, lots, options...)
	return server.NewServer(cfg.Port, handler)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, options []parking.Option, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	var lot *parking.InstrumentedParkingLot
	if *layout != "" {
		lot = initialLot(ctx, cfg, telemetryProvider, options)
	}

	// Run returns on cancellation even while blocked reading stdin.
	newShell(parking.NewLotHolder(lot), telemetryProvider, options).Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, options []parking.Option, sigChan chan os.Signal) {
	lots := parking.NewLotHolder(initialLot(ctx, cfg, telemetryProvider, options))
	srv := newServer(cfg, lots, telemetryProvider, options)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "server shutdown error", "error", err)
		}

		cancel()
	}()

	logging.Info(ctx, "starting server mode", "address", srv.GetAddress())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", "error", err)
	}

	shutdownTelemetry(telemetryProvider)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, options []parking.Option, sigChan chan os.Signal) {
	// The shell and the API share one holder, so create_parking_lot and
	// POST /api/parking-lot replace the lot for both.
	lots := parking.NewLotHolder(initialLot(ctx, cfg, telemetryProvider, options))
	srv := newServer(cfg, lots, telemetryProvider, options)

	serverDone := make(chan error, 1)
	go func() {
		logging.Info(ctx, "starting HTTP server", "address", srv.GetAddress())
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		newShell(lots, telemetryProvider, options).Run(ctx)
		close(cliDone)
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", "error", err)
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", "error", err)
	}

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logging.Info(ctx, "shutting down telemetry")
	if err := telemetryProvider.Shutdown(ctx); err != nil {
		logging.Error(ctx, "error shutting down telemetry", "error", err)
	}
}
