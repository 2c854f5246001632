package parking

import (
	"context"
	"sync"

	"parking-garage/internal/logging"
)

// LotHolder is the current lot of a running service. The shell and the HTTP
// API share one holder, so a lot created on either side is seen by both.
type LotHolder struct {
	mu  sync.RWMutex
	lot *InstrumentedParkingLot
}

// NewLotHolder returns a holder for lot, which may be nil.
func NewLotHolder(lot *InstrumentedParkingLot) *LotHolder {
	return &LotHolder{lot: lot}
}

func (h *LotHolder) Current() *InstrumentedParkingLot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lot
}

// Replace installs lot and closes the one it replaces. Operations already
// running against the old lot finish on it.
func (h *LotHolder) Replace(ctx context.Context, lot *InstrumentedParkingLot) {
	h.mu.Lock()
	old := h.lot
	h.lot = lot
	h.mu.Unlock()

	if old == nil || old == lot {
		return
	}
	if err := old.Close(); err != nil {
		logging.Warn(ctx, "failed to retire replaced parking lot", "error", err)
	}
}
