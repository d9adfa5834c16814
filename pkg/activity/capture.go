package activity

import (
	"context"
	"sync"
)

// CaptureHook collects delivered events in memory. Tests and dev overlays
// use it to assert on what a render emitted; Err, when set, is returned from
// every Notify to exercise failure paths.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns any configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Reset discards collected events.
func (h *CaptureHook) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = nil
}
