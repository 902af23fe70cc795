// Package handlers implements the per-operation request handlers of the
// booking protocol. Each handler decodes nothing and encodes nothing: it
// takes a typed request, applies it to the store or monitor registry, and
// returns a typed reply. The dispatcher owns the wire format, the history
// cache, and all locking.
package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
	"github.com/marmos91/facilityd/pkg/booking"
	"github.com/marmos91/facilityd/pkg/monitor"
)

// Handler carries the state the procedure handlers operate on.
type Handler struct {
	Store    *booking.Store
	Monitors *monitor.Registry
}

// NewHandler creates a handler over the given store and registry.
func NewHandler(store *booking.Store, monitors *monitor.Registry) *Handler {
	return &Handler{Store: store, Monitors: monitors}
}

// Result is the outcome of a successfully handled request.
type Result struct {
	// Reply is the payload to send back to the requester.
	Reply wire.Payload

	// ChangedFacility names the facility whose availability the request
	// altered, or is empty when nothing changed.
	ChangedFacility string

	// InitialUpdate, when non-nil, is an extra callback sent to the
	// requester right after the reply. Only monitor registration sets it.
	InitialUpdate wire.Payload
}

// allDays selects the whole week for snapshot callbacks.
var allDays = []uint8{0, 1, 2, 3, 4, 5, 6}

// toWireIntervals converts store intervals (minutes since Monday) to their
// on-wire time-triple form.
func toWireIntervals(ivs []booking.Interval) []wire.Interval {
	out := make([]wire.Interval, len(ivs))
	for i, iv := range ivs {
		out[i] = wire.Interval{
			Start: wire.TripleFromMinutes(iv.Start),
			End:   wire.TripleFromMinutes(iv.End),
		}
	}
	return out
}

// AvailabilityUpdate builds the callback payload for a facility: its free
// intervals over the whole week.
func (h *Handler) AvailabilityUpdate(facility string) (wire.MonitorUpdate, error) {
	free, err := h.Store.FreeIntervals(facility, allDays)
	if err != nil {
		return wire.MonitorUpdate{}, err
	}
	return wire.MonitorUpdate{Facility: facility, Free: toWireIntervals(free)}, nil
}
