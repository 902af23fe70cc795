package handlers

import (
	"net/netip"
	"time"

	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Monitor handles MONITOR-REGISTER: subscribe the requester's endpoint to
// availability callbacks for the facility. The reply is an empty ack; the
// current availability follows as an immediate callback so a new monitor
// starts from a known state.
func (h *Handler) Monitor(req wire.MonitorRequest, client netip.AddrPort) (Result, error) {
	update, err := h.AvailabilityUpdate(req.Facility)
	if err != nil {
		return Result{}, err
	}

	h.Monitors.Register(req.Facility, client, time.Duration(req.DurationSeconds)*time.Second)

	return Result{
		Reply:         wire.MonitorReply{},
		InitialUpdate: update,
	}, nil
}
