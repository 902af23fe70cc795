package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Extend handles EXTEND: move a booking's end past its created end. The
// target end is derived from the created end, so a replayed request lands
// on the same state. A replay that changes nothing succeeds without
// triggering monitor callbacks.
func (h *Handler) Extend(req wire.ExtendRequest) (Result, error) {
	b, changed, err := h.Store.Extend(req.ConfirmationID, int(req.ExtraMinutes))
	if err != nil {
		return Result{}, err
	}
	result := Result{Reply: wire.ExtendReply{}}
	if changed {
		result.ChangedFacility = b.Facility
	}
	return result, nil
}
