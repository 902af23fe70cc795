package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Change handles CHANGE: shift a booking by a signed minute offset. The
// operation is not idempotent; a replayed request shifts again.
func (h *Handler) Change(req wire.ChangeRequest) (Result, error) {
	b, err := h.Store.Change(req.ConfirmationID, int(req.OffsetMinutes))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:           wire.ChangeReply{},
		ChangedFacility: b.Facility,
	}, nil
}
