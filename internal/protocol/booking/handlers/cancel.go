package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Cancel handles CANCEL: mark a booking cancelled and free its range. The
// operation is not idempotent; cancelling an already-cancelled booking
// fails with CANCELLED.
func (h *Handler) Cancel(req wire.CancelRequest) (Result, error) {
	b, err := h.Store.Cancel(req.ConfirmationID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:           wire.CancelReply{},
		ChangedFacility: b.Facility,
	}, nil
}
