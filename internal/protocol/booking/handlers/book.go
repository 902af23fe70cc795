package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Book handles BOOK: reserve [start, end) on the facility and return the
// confirmation id.
func (h *Handler) Book(req wire.BookRequest) (Result, error) {
	b, err := h.Store.Book(req.Facility, req.Start.Minutes(), req.End.Minutes())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:           wire.BookReply{ConfirmationID: b.ConfirmationID},
		ChangedFacility: b.Facility,
	}, nil
}
