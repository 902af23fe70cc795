package handlers

import (
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Query handles QUERY: the facility's free intervals over the requested
// days, merged and sorted.
func (h *Handler) Query(req wire.QueryRequest) (Result, error) {
	free, err := h.Store.FreeIntervals(req.Facility, req.Days)
	if err != nil {
		return Result{}, err
	}
	return Result{Reply: wire.QueryReply{Free: toWireIntervals(free)}}, nil
}
