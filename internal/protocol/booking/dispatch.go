package booking

import (
	"net/netip"

	"github.com/marmos91/facilityd/internal/protocol/booking/handlers"
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// ProcedureHandler is the signature of a dispatched operation. The client
// endpoint is passed through for handlers with endpoint-scoped side effects
// (monitor registration).
type ProcedureHandler func(h *handlers.Handler, client netip.AddrPort, p wire.Payload) (handlers.Result, error)

// Procedure contains metadata about an operation for dispatch.
type Procedure struct {
	// Name is the operation name for logging (e.g., "QUERY", "BOOK").
	Name string

	// Handler is the function that processes this operation.
	Handler ProcedureHandler
}

// DispatchTable maps request op codes to their handlers. MONITOR-UPDATE and
// ERROR are reply-direction codes and are intentionally absent; a request
// carrying one of them is answered with UNKNOWN_OP.
var DispatchTable = map[uint8]*Procedure{
	wire.OpQuery: {
		Name: "QUERY",
		Handler: func(h *handlers.Handler, _ netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Query(p.(wire.QueryRequest))
		},
	},
	wire.OpBook: {
		Name: "BOOK",
		Handler: func(h *handlers.Handler, _ netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Book(p.(wire.BookRequest))
		},
	},
	wire.OpChange: {
		Name: "CHANGE",
		Handler: func(h *handlers.Handler, _ netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Change(p.(wire.ChangeRequest))
		},
	},
	wire.OpMonitorRegister: {
		Name: "MONITOR-REGISTER",
		Handler: func(h *handlers.Handler, client netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Monitor(p.(wire.MonitorRequest), client)
		},
	},
	wire.OpExtend: {
		Name: "EXTEND",
		Handler: func(h *handlers.Handler, _ netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Extend(p.(wire.ExtendRequest))
		},
	},
	wire.OpCancel: {
		Name: "CANCEL",
		Handler: func(h *handlers.Handler, _ netip.AddrPort, p wire.Payload) (handlers.Result, error) {
			return h.Cancel(p.(wire.CancelRequest))
		},
	},
}
