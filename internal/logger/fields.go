package logger

import "log/slog"

// Standard field keys for structured logging. Use these keys consistently
// across the server and client so experiment logs can be grepped and joined
// on the same names.
const (
	KeyOp        = "op"         // operation name: QUERY, BOOK, CHANGE, ...
	KeyRequestID = "request_id" // client-assigned request identifier
	KeyClient    = "client"     // normalized client endpoint (host:port)
	KeyFacility  = "facility"   // facility name
	KeyBookingID = "booking_id" // confirmation id
	KeySemantics = "semantics"  // at-least-once or at-most-once
	KeyErrorCode = "error_code" // wire error code byte
	KeyError     = "error"      // error message
	KeyAttempt   = "attempt"    // client retry attempt number
	KeyCacheHit  = "cache_hit"  // request-history replay indicator
	KeyDropped   = "dropped"    // simulated-loss drop direction
	KeyDuration  = "duration_ms"
)

// Op returns a slog.Attr for the operation name
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// RequestID returns a slog.Attr for the request identifier
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// Client returns a slog.Attr for the client endpoint
func Client(endpoint string) slog.Attr {
	return slog.String(KeyClient, endpoint)
}

// Facility returns a slog.Attr for the facility name
func Facility(name string) slog.Attr {
	return slog.String(KeyFacility, name)
}

// BookingID returns a slog.Attr for a confirmation id
func BookingID(id string) slog.Attr {
	return slog.String(KeyBookingID, id)
}

// ErrorCode returns a slog.Attr for a wire error code
func ErrorCode(code uint8) slog.Attr {
	return slog.Any(KeyErrorCode, code)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
