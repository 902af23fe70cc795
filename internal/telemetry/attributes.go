package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for booking protocol spans. Protocol-specific keys use the
// "booking." prefix; transport-level ones follow OpenTelemetry semantic
// conventions.
const (
	AttrOp        = "booking.op"
	AttrRequestID = "booking.request_id"
	AttrFacility  = "booking.facility"
	AttrSemantics = "booking.semantics"
	AttrClient    = "client.address"
)

// Op returns an attribute for the operation name
func Op(name string) attribute.KeyValue {
	return attribute.String(AttrOp, name)
}

// RequestID returns an attribute for the request id
func RequestID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrRequestID, int64(id))
}

// Facility returns an attribute for a facility name
func Facility(name string) attribute.KeyValue {
	return attribute.String(AttrFacility, name)
}

// Semantics returns an attribute for the invocation semantics
func Semantics(s string) attribute.KeyValue {
	return attribute.String(AttrSemantics, s)
}

// ClientAddr returns an attribute for the full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClient, addr)
}
