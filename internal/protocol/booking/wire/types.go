// Package wire implements the binary wire format of the facility-booking
// protocol: big-endian primitives, the request/reply envelope, and one
// tagged message variant per operation code.
package wire

import "fmt"

// Operation codes. Requests and their replies share the same code; a reply
// is distinguished from a request by direction, not by a separate code.
const (
	OpQuery           uint8 = 1
	OpBook            uint8 = 2
	OpChange          uint8 = 3
	OpMonitorRegister uint8 = 4
	OpExtend          uint8 = 5
	OpCancel          uint8 = 6
	OpMonitorUpdate   uint8 = 7
	OpError           uint8 = 0xFF
)

// Error code byte values carried inside an ERROR message.
const (
	CodeNotFound    uint8 = 1
	CodeInvalidTime uint8 = 2
	CodeConflict    uint8 = 3
	CodeCancelled   uint8 = 4
	CodeMalformed   uint8 = 5
	CodeUnknownOp   uint8 = 6
	CodeInternal    uint8 = 7
)

// MaxDatagramSize is the largest UDP payload the protocol will send or
// receive. A logical message is never fragmented across datagrams.
const MaxDatagramSize = 65507

// Week geometry. All booking times are minutes since Monday 00:00.
const (
	MinutesPerDay  = 24 * 60
	MinutesPerWeek = 7 * MinutesPerDay
)

// OpName returns the protocol name of an operation code, for logging.
func OpName(op uint8) string {
	switch op {
	case OpQuery:
		return "QUERY"
	case OpBook:
		return "BOOK"
	case OpChange:
		return "CHANGE"
	case OpMonitorRegister:
		return "MONITOR-REGISTER"
	case OpExtend:
		return "EXTEND"
	case OpCancel:
		return "CANCEL"
	case OpMonitorUpdate:
		return "MONITOR-UPDATE"
	case OpError:
		return "ERROR"
	default:
		return fmt.Sprintf("OP(%d)", op)
	}
}

// CodeName returns the symbolic name of a wire error code, for logging.
func CodeName(code uint8) string {
	switch code {
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeInvalidTime:
		return "INVALID_TIME"
	case CodeConflict:
		return "CONFLICT"
	case CodeCancelled:
		return "CANCELLED"
	case CodeMalformed:
		return "MALFORMED"
	case CodeUnknownOp:
		return "UNKNOWN_OP"
	case CodeInternal:
		return "INTERNAL"
	default:
		return fmt.Sprintf("CODE(%d)", code)
	}
}

// TimeTriple is the 3-byte on-wire form of a weekly time point:
// day 0..6 (0 = Monday), hour 0..23, minute 0..59. The exclusive end of the
// week (Sunday 24:00) is carried as the single out-of-pattern triple (7,0,0).
type TimeTriple struct {
	Day    uint8
	Hour   uint8
	Minute uint8
}

// Valid reports whether the triple denotes a point within the week window.
func (t TimeTriple) Valid() bool {
	if t.Day == 7 {
		return t.Hour == 0 && t.Minute == 0
	}
	return t.Day < 7 && t.Hour < 24 && t.Minute < 60
}

// Minutes converts the triple to minutes since Monday 00:00.
func (t TimeTriple) Minutes() int {
	return int(t.Day)*MinutesPerDay + int(t.Hour)*60 + int(t.Minute)
}

// TripleFromMinutes converts minutes since Monday 00:00 back to a triple.
// The caller must pass a value in [0, MinutesPerWeek].
func TripleFromMinutes(m int) TimeTriple {
	return TimeTriple{
		Day:    uint8(m / MinutesPerDay),
		Hour:   uint8((m / 60) % 24),
		Minute: uint8(m % 60),
	}
}

var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// String renders the triple as e.g. "Mon 10:30". The week-end boundary
// renders as "Sun 24:00".
func (t TimeTriple) String() string {
	if t.Day == 7 {
		return "Sun 24:00"
	}
	return fmt.Sprintf("%s %02d:%02d", dayNames[t.Day], t.Hour, t.Minute)
}

// EndString renders the triple as the exclusive end of an interval. A
// midnight boundary belongs to the day it closes, so it renders as that
// day's 24:00 ("Mon 24:00" rather than "Tue 00:00").
func (t TimeTriple) EndString() string {
	if t.Day > 0 && t.Hour == 0 && t.Minute == 0 {
		return fmt.Sprintf("%s 24:00", dayNames[t.Day-1])
	}
	return t.String()
}

// Interval is a half-open [Start, End) time range on the wire.
type Interval struct {
	Start TimeTriple
	End   TimeTriple
}
