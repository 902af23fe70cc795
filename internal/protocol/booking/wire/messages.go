package wire

import (
	"bytes"
	"fmt"
)

// Payload is the tagged union of every message body the protocol carries.
// The envelope is a single op-code byte; requests add a u32 request-id
// immediately after it, replies and callbacks do not.
type Payload interface {
	// Op returns the operation code of the message this payload belongs to.
	Op() uint8
}

// QueryRequest asks for the free intervals of a facility on selected days.
type QueryRequest struct {
	Facility string
	Days     []uint8
}

// QueryReply carries the merged free intervals, sorted by start ascending.
// An empty list means the requested windows are fully booked.
type QueryReply struct {
	Free []Interval
}

// BookRequest reserves [Start, End) on a facility.
type BookRequest struct {
	Facility string
	Start    TimeTriple
	End      TimeTriple
}

// BookReply returns the server-issued confirmation id.
type BookReply struct {
	ConfirmationID string
}

// ChangeRequest shifts an existing booking by a signed minute offset.
type ChangeRequest struct {
	ConfirmationID string
	OffsetMinutes  int32
}

// ChangeReply acknowledges a successful change. Empty body.
type ChangeReply struct{}

// MonitorRequest registers the sender for availability callbacks.
type MonitorRequest struct {
	Facility        string
	DurationSeconds uint32
}

// MonitorReply acknowledges a registration. Empty body.
type MonitorReply struct{}

// ExtendRequest lengthens a booking by ExtraMinutes past its original end.
type ExtendRequest struct {
	ConfirmationID string
	ExtraMinutes   uint32
}

// ExtendReply acknowledges a successful extension. Empty body.
type ExtendReply struct{}

// CancelRequest marks a booking cancelled.
type CancelRequest struct {
	ConfirmationID string
}

// CancelReply acknowledges a successful cancellation. Empty body.
type CancelReply struct{}

// MonitorUpdate is the unsolicited callback sent to registered monitors
// whenever a facility's availability changes.
type MonitorUpdate struct {
	Facility string
	Free     []Interval
}

// ErrorReply carries an error code byte and a human-readable detail.
type ErrorReply struct {
	Code   uint8
	Detail string
}

func (QueryRequest) Op() uint8   { return OpQuery }
func (QueryReply) Op() uint8     { return OpQuery }
func (BookRequest) Op() uint8    { return OpBook }
func (BookReply) Op() uint8      { return OpBook }
func (ChangeRequest) Op() uint8  { return OpChange }
func (ChangeReply) Op() uint8    { return OpChange }
func (MonitorRequest) Op() uint8 { return OpMonitorRegister }
func (MonitorReply) Op() uint8   { return OpMonitorRegister }
func (ExtendRequest) Op() uint8  { return OpExtend }
func (ExtendReply) Op() uint8    { return OpExtend }
func (CancelRequest) Op() uint8  { return OpCancel }
func (CancelReply) Op() uint8    { return OpCancel }
func (MonitorUpdate) Op() uint8  { return OpMonitorUpdate }
func (ErrorReply) Op() uint8     { return OpError }

// EncodeRequest builds a request datagram: op code, request id, body.
func EncodeRequest(requestID uint32, p Payload) ([]byte, error) {
	buf := &bytes.Buffer{}
	WriteUint8(buf, p.Op())
	WriteUint32(buf, requestID)

	switch m := p.(type) {
	case QueryRequest:
		WriteString(buf, m.Facility)
		WriteByteList(buf, m.Days)
	case BookRequest:
		WriteString(buf, m.Facility)
		WriteTimeTriple(buf, m.Start)
		WriteTimeTriple(buf, m.End)
	case ChangeRequest:
		WriteString(buf, m.ConfirmationID)
		WriteInt32(buf, m.OffsetMinutes)
	case MonitorRequest:
		WriteString(buf, m.Facility)
		WriteUint32(buf, m.DurationSeconds)
	case ExtendRequest:
		WriteString(buf, m.ConfirmationID)
		WriteUint32(buf, m.ExtraMinutes)
	case CancelRequest:
		WriteString(buf, m.ConfirmationID)
	default:
		return nil, fmt.Errorf("payload %T is not a request", p)
	}

	return checkSize(buf)
}

// DecodeRequest parses a request datagram. On a decode failure the returned
// error wraps ErrMalformed; the op code and request id are still returned
// when the envelope itself was readable.
func DecodeRequest(data []byte) (op uint8, requestID uint32, p Payload, err error) {
	d := NewDecoder(data)
	if op, err = d.Uint8(); err != nil {
		return 0, 0, nil, err
	}
	if requestID, err = d.Uint32(); err != nil {
		return op, 0, nil, err
	}

	switch op {
	case OpQuery:
		var m QueryRequest
		if m.Facility, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		if m.Days, err = d.ByteList(); err != nil {
			return op, requestID, nil, err
		}
		for _, day := range m.Days {
			if day > 6 {
				return op, requestID, nil, fmt.Errorf("%w: day %d out of range", ErrMalformed, day)
			}
		}
		return op, requestID, m, nil
	case OpBook:
		var m BookRequest
		if m.Facility, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		if m.Start, err = d.TimeTriple(); err != nil {
			return op, requestID, nil, err
		}
		if m.End, err = d.TimeTriple(); err != nil {
			return op, requestID, nil, err
		}
		return op, requestID, m, nil
	case OpChange:
		var m ChangeRequest
		if m.ConfirmationID, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		if m.OffsetMinutes, err = d.Int32(); err != nil {
			return op, requestID, nil, err
		}
		return op, requestID, m, nil
	case OpMonitorRegister:
		var m MonitorRequest
		if m.Facility, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		if m.DurationSeconds, err = d.Uint32(); err != nil {
			return op, requestID, nil, err
		}
		return op, requestID, m, nil
	case OpExtend:
		var m ExtendRequest
		if m.ConfirmationID, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		if m.ExtraMinutes, err = d.Uint32(); err != nil {
			return op, requestID, nil, err
		}
		return op, requestID, m, nil
	case OpCancel:
		var m CancelRequest
		if m.ConfirmationID, err = d.String(); err != nil {
			return op, requestID, nil, err
		}
		return op, requestID, m, nil
	default:
		return op, requestID, nil, nil
	}
}

// EncodeReply builds a reply, callback, or error datagram: op code, body.
func EncodeReply(p Payload) ([]byte, error) {
	buf := &bytes.Buffer{}
	WriteUint8(buf, p.Op())

	switch m := p.(type) {
	case QueryReply:
		WriteIntervalList(buf, m.Free)
	case BookReply:
		WriteString(buf, m.ConfirmationID)
	case ChangeReply, MonitorReply, ExtendReply, CancelReply:
		// empty body
	case MonitorUpdate:
		WriteString(buf, m.Facility)
		WriteIntervalList(buf, m.Free)
	case ErrorReply:
		WriteUint8(buf, m.Code)
		WriteString(buf, m.Detail)
	default:
		return nil, fmt.Errorf("payload %T is not a reply", p)
	}

	return checkSize(buf)
}

// DecodeReply parses a reply, callback, or error datagram.
func DecodeReply(data []byte) (op uint8, p Payload, err error) {
	d := NewDecoder(data)
	if op, err = d.Uint8(); err != nil {
		return 0, nil, err
	}

	switch op {
	case OpQuery:
		var m QueryReply
		if m.Free, err = d.IntervalList(); err != nil {
			return op, nil, err
		}
		return op, m, nil
	case OpBook:
		var m BookReply
		if m.ConfirmationID, err = d.String(); err != nil {
			return op, nil, err
		}
		return op, m, nil
	case OpChange:
		return op, ChangeReply{}, nil
	case OpMonitorRegister:
		return op, MonitorReply{}, nil
	case OpExtend:
		return op, ExtendReply{}, nil
	case OpCancel:
		return op, CancelReply{}, nil
	case OpMonitorUpdate:
		var m MonitorUpdate
		if m.Facility, err = d.String(); err != nil {
			return op, nil, err
		}
		if m.Free, err = d.IntervalList(); err != nil {
			return op, nil, err
		}
		return op, m, nil
	case OpError:
		var m ErrorReply
		if m.Code, err = d.Uint8(); err != nil {
			return op, nil, err
		}
		if m.Detail, err = d.String(); err != nil {
			return op, nil, err
		}
		return op, m, nil
	default:
		return op, nil, fmt.Errorf("%w: unknown reply op %d", ErrMalformed, op)
	}
}
