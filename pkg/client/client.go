// Package client implements the booking client: one UDP socket, a fresh
// request id per call, and timeout-driven retransmission of the identical
// datagram until a matching reply arrives or the attempts run out.
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/facilityd/internal/logger"
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// Defaults for the reliability engine.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 3
)

// ErrTimeout means no matching reply arrived within the attempt budget.
// The outcome of the operation on the server is unknown: the request may
// never have arrived, or every reply may have been lost.
var ErrTimeout = errors.New("request timed out")

// ServerError is an ERROR reply from the server.
type ServerError struct {
	Code   uint8
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", wire.CodeName(e.Code), e.Detail)
}

// Config holds client settings.
type Config struct {
	// Timeout is the wait per attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxAttempts is the total number of sends per call, the first included.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int
}

// Client is a facility-booking client over a single connected UDP socket.
// It is not safe for concurrent use: the protocol matches replies by
// operation code, so only one call may be in flight.
type Client struct {
	conn   *net.UDPConn
	config Config
	nextID uint32
}

// Dial connects to the server at addr (host:port).
func Dial(addr string, cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{conn: conn, config: cfg}, nil
}

// Close releases the socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call sends the request and blocks until a reply with the request's op
// code or an ERROR arrives, retransmitting the same request id on timeout.
// Datagrams with any other op code are stale or unsolicited and are
// discarded.
func (c *Client) call(req wire.Payload) (wire.Payload, error) {
	c.nextID++
	requestID := c.nextID

	data, err := wire.EncodeRequest(requestID, req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	buf := make([]byte, wire.MaxDatagramSize)

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			logger.Info("Retransmitting request",
				logger.KeyOp, wire.OpName(req.Op()), logger.KeyRequestID, requestID, logger.KeyAttempt, attempt)
		}
		if _, err := c.conn.Write(data); err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}

		deadline := time.Now().Add(c.config.Timeout)
		for {
			if err := c.conn.SetReadDeadline(deadline); err != nil {
				return nil, fmt.Errorf("set read deadline: %w", err)
			}
			n, err := c.conn.Read(buf)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					break // retransmit
				}
				return nil, fmt.Errorf("receive reply: %w", err)
			}

			op, reply, err := wire.DecodeReply(buf[:n])
			if err != nil {
				logger.Debug("Discarding undecodable datagram", logger.KeyError, err)
				continue
			}

			switch op {
			case req.Op():
				return reply, nil
			case wire.OpError:
				e := reply.(wire.ErrorReply)
				return nil, &ServerError{Code: e.Code, Detail: e.Detail}
			default:
				// A stale reply to an earlier request, or a monitor
				// callback arriving outside monitoring mode.
				logger.Debug("Discarding unexpected reply",
					logger.KeyOp, wire.OpName(op), "want", wire.OpName(req.Op()))
			}
		}
	}

	return nil, fmt.Errorf("%s after %d attempts: %w",
		wire.OpName(req.Op()), c.config.MaxAttempts, ErrTimeout)
}

// Query returns the facility's free intervals over the given days.
func (c *Client) Query(facility string, days []uint8) ([]wire.Interval, error) {
	reply, err := c.call(wire.QueryRequest{Facility: facility, Days: days})
	if err != nil {
		return nil, err
	}
	return reply.(wire.QueryReply).Free, nil
}

// Book reserves [start, end) on the facility and returns the confirmation
// id.
func (c *Client) Book(facility string, start, end wire.TimeTriple) (string, error) {
	reply, err := c.call(wire.BookRequest{Facility: facility, Start: start, End: end})
	if err != nil {
		return "", err
	}
	return reply.(wire.BookReply).ConfirmationID, nil
}

// Change shifts a booking by a signed minute offset.
func (c *Client) Change(confirmationID string, offsetMinutes int32) error {
	_, err := c.call(wire.ChangeRequest{ConfirmationID: confirmationID, OffsetMinutes: offsetMinutes})
	return err
}

// Extend lengthens a booking by extraMinutes past its original end.
func (c *Client) Extend(confirmationID string, extraMinutes uint32) error {
	_, err := c.call(wire.ExtendRequest{ConfirmationID: confirmationID, ExtraMinutes: extraMinutes})
	return err
}

// Cancel cancels a booking.
func (c *Client) Cancel(confirmationID string) error {
	_, err := c.call(wire.CancelRequest{ConfirmationID: confirmationID})
	return err
}

// Monitor registers for availability callbacks on the facility and then
// blocks for the whole window, invoking onUpdate for every callback that
// arrives for the registered facility. Callbacks are fire-and-forget on the
// server side; a lost one is simply never seen. Returns once the window has
// elapsed.
func (c *Client) Monitor(facility string, window time.Duration, onUpdate func(wire.MonitorUpdate)) error {
	seconds := uint32(window / time.Second)
	if seconds == 0 {
		seconds = 1
	}
	if _, err := c.call(wire.MonitorRequest{Facility: facility, DurationSeconds: seconds}); err != nil {
		return err
	}

	buf := make([]byte, wire.MaxDatagramSize)
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)

	for time.Now().Before(deadline) {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil // window elapsed
			}
			return fmt.Errorf("receive callback: %w", err)
		}

		op, reply, err := wire.DecodeReply(buf[:n])
		if err != nil || op != wire.OpMonitorUpdate {
			continue
		}
		update := reply.(wire.MonitorUpdate)
		if update.Facility != facility {
			logger.Debug("Discarding callback for unrelated facility",
				logger.KeyFacility, update.Facility, "want", facility)
			continue
		}
		onUpdate(update)
	}
	return nil
}
