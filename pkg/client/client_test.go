package client

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
)

// fakeServer is a scripted UDP peer: for each received request it calls the
// step function with the raw datagram and sends back whatever datagrams the
// step returns.
type fakeServer struct {
	t        *testing.T
	conn     *net.UDPConn
	received chan []byte
}

func newFakeServer(t *testing.T, step func(req []byte, n int) [][]byte) *fakeServer {
	t.Helper()

	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	f := &fakeServer{t: t, conn: conn, received: make(chan []byte, 16)}
	go func() {
		buf := make([]byte, wire.MaxDatagramSize)
		n := 0
		for {
			sz, client, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req := make([]byte, sz)
			copy(req, buf[:sz])
			f.received <- req
			n++
			for _, reply := range step(req, n) {
				if _, err := conn.WriteToUDP(reply, client); err != nil {
					return
				}
			}
		}
	}()
	t.Cleanup(func() { _ = conn.Close() })
	return f
}

func (f *fakeServer) addr() string {
	return f.conn.LocalAddr().String()
}

func mustEncodeReply(t *testing.T, p wire.Payload) []byte {
	t.Helper()
	data, err := wire.EncodeReply(p)
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}
	return data
}

func testConfig() Config {
	return Config{Timeout: 200 * time.Millisecond, MaxAttempts: 3}
}

func TestCallRoundTrip(t *testing.T) {
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		return [][]byte{mustEncodeReply(t, wire.BookReply{ConfirmationID: "CONF000001"})}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	id, err := c.Book("Meeting Room A", wire.TimeTriple{Day: 0, Hour: 9, Minute: 0}, wire.TimeTriple{Day: 0, Hour: 10, Minute: 0})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if id != "CONF000001" {
		t.Fatalf("confirmation id = %q", id)
	}
}

func TestRetransmitKeepsRequestID(t *testing.T) {
	srv := newFakeServer(t, func(req []byte, n int) [][]byte {
		if n == 1 {
			return nil // swallow the first attempt
		}
		return [][]byte{mustEncodeReply(t, wire.CancelReply{})}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Cancel("CONF000001"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	first := <-srv.received
	second := <-srv.received
	_, id1, _, err := wire.DecodeRequest(first)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	_, id2, _, err := wire.DecodeRequest(second)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("retransmission changed request id: %d then %d", id1, id2)
	}
}

func TestTimeoutAfterMaxAttempts(t *testing.T) {
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		return nil // never answer
	})

	c, err := Dial(srv.addr(), Config{Timeout: 50 * time.Millisecond, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Cancel("CONF000001"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if got := len(srv.received); got != 3 {
		t.Fatalf("server saw %d attempts, want 3", got)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		return [][]byte{mustEncodeReply(t, wire.ErrorReply{
			Code:   wire.CodeConflict,
			Detail: "facility is busy",
		})}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	_, err = c.Book("Meeting Room A", wire.TimeTriple{Day: 0, Hour: 9, Minute: 0}, wire.TimeTriple{Day: 0, Hour: 10, Minute: 0})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if se.Code != wire.CodeConflict {
		t.Fatalf("code = %d, want CONFLICT", se.Code)
	}
}

func TestMismatchedOpIsDiscarded(t *testing.T) {
	update := mustEncodeReply(t, wire.MonitorUpdate{Facility: "X"})
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		// An unsolicited callback arrives before the real reply.
		return [][]byte{update, mustEncodeReply(t, wire.ExtendReply{})}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Extend("CONF000001", 30); err != nil {
		t.Fatalf("extend: %v", err)
	}
}

func TestMonitorReceivesCallbacks(t *testing.T) {
	ack := mustEncodeReply(t, wire.MonitorReply{})
	update := mustEncodeReply(t, wire.MonitorUpdate{
		Facility: "Meeting Room A",
		Free: []wire.Interval{
			{Start: wire.TimeTriple{Day: 0, Hour: 0, Minute: 0}, End: wire.TimeTriple{Day: 7, Hour: 0, Minute: 0}},
		},
	})
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		return [][]byte{ack, update, update}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	var got []wire.MonitorUpdate
	start := time.Now()
	err = c.Monitor("Meeting Room A", time.Second, func(u wire.MonitorUpdate) {
		got = append(got, u)
	})
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("monitor returned after %v, want full window", elapsed)
	}
	if len(got) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(got))
	}
	if got[0].Facility != "Meeting Room A" {
		t.Fatalf("facility = %q", got[0].Facility)
	}
}

func TestMonitorDiscardsOtherFacilities(t *testing.T) {
	ack := mustEncodeReply(t, wire.MonitorReply{})
	mine := mustEncodeReply(t, wire.MonitorUpdate{Facility: "Meeting Room A"})
	other := mustEncodeReply(t, wire.MonitorUpdate{Facility: "Lecture Theatre 1"})
	srv := newFakeServer(t, func(req []byte, _ int) [][]byte {
		return [][]byte{ack, other, mine, other}
	})

	c, err := Dial(srv.addr(), testConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	var got []wire.MonitorUpdate
	err = c.Monitor("Meeting Room A", time.Second, func(u wire.MonitorUpdate) {
		got = append(got, u)
	})
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("received %d callbacks, want 1", len(got))
	}
	if got[0].Facility != "Meeting Room A" {
		t.Fatalf("facility = %q", got[0].Facility)
	}
}
