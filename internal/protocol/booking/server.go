// Package booking implements the UDP request/reply server of the
// facility-booking protocol: the receive loop, the dispatch table, the
// invocation-semantics machinery, and the simulated-loss model used to
// exercise client retransmission.
package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/facilityd/internal/logger"
	"github.com/marmos91/facilityd/internal/protocol/booking/handlers"
	"github.com/marmos91/facilityd/internal/protocol/booking/wire"
	"github.com/marmos91/facilityd/internal/telemetry"
	bookingstore "github.com/marmos91/facilityd/pkg/booking"
	"github.com/marmos91/facilityd/pkg/history"
	"github.com/marmos91/facilityd/pkg/metrics"
	"github.com/marmos91/facilityd/pkg/monitor"
)

// ServerConfig holds configuration for the booking server.
type ServerConfig struct {
	// Port is the UDP port to listen on.
	Port int

	// Semantics selects at-least-once or at-most-once handling of
	// retransmitted requests.
	Semantics Semantics

	// RequestLoss and ReplyLoss are the probabilities, in [0, 1), that an
	// incoming request or an outgoing reply is silently discarded.
	RequestLoss float64
	ReplyLoss   float64

	// Facilities seeds the booking store.
	Facilities []string

	// HistoryTTL bounds how long cached replies stay replayable. Zero means
	// the package default.
	HistoryTTL time.Duration

	// Metrics receives the server's instruments. Nil creates a private set.
	Metrics *metrics.Metrics

	// Rand drives the loss simulation. Nil means a time-seeded source; tests
	// inject a fixed seed.
	Rand *rand.Rand
}

// Server is a connectionless facility-booking server. A single goroutine
// owns the socket, the store, the history cache, and the monitor registry;
// the mutex exists only so the read-only admin surface can take consistent
// snapshots while the dispatcher runs.
type Server struct {
	config   ServerConfig
	handler  *handlers.Handler
	store    *bookingstore.Store
	history  *history.Cache
	monitors *monitor.Registry
	metrics  *metrics.Metrics
	rng      *rand.Rand
	tracer   trace.Tracer

	udpConn      *net.UDPConn
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	mu           sync.Mutex
}

// NewServer creates a booking server with the given configuration.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	store := bookingstore.NewStore(cfg.Facilities)
	monitors := monitor.NewRegistry()

	return &Server{
		config:   cfg,
		handler:  handlers.NewHandler(store, monitors),
		store:    store,
		history:  history.New(cfg.HistoryTTL),
		monitors: monitors,
		metrics:  cfg.Metrics,
		rng:      rng,
		tracer:   telemetry.Tracer(),
		shutdown: make(chan struct{}),
	}
}

// Metrics returns the server's instrument set, for the admin surface.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Serve starts the booking server. It blocks until the context is cancelled
// or Stop is called.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve UDP %s: %w", addr, err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen UDP %s: %w", addr, err)
	}
	s.udpConn = udpConn

	logger.Info("Booking server started",
		"address", udpConn.LocalAddr().String(),
		logger.KeySemantics, string(s.config.Semantics),
		"p_req_loss", s.config.RequestLoss,
		"p_rep_loss", s.config.ReplyLoss)

	s.wg.Add(1)
	go s.serveUDP(ctx)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	s.wg.Wait()
	return nil
}

// Stop shuts the server down. Safe to call multiple times.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.udpConn != nil {
			_ = s.udpConn.Close()
		}
	})
}

// LocalAddr returns the bound socket address, once Serve has started.
func (s *Server) LocalAddr() net.Addr {
	if s.udpConn == nil {
		return nil
	}
	return s.udpConn.LocalAddr()
}

// serveUDP reads datagrams and dispatches them. Each datagram is one
// complete request; there is no framing.
func (s *Server) serveUDP(ctx context.Context) {
	defer s.wg.Done()

	buf := make([]byte, wire.MaxDatagramSize)

	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		// Short deadline so shutdown is noticed promptly.
		if err := s.udpConn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("Booking: set UDP deadline error", "error", err)
				continue
			}
		}

		n, clientAddr, err := s.udpConn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("Booking: UDP read error", "error", err)
				continue
			}
		}

		// Copy the data since buf is reused.
		msgBuf := make([]byte, n)
		copy(msgBuf, buf[:n])

		s.handleDatagram(ctx, msgBuf, clientAddr)
	}
}

// handleDatagram runs one request through the loss model, the history
// cache, and the dispatch table, then fans out availability callbacks if
// the request changed a facility.
func (s *Server) handleDatagram(ctx context.Context, data []byte, client netip.AddrPort) {
	clientStr := client.String()

	if s.bernoulli(s.config.RequestLoss) {
		s.metrics.DropsTotal.WithLabelValues(metrics.DirectionRequest).Inc()
		logger.Info("Simulated request loss", logger.KeyClient, clientStr, "bytes", len(data))
		return
	}

	op, requestID, payload, err := wire.DecodeRequest(data)
	if err != nil {
		logger.Warn("Malformed request",
			logger.KeyClient, clientStr, logger.KeyOp, wire.OpName(op), logger.KeyError, err)
		s.metrics.RequestsTotal.WithLabelValues(wire.OpName(op), metrics.OutcomeError).Inc()
		s.sendReply(wire.ErrorReply{Code: wire.CodeMalformed, Detail: err.Error()}, client)
		return
	}
	if payload == nil {
		logger.Warn("Unknown operation", logger.KeyClient, clientStr, logger.KeyOp, op, logger.KeyRequestID, requestID)
		s.metrics.RequestsTotal.WithLabelValues(wire.OpName(op), metrics.OutcomeError).Inc()
		s.sendReply(wire.ErrorReply{
			Code:   wire.CodeUnknownOp,
			Detail: fmt.Sprintf("unknown operation code %d", op),
		}, client)
		return
	}

	proc := DispatchTable[op]

	spanCtx, span := s.tracer.Start(ctx, "booking."+proc.Name,
		trace.WithAttributes(
			telemetry.Op(proc.Name),
			telemetry.RequestID(requestID),
			telemetry.ClientAddr(clientStr),
			telemetry.Semantics(string(s.config.Semantics)),
		))
	defer span.End()

	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Under at-most-once a retransmission is answered with the stored
	// reply; the operation does not run again.
	if s.config.Semantics == AtMostOnce {
		if cached, ok := s.history.Lookup(client, requestID); ok {
			s.metrics.HistoryHits.Inc()
			s.metrics.RequestsTotal.WithLabelValues(proc.Name, metrics.OutcomeReplay).Inc()
			logger.Info("Replaying cached reply",
				logger.KeyOp, proc.Name, logger.KeyRequestID, requestID, logger.KeyClient, clientStr)
			s.sendRaw(cached, client)
			return
		}
		s.metrics.HistoryMisses.Inc()
	}

	logger.Info("Handling request",
		logger.KeyOp, proc.Name, logger.KeyRequestID, requestID, logger.KeyClient, clientStr)

	result, err := proc.Handler(s.handler, client, payload)

	reply := result.Reply
	outcome := metrics.OutcomeOK
	if err != nil {
		code := errorCode(err)
		outcome = metrics.OutcomeError
		telemetry.RecordError(spanCtx, err)
		logger.Info("Request failed",
			logger.KeyOp, proc.Name, logger.KeyRequestID, requestID, logger.KeyClient, clientStr,
			logger.KeyErrorCode, wire.CodeName(code), logger.KeyError, err)
		reply = wire.ErrorReply{Code: code, Detail: err.Error()}
	}

	s.metrics.RequestsTotal.WithLabelValues(proc.Name, outcome).Inc()
	s.metrics.RequestSeconds.WithLabelValues(proc.Name).Observe(time.Since(start).Seconds())

	encoded, encErr := wire.EncodeReply(reply)
	if encErr != nil {
		logger.Error("Encode reply failed", logger.KeyOp, proc.Name, logger.KeyError, encErr)
		encoded, _ = wire.EncodeReply(wire.ErrorReply{
			Code:   wire.CodeInternal,
			Detail: "reply encoding failed",
		})
	}

	if s.config.Semantics == AtMostOnce {
		s.history.Store(client, requestID, encoded)
	}

	s.sendRaw(encoded, client)

	// The registration ack is followed by a snapshot callback so the new
	// monitor starts from the current availability.
	if result.InitialUpdate != nil {
		s.sendReply(result.InitialUpdate, client)
		s.metrics.CallbacksTotal.Inc()
	}

	if result.ChangedFacility != "" {
		s.notifyMonitors(result.ChangedFacility)
	}
	s.metrics.ActiveMonitors.Set(float64(s.monitors.Active()))
}

// notifyMonitors fans the facility's new availability out to its live
// subscriptions. Callbacks travel the same lossy path as replies and are
// never retransmitted.
func (s *Server) notifyMonitors(facility string) {
	update, err := s.handler.AvailabilityUpdate(facility)
	if err != nil {
		logger.Error("Availability snapshot failed", logger.KeyFacility, facility, logger.KeyError, err)
		return
	}
	data, err := wire.EncodeReply(update)
	if err != nil {
		logger.Error("Encode callback failed", logger.KeyFacility, facility, logger.KeyError, err)
		return
	}

	sent := s.monitors.Fanout(facility, data, lossSender{s})
	if sent > 0 {
		s.metrics.CallbacksTotal.Add(float64(sent))
		logger.Info("Availability callbacks sent", logger.KeyFacility, facility, "count", sent)
	}
}

// lossSender delivers callbacks through the server's loss model. A
// simulated loss is a successful send as far as the registry is concerned;
// only a real socket error drops the subscription.
type lossSender struct {
	s *Server
}

func (l lossSender) Send(endpoint netip.AddrPort, data []byte) error {
	if l.s.bernoulli(l.s.config.ReplyLoss) {
		l.s.metrics.DropsTotal.WithLabelValues(metrics.DirectionReply).Inc()
		logger.Info("Simulated callback loss", logger.KeyClient, endpoint.String())
		return nil
	}
	_, err := l.s.udpConn.WriteToUDPAddrPort(data, endpoint)
	return err
}

// sendReply encodes and sends a payload, subject to reply loss.
func (s *Server) sendReply(p wire.Payload, client netip.AddrPort) {
	data, err := wire.EncodeReply(p)
	if err != nil {
		logger.Error("Encode reply failed", "error", err)
		return
	}
	s.sendRaw(data, client)
}

// sendRaw sends pre-encoded reply bytes, subject to reply loss.
func (s *Server) sendRaw(data []byte, client netip.AddrPort) {
	if s.bernoulli(s.config.ReplyLoss) {
		s.metrics.DropsTotal.WithLabelValues(metrics.DirectionReply).Inc()
		logger.Info("Simulated reply loss", logger.KeyClient, client.String(), "bytes", len(data))
		return
	}
	if _, err := s.udpConn.WriteToUDPAddrPort(data, client); err != nil {
		logger.Debug("Booking: write UDP reply error", logger.KeyClient, client.String(), logger.KeyError, err)
	}
}

// bernoulli returns true with probability p.
func (s *Server) bernoulli(p float64) bool {
	return p > 0 && s.rng.Float64() < p
}

// errorCode maps a handler error to its wire error code.
func errorCode(err error) uint8 {
	switch {
	case errors.Is(err, bookingstore.ErrNotFound):
		return wire.CodeNotFound
	case errors.Is(err, bookingstore.ErrInvalidTime):
		return wire.CodeInvalidTime
	case errors.Is(err, bookingstore.ErrConflict):
		return wire.CodeConflict
	case errors.Is(err, bookingstore.ErrCancelled):
		return wire.CodeCancelled
	default:
		return wire.CodeInternal
	}
}

// Status is a consistent point-in-time snapshot for the admin surface.
type Status struct {
	Semantics      string  `json:"semantics"`
	RequestLoss    float64 `json:"p_req_loss"`
	ReplyLoss      float64 `json:"p_rep_loss"`
	Facilities     int     `json:"facilities"`
	ActiveBookings int     `json:"active_bookings"`
	ActiveMonitors int     `json:"active_monitors"`
	HistoryEntries int     `json:"history_entries"`
}

// Status returns the current server state under the dispatcher lock.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Semantics:      string(s.config.Semantics),
		RequestLoss:    s.config.RequestLoss,
		ReplyLoss:      s.config.ReplyLoss,
		Facilities:     len(s.store.Facilities()),
		ActiveBookings: s.store.ActiveBookings(),
		ActiveMonitors: s.monitors.Active(),
		HistoryEntries: s.history.Len(),
	}
}
