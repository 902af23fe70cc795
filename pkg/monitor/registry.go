// Package monitor implements the availability-callback registry: clients
// register an interest in a facility for a window of time, and every
// availability change fans out a callback datagram to the still-live
// registrations.
package monitor

import (
	"net/netip"
	"time"
)

// Sender delivers one callback datagram to a client endpoint. The server's
// implementation routes it through the same socket and loss model as
// ordinary replies.
type Sender interface {
	Send(endpoint netip.AddrPort, data []byte) error
}

// Subscription is one registered interest. Registrations are not
// deduplicated; the same endpoint may hold several overlapping windows and
// receives one callback per registration.
type Subscription struct {
	Facility string
	Endpoint netip.AddrPort
	Expiry   time.Time
}

// Registry holds the active subscriptions. It is not safe for concurrent
// use; the owning dispatcher serializes access.
type Registry struct {
	subs []Subscription
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Register adds a subscription for the facility that lives for the given
// duration.
func (r *Registry) Register(facility string, endpoint netip.AddrPort, duration time.Duration) Subscription {
	sub := Subscription{
		Facility: facility,
		Endpoint: endpoint,
		Expiry:   r.now().Add(duration),
	}
	r.subs = append(r.subs, sub)
	return sub
}

// Active returns the number of unexpired subscriptions.
func (r *Registry) Active() int {
	now := r.now()
	n := 0
	for _, s := range r.subs {
		if s.Expiry.After(now) {
			n++
		}
	}
	return n
}

// Fanout sends data to every live subscription for the facility. Expired
// subscriptions are pruned, and a subscription whose send fails is dropped
// so a gone client does not keep absorbing callbacks. Returns how many sends
// succeeded.
func (r *Registry) Fanout(facility string, data []byte, sender Sender) int {
	now := r.now()
	sent := 0
	kept := r.subs[:0]
	for _, s := range r.subs {
		if !s.Expiry.After(now) {
			continue
		}
		if s.Facility == facility {
			if err := sender.Send(s.Endpoint, data); err != nil {
				continue
			}
			sent++
		}
		kept = append(kept, s)
	}
	r.subs = kept
	return sent
}
