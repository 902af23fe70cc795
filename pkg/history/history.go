// Package history implements the at-most-once request-history cache: the
// reply bytes of every executed request, keyed by client endpoint and
// request id, so a retransmitted request is answered by replaying the stored
// reply instead of executing again.
package history

import (
	"net/netip"
	"time"
)

// DefaultTTL is how long a stored reply stays replayable. A client that
// retransmits later than this gets a re-execution, which at-most-once
// semantics tolerates only because real clients give up after a few seconds.
const DefaultTTL = 5 * time.Minute

type key struct {
	endpoint netip.AddrPort
	request  uint32
}

type entry struct {
	reply    []byte
	inserted time.Time
}

// Cache stores replies per (endpoint, request id). It is not safe for
// concurrent use; the owning dispatcher serializes access.
type Cache struct {
	ttl     time.Duration
	entries map[key]entry
	now     func() time.Time
}

// New creates a cache with the given TTL. A zero ttl means DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[key]entry),
		now:     time.Now,
	}
}

// normalize collapses equivalent textual forms of an endpoint, in particular
// IPv4-mapped IPv6 addresses, so a client keeps hitting its own entries no
// matter how the kernel reports its address.
func normalize(endpoint netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(endpoint.Addr().Unmap(), endpoint.Port())
}

// Lookup returns the stored reply for the endpoint and request id, if one
// exists and has not expired.
func (c *Cache) Lookup(endpoint netip.AddrPort, requestID uint32) ([]byte, bool) {
	e, ok := c.entries[key{normalize(endpoint), requestID}]
	if !ok || c.now().Sub(e.inserted) > c.ttl {
		return nil, false
	}
	return e.reply, true
}

// Store records the reply for the endpoint and request id, overwriting any
// previous entry, and sweeps expired entries while it is here.
func (c *Cache) Store(endpoint netip.AddrPort, requestID uint32, reply []byte) {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.inserted) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key{normalize(endpoint), requestID}] = entry{reply: reply, inserted: now}
}

// Len returns the number of stored entries, including any not yet swept.
func (c *Cache) Len() int {
	return len(c.entries)
}
