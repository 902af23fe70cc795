package history

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAfterStore(t *testing.T) {
	c := New(0)
	ep := netip.MustParseAddrPort("192.0.2.10:5000")

	_, ok := c.Lookup(ep, 1)
	assert.False(t, ok)

	c.Store(ep, 1, []byte{0xAA, 0xBB})

	reply, ok := c.Lookup(ep, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB}, reply)
}

func TestEntriesAreScopedToEndpointAndID(t *testing.T) {
	c := New(0)
	a := netip.MustParseAddrPort("192.0.2.10:5000")
	b := netip.MustParseAddrPort("192.0.2.10:5001")

	c.Store(a, 1, []byte{1})

	_, ok := c.Lookup(a, 2)
	assert.False(t, ok, "different request id must miss")
	_, ok = c.Lookup(b, 1)
	assert.False(t, ok, "different port must miss")
}

func TestIPv4MappedEndpointHitsIPv4Entry(t *testing.T) {
	c := New(0)

	c.Store(netip.MustParseAddrPort("192.0.2.10:5000"), 1, []byte{1})

	mapped := netip.AddrPortFrom(
		netip.AddrFrom16(netip.MustParseAddr("192.0.2.10").As16()),
		5000,
	)
	_, ok := c.Lookup(mapped, 1)
	assert.True(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ep := netip.MustParseAddrPort("192.0.2.10:5000")

	c.Store(ep, 1, []byte{1})

	now = now.Add(59 * time.Second)
	_, ok := c.Lookup(ep, 1)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Lookup(ep, 1)
	assert.False(t, ok)
}

func TestStoreSweepsExpiredEntries(t *testing.T) {
	c := New(time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ep := netip.MustParseAddrPort("192.0.2.10:5000")

	c.Store(ep, 1, []byte{1})
	c.Store(ep, 2, []byte{2})
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Minute)
	c.Store(ep, 3, []byte{3})
	assert.Equal(t, 1, c.Len())
}

func TestStoreOverwrites(t *testing.T) {
	c := New(0)
	ep := netip.MustParseAddrPort("192.0.2.10:5000")

	c.Store(ep, 1, []byte{1})
	c.Store(ep, 1, []byte{2})

	reply, ok := c.Lookup(ep, 1)
	require.True(t, ok)
	assert.Equal(t, []byte{2}, reply)
	assert.Equal(t, 1, c.Len())
}
