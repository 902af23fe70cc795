// Package booking implements the in-memory facility-booking store: seeded
// facilities, half-open weekly bookings keyed by confirmation id, and the
// free-interval computation behind availability queries and monitor
// callbacks. All times are minutes since Monday 00:00.
package booking

import (
	"fmt"
	"sort"
)

// Week geometry in minutes since Monday 00:00.
const (
	MinutesPerDay  = 24 * 60
	MinutesPerWeek = 7 * MinutesPerDay
)

// Interval is a half-open [Start, End) range of minutes since Monday 00:00.
type Interval struct {
	Start int
	End   int
}

// Booking is a confirmed reservation of a facility.
type Booking struct {
	ConfirmationID string
	Facility       string
	Start          int
	End            int

	// OriginalEnd is the end minute the booking was created with. It never
	// changes afterwards; extensions are applied relative to it, which makes
	// a repeated extension with the same argument a no-op rather than a
	// second shift.
	OriginalEnd int

	Cancelled bool
}

// Active reports whether the booking still occupies its range.
func (b *Booking) Active() bool {
	return !b.Cancelled
}

// Overlaps reports whether the booking's range intersects [start, end).
// Touching ranges do not overlap.
func (b *Booking) Overlaps(start, end int) bool {
	return b.Start < end && start < b.End
}

// Store holds the facilities and their bookings. It is not safe for
// concurrent use; the owning dispatcher serializes access.
type Store struct {
	facilities map[string]struct{}
	bookings   map[string]*Booking
	nextID     uint64
}

// NewStore creates a store seeded with the given facility names.
func NewStore(facilities []string) *Store {
	s := &Store{
		facilities: make(map[string]struct{}, len(facilities)),
		bookings:   make(map[string]*Booking),
	}
	for _, f := range facilities {
		s.facilities[f] = struct{}{}
	}
	return s
}

// Facilities returns the facility names in sorted order.
func (s *Store) Facilities() []string {
	names := make([]string, 0, len(s.facilities))
	for f := range s.facilities {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// HasFacility reports whether the named facility exists.
func (s *Store) HasFacility(facility string) bool {
	_, ok := s.facilities[facility]
	return ok
}

// ActiveBookings returns the number of bookings that are not cancelled.
func (s *Store) ActiveBookings() int {
	n := 0
	for _, b := range s.bookings {
		if b.Active() {
			n++
		}
	}
	return n
}

// Lookup returns the booking with the given confirmation id, or ErrNotFound.
func (s *Store) Lookup(confirmationID string) (*Booking, error) {
	b, ok := s.bookings[confirmationID]
	if !ok {
		return nil, fmt.Errorf("booking %q: %w", confirmationID, ErrNotFound)
	}
	return b, nil
}

// validRange reports whether [start, end) is a non-empty range inside the
// week.
func validRange(start, end int) bool {
	return 0 <= start && start < end && end <= MinutesPerWeek
}

// conflicts reports whether [start, end) overlaps any active booking of the
// facility other than exclude.
func (s *Store) conflicts(facility string, start, end int, exclude *Booking) bool {
	for _, b := range s.bookings {
		if b == exclude || b.Facility != facility || !b.Active() {
			continue
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// Book reserves [start, end) on the facility and returns the new booking.
func (s *Store) Book(facility string, start, end int) (*Booking, error) {
	if !s.HasFacility(facility) {
		return nil, fmt.Errorf("facility %q: %w", facility, ErrNotFound)
	}
	if !validRange(start, end) {
		return nil, fmt.Errorf("range [%d, %d): %w", start, end, ErrInvalidTime)
	}
	if s.conflicts(facility, start, end, nil) {
		return nil, fmt.Errorf("facility %q is busy in [%d, %d): %w", facility, start, end, ErrConflict)
	}

	s.nextID++
	b := &Booking{
		ConfirmationID: fmt.Sprintf("CONF%06d", s.nextID),
		Facility:       facility,
		Start:          start,
		End:            end,
		OriginalEnd:    end,
	}
	s.bookings[b.ConfirmationID] = b
	return b, nil
}

// Change shifts the booking by offset minutes, keeping its duration. The
// shifted range must stay inside the week and must not collide with another
// active booking. Repeating a change shifts again; the operation is not
// idempotent.
func (s *Store) Change(confirmationID string, offset int) (*Booking, error) {
	b, err := s.Lookup(confirmationID)
	if err != nil {
		return nil, err
	}
	if b.Cancelled {
		return nil, fmt.Errorf("booking %q: %w", confirmationID, ErrCancelled)
	}

	start := b.Start + offset
	end := b.End + offset
	if !validRange(start, end) {
		return nil, fmt.Errorf("shifted range [%d, %d): %w", start, end, ErrInvalidTime)
	}
	if s.conflicts(b.Facility, start, end, b) {
		return nil, fmt.Errorf("facility %q is busy in [%d, %d): %w", b.Facility, start, end, ErrConflict)
	}

	b.Start = start
	b.End = end
	return b, nil
}

// Extend moves the booking's end to OriginalEnd + extra minutes. Because the
// target end is computed from the created end, replaying the same request
// reaches the same state. The second return reports whether the end actually
// moved; a replay that lands on the current end is a no-op.
func (s *Store) Extend(confirmationID string, extra int) (*Booking, bool, error) {
	b, err := s.Lookup(confirmationID)
	if err != nil {
		return nil, false, err
	}
	if b.Cancelled {
		return nil, false, fmt.Errorf("booking %q: %w", confirmationID, ErrCancelled)
	}

	end := b.OriginalEnd + extra
	if extra <= 0 || !validRange(b.Start, end) {
		return nil, false, fmt.Errorf("extended range [%d, %d): %w", b.Start, end, ErrInvalidTime)
	}
	if end == b.End {
		// Already extended to this end; nothing to do.
		return b, false, nil
	}

	// A prior change may have shifted the current end to either side of the
	// target, so check the window between the two.
	lo, hi := b.End, end
	if hi < lo {
		lo, hi = hi, lo
	}
	if s.conflicts(b.Facility, lo, hi, b) {
		return nil, false, fmt.Errorf("facility %q is busy in [%d, %d): %w", b.Facility, lo, hi, ErrConflict)
	}

	b.End = end
	return b, true, nil
}

// Cancel marks the booking cancelled and frees its range. Cancelling twice
// fails with ErrCancelled; the operation is not idempotent.
func (s *Store) Cancel(confirmationID string) (*Booking, error) {
	b, err := s.Lookup(confirmationID)
	if err != nil {
		return nil, err
	}
	if b.Cancelled {
		return nil, fmt.Errorf("booking %q: %w", confirmationID, ErrCancelled)
	}
	b.Cancelled = true
	return b, nil
}
