package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeIntervalsEmptyStore(t *testing.T) {
	s := newTestStore()

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 0, End: MinutesPerDay}}, free)
}

func TestFreeIntervalsUnknownFacility(t *testing.T) {
	s := newTestStore()

	_, err := s.FreeIntervals("Broom Closet", []uint8{0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFreeIntervalsSplitsAroundBookings(t *testing.T) {
	s := newTestStore()

	_, err := s.Book("Meeting Room A", 9*60, 10*60)
	require.NoError(t, err)
	_, err = s.Book("Meeting Room A", 14*60, 16*60)
	require.NoError(t, err)

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: 9 * 60},
		{Start: 10 * 60, End: 14 * 60},
		{Start: 16 * 60, End: MinutesPerDay},
	}, free)
}

func TestFreeIntervalsFullyBookedDay(t *testing.T) {
	s := newTestStore()

	_, err := s.Book("Meeting Room A", 0, MinutesPerDay)
	require.NoError(t, err)

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0})
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestFreeIntervalsMergesConsecutiveDays(t *testing.T) {
	s := newTestStore()

	// Monday evening to Tuesday morning stays free; requesting both days
	// must report one run across midnight.
	_, err := s.Book("Meeting Room A", 9*60, 10*60)
	require.NoError(t, err)
	_, err = s.Book("Meeting Room A", MinutesPerDay+11*60, MinutesPerDay+12*60)
	require.NoError(t, err)

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: 9 * 60},
		{Start: 10 * 60, End: MinutesPerDay + 11*60},
		{Start: MinutesPerDay + 12*60, End: 2 * MinutesPerDay},
	}, free)
}

func TestFreeIntervalsNonConsecutiveDaysStaySplit(t *testing.T) {
	s := newTestStore()

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: MinutesPerDay},
		{Start: 2 * MinutesPerDay, End: 3 * MinutesPerDay},
	}, free)
}

func TestFreeIntervalsClipsBookingSpanningWindow(t *testing.T) {
	s := newTestStore()

	// Booking straddles the Monday/Tuesday boundary; only Tuesday is
	// requested, so the Monday half falls outside the window.
	_, err := s.Book("Meeting Room A", MinutesPerDay-60, MinutesPerDay+60)
	require.NoError(t, err)

	free, err := s.FreeIntervals("Meeting Room A", []uint8{1})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: MinutesPerDay + 60, End: 2 * MinutesPerDay},
	}, free)
}

func TestFreeIntervalsDuplicateAndUnsortedDays(t *testing.T) {
	s := newTestStore()

	free, err := s.FreeIntervals("Meeting Room A", []uint8{3, 0, 3})
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Start: 0, End: MinutesPerDay},
		{Start: 3 * MinutesPerDay, End: 4 * MinutesPerDay},
	}, free)
}

func TestFreeIntervalsNoDays(t *testing.T) {
	s := newTestStore()

	free, err := s.FreeIntervals("Meeting Room A", nil)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestFreeIntervalsIgnoresCancelled(t *testing.T) {
	s := newTestStore()

	b, err := s.Book("Meeting Room A", 9*60, 10*60)
	require.NoError(t, err)
	_, err = s.Cancel(b.ConfirmationID)
	require.NoError(t, err)

	free, err := s.FreeIntervals("Meeting Room A", []uint8{0})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Start: 0, End: MinutesPerDay}}, free)
}
