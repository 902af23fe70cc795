package booking

import (
	"fmt"
	"sort"
)

// FreeIntervals returns the free time of a facility over the requested days,
// merged into maximal runs and sorted by start. Days are 0 (Monday) to
// 6 (Sunday); duplicates are ignored. Free time spanning midnight between
// two consecutive requested days is reported as one interval.
func (s *Store) FreeIntervals(facility string, days []uint8) ([]Interval, error) {
	if !s.HasFacility(facility) {
		return nil, fmt.Errorf("facility %q: %w", facility, ErrNotFound)
	}

	busy := s.busyIntervals(facility)

	var free []Interval
	for _, w := range dayWindows(days) {
		free = append(free, subtract(w, busy)...)
	}
	return mergeAdjacent(free), nil
}

// busyIntervals returns the active bookings of a facility as sorted,
// non-overlapping intervals.
func (s *Store) busyIntervals(facility string) []Interval {
	var busy []Interval
	for _, b := range s.bookings {
		if b.Facility == facility && b.Active() {
			busy = append(busy, Interval{Start: b.Start, End: b.End})
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })
	return busy
}

// dayWindows converts a day list into sorted windows of whole days, merging
// consecutive days into one window.
func dayWindows(days []uint8) []Interval {
	var requested [7]bool
	for _, d := range days {
		if d < 7 {
			requested[d] = true
		}
	}

	var windows []Interval
	for d := 0; d < 7; d++ {
		if !requested[d] {
			continue
		}
		start := d * MinutesPerDay
		end := start + MinutesPerDay
		if n := len(windows); n > 0 && windows[n-1].End == start {
			windows[n-1].End = end
		} else {
			windows = append(windows, Interval{Start: start, End: end})
		}
	}
	return windows
}

// subtract removes the busy intervals from window and returns the remaining
// gaps. busy must be sorted by start.
func subtract(window Interval, busy []Interval) []Interval {
	var gaps []Interval
	cursor := window.Start
	for _, b := range busy {
		if b.End <= window.Start || b.Start >= window.End {
			continue
		}
		if b.Start > cursor {
			gaps = append(gaps, Interval{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < window.End {
		gaps = append(gaps, Interval{Start: cursor, End: window.End})
	}
	return gaps
}

// mergeAdjacent joins touching intervals in a sorted list.
func mergeAdjacent(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	merged := []Interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}
