package interval

import (
	"sort"
	"time"
)

// Origin labels why a period is considered busy. It is carried for
// diagnostics only; the set operations treat every origin the same way.
type Origin string

const (
	OriginOutsideHours Origin = "outside_hours"
	OriginBreak        Origin = "break"
	OriginAppointment  Origin = "appointment"
)

// Interval is a closed-open time span [Start, End). Two intervals that
// merely touch (a.End == b.Start) do not overlap and leave no gap.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Tagged is an interval annotated with the origin that produced it.
type Tagged struct {
	Interval
	Origin Origin
}

// IsZero reports whether the interval carries no span at all.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Valid reports whether Start <= End.
func (iv Interval) Valid() bool {
	return !iv.Start.After(iv.End)
}

// Contains reports whether other lies fully within iv.
func (iv Interval) Contains(other Interval) bool {
	return !iv.Start.After(other.Start) && !iv.End.Before(other.End)
}

// Overlaps reports whether the two closed-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Subtract removes b from a and returns the 0..2 remaining pieces.
// The four cases: b clips the left edge, b clips the right edge, b splits
// a in two, or b swallows a entirely.
func Subtract(a, b Interval) []Interval {
	if !a.Overlaps(b) {
		return []Interval{a}
	}

	var out []Interval
	if a.Start.Before(b.Start) {
		out = append(out, Interval{Start: a.Start, End: b.Start})
	}
	if b.End.Before(a.End) {
		out = append(out, Interval{Start: b.End, End: a.End})
	}
	return out
}

// SubtractAll removes every interval in subtrahends from each interval in
// periods, in order. Each subtraction may split a period in two, so the
// result can grow before it shrinks.
func SubtractAll(periods []Interval, subtrahends []Interval) []Interval {
	for _, sub := range subtrahends {
		var next []Interval
		for _, p := range periods {
			next = append(next, Subtract(p, sub)...)
		}
		periods = next
	}
	return periods
}

// SortByStart orders intervals ascending by start instant. The sort is
// stable so equal starts keep their original relative order.
func SortByStart(list []Interval) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Start.Before(list[j].Start)
	})
}

// Gaps returns the free intervals of a list already sorted by start. A
// running cursor tracks the furthest busy end seen so far, so nested or
// overlapping busy intervals never open a false gap. Touching intervals
// produce nothing. Callers must make sure the list tiles the full window
// at its edges or boundary gaps are lost.
func Gaps(sorted []Interval) []Interval {
	if len(sorted) == 0 {
		return nil
	}
	var free []Interval
	cursor := sorted[0].End
	for _, iv := range sorted[1:] {
		if cursor.Before(iv.Start) {
			free = append(free, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	return free
}

// Merge collapses overlapping or touching intervals of a sorted list into
// maximal spans. Used for diagnostics output, not by the engine itself.
func Merge(sorted []Interval) []Interval {
	if len(sorted) == 0 {
		return nil
	}
	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
