package workclock

import (
	"fmt"
	"time"
)

// Working window, local time, Monday through Friday.
const (
	WorkdayStartHour = 8
	WorkdayEndHour   = 15
)

// CalendarElapsed renders the wall-clock time between order and now as
// "<n> min", "<n> hrs" or "<n> días". Every unit is floored.
func CalendarElapsed(order, now time.Time) string {
	minutes := floorDiv(now.Sub(order), time.Minute)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%d hrs", minutes/60)
	default:
		return fmt.Sprintf("%d días", minutes/(24*60))
	}
}

// BusinessMinutesElapsed counts working minutes between order and now.
//
// The start is first moved forward into the working window: weekends jump to
// Monday 08:00, weekday times before 08:00 move to 08:00, and times at or after
// 15:00 move to 08:00 the following day. From there one sample is taken every
// minute while it is before now, and a sample counts when it falls on a weekday
// in [08:00, 15:00). The count is computed per day instead of per sample.
func BusinessMinutesElapsed(order, now time.Time) int64 {
	order = order.In(Location)
	now = now.In(Location)
	if order.After(now) {
		return 0
	}

	start := clampToWindow(order)
	if !start.Before(now) {
		return 0
	}

	var total int64
	y, m, d := start.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, Location); day.Before(now); day = day.AddDate(0, 0, 1) {
		if !isWorkday(day.Weekday()) {
			continue
		}
		lo := later(day.Add(WorkdayStartHour*time.Hour), start)
		hi := earlier(day.Add(WorkdayEndHour*time.Hour), now)
		if !lo.Before(hi) {
			continue
		}
		total += samplesIn(start, lo, hi)
	}
	return total
}

func clampToWindow(t time.Time) time.Time {
	y, m, d := t.Date()
	switch t.Weekday() {
	case time.Saturday:
		return time.Date(y, m, d+2, WorkdayStartHour, 0, 0, 0, Location)
	case time.Sunday:
		return time.Date(y, m, d+1, WorkdayStartHour, 0, 0, 0, Location)
	}
	switch {
	case t.Hour() < WorkdayStartHour:
		return time.Date(y, m, d, WorkdayStartHour, 0, 0, 0, Location)
	case t.Hour() >= WorkdayEndHour:
		return time.Date(y, m, d+1, WorkdayStartHour, 0, 0, 0, Location)
	}
	return t
}

// samplesIn counts k >= 0 with start+k minutes in [lo, hi). Requires start <= lo.
func samplesIn(start, lo, hi time.Time) int64 {
	return ceilDiv(hi.Sub(start), time.Minute) - ceilDiv(lo.Sub(start), time.Minute)
}

func isWorkday(wd time.Weekday) bool {
	return wd >= time.Monday && wd <= time.Friday
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func floorDiv(d, unit time.Duration) int64 {
	q := d / unit
	if d%unit != 0 && d < 0 {
		q--
	}
	return int64(q)
}

func ceilDiv(d, unit time.Duration) int64 {
	q := d / unit
	if d%unit != 0 && d > 0 {
		q++
	}
	return int64(q)
}
