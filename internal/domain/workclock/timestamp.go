package workclock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location is the civil offset orders are recorded and displayed in.
// It is a fixed UTC-7 offset; daylight saving is not observed.
var Location = time.FixedZone("UTC-7", -7*60*60)

// RemoteLayout is the layout the ERP uses for datetime fields (always UTC).
const RemoteLayout = "2006-01-02 15:04:05"

// InvalidDate is rendered in place of a remote timestamp that cannot be parsed.
const InvalidDate = "Invalid date"

// ErrInvalidTimestamp matches any *InvalidTimestampError.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// InvalidTimestampError reports text that could not be decomposed into a local timestamp.
type InvalidTimestampError struct {
	Input  string
	Reason string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Input, e.Reason)
}

func (e *InvalidTimestampError) Is(target error) bool {
	return target == ErrInvalidTimestamp
}

var structuredLayouts = []string{
	"2006-01-02T15:04:05",
	RemoteLayout,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseLocalTimestamp parses either a structured date ("2024-10-15T13:46:10",
// RFC 3339) or the localized display form "15/10/2024, 01:46:10 p.m.".
// Wall-clock fields are always read as local time in Location, even when a
// structured value carries its own offset ("Z", "+02:00"); that offset is
// dropped.
func ParseLocalTimestamp(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(normalizeSpaces(text))
	if trimmed == "" {
		return time.Time{}, &InvalidTimestampError{Input: text, Reason: "empty"}
	}
	if strings.Contains(trimmed, ",") {
		return parseDisplay(text, trimmed)
	}

	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return wallClock(t), nil
	}
	for _, layout := range structuredLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidTimestampError{Input: text, Reason: "unrecognized format"}
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), Location)
}

func parseDisplay(input, text string) (time.Time, error) {
	datePart, timePart, _ := strings.Cut(text, ",")
	datePart = strings.TrimSpace(datePart)
	timePart = strings.TrimSpace(timePart)

	dateFields := strings.Split(datePart, "/")
	if len(dateFields) != 3 {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "date must be DD/MM/YYYY"}
	}
	day, err1 := strconv.Atoi(dateFields[0])
	month, err2 := strconv.Atoi(dateFields[1])
	year, err3 := strconv.Atoi(dateFields[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "non-numeric date field"}
	}

	clock, meridiem, found := strings.Cut(timePart, " ")
	if !found {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "missing a.m./p.m. marker"}
	}
	pm, ok := parseMeridiem(meridiem)
	if !ok {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: fmt.Sprintf("unknown meridiem %q", meridiem)}
	}

	clockFields := strings.Split(clock, ":")
	if len(clockFields) != 3 {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "time must be HH:MM:SS"}
	}
	hour, err1 := strconv.Atoi(clockFields[0])
	minute, err2 := strconv.Atoi(clockFields[1])
	second, err3 := strconv.Atoi(clockFields[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "non-numeric time field"}
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "time out of range"}
	}

	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "date out of range"}
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, Location)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, &InvalidTimestampError{Input: input, Reason: "not a calendar date"}
	}
	return t, nil
}

// parseMeridiem accepts "AM", "pm", "a.m.", "p. m." and similar renderings.
func parseMeridiem(s string) (pm bool, ok bool) {
	normalized := strings.ToLower(strings.NewReplacer(".", "", " ", "").Replace(s))
	switch normalized {
	case "am":
		return false, true
	case "pm":
		return true, true
	default:
		return false, false
	}
}

// Locale renderings put non-breaking or narrow spaces before the meridiem.
func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

// FormatLocal renders t in Location the way the dashboard displays order
// dates, e.g. "15/10/2024, 01:46:10 p.m.".
func FormatLocal(t time.Time) string {
	local := t.In(Location)
	hour := local.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "a.m."
	if local.Hour() >= 12 {
		meridiem = "p.m."
	}
	return fmt.Sprintf("%02d/%02d/%04d, %02d:%02d:%02d %s",
		local.Day(), int(local.Month()), local.Year(),
		hour, local.Minute(), local.Second(), meridiem)
}

// ParseRemote parses an ERP datetime field, which is stored in UTC.
func ParseRemote(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if t, err := time.Parse(RemoteLayout, trimmed); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &InvalidTimestampError{Input: text, Reason: "unrecognized remote format"}
}

// DisplayRemote converts an ERP datetime into the local display form,
// falling back to InvalidDate.
func DisplayRemote(text string) string {
	t, err := ParseRemote(text)
	if err != nil {
		return InvalidDate
	}
	return FormatLocal(t)
}
