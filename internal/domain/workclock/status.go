package workclock

import "time"

// Status classifies how long an order has been waiting in business time.
type Status string

const (
	StatusOnTime   Status = "on-time"
	StatusModerate Status = "moderate"
	StatusDelayed  Status = "delayed"
)

// Band lower bounds, in business minutes.
const (
	ModerateAfterMinutes = 120
	DelayedAfterMinutes  = 360
)

// Classify maps elapsed business minutes to a Status.
func Classify(businessMinutes int64) Status {
	switch {
	case businessMinutes < ModerateAfterMinutes:
		return StatusOnTime
	case businessMinutes < DelayedAfterMinutes:
		return StatusModerate
	default:
		return StatusDelayed
	}
}

// Label is the dashboard caption for the status.
func (s Status) Label() string {
	switch s {
	case StatusOnTime:
		return "En tiempo"
	case StatusModerate:
		return "Moderado"
	case StatusDelayed:
		return "Retrasado"
	default:
		return ""
	}
}

// ParseStatus accepts a status code or its dashboard label.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusOnTime, StatusModerate, StatusDelayed} {
		if s == string(st) || s == st.Label() {
			return st, true
		}
	}
	return "", false
}

// Assessment is the derived timing view of one order.
type Assessment struct {
	Elapsed         string `json:"elapsed"`
	BusinessMinutes int64  `json:"business_minutes"`
	Status          Status `json:"status"`
	StatusLabel     string `json:"status_label"`
}

// Assess parses a local order timestamp and derives its timing view at now.
func Assess(dateOrder string, now time.Time) (Assessment, error) {
	order, err := ParseLocalTimestamp(dateOrder)
	if err != nil {
		return Assessment{}, err
	}
	minutes := BusinessMinutesElapsed(order, now)
	status := Classify(minutes)
	return Assessment{
		Elapsed:         CalendarElapsed(order, now),
		BusinessMinutes: minutes,
		Status:          status,
		StatusLabel:     status.Label(),
	}, nil
}
