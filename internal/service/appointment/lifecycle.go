package appointment

import (
	"math"
	"time"

	"github.com/jwalitptl/barber-api/internal/model"
)

// NextStatus returns the status an appointment advances to, or false when
// current is terminal or unknown.
func NextStatus(current model.AppointmentStatus) (model.AppointmentStatus, bool) {
	switch current {
	case model.AppointmentStatusPending:
		return model.AppointmentStatusConfirmed, true
	case model.AppointmentStatusConfirmed:
		return model.AppointmentStatusCompleted, true
	}
	return "", false
}

// Cancellable reports whether an appointment in status s may be cancelled.
func Cancellable(s model.AppointmentStatus) bool {
	return s == model.AppointmentStatusPending || s == model.AppointmentStatusConfirmed
}

// Classification holds the fields derived when an appointment is cancelled at a given time.
type Classification struct {
	MinutesBefore int
	Late          bool
	NoShow        bool
}

// Kind labels the classification for metrics.
func (c Classification) Kind() string {
	switch {
	case c.NoShow:
		return "no_show"
	case c.Late:
		return "late"
	}
	return "on_time"
}

// Classify derives the cancellation fields for an appointment starting at start
// and cancelled at at. MinutesBefore is floored and negative after the start.
func Classify(start, at time.Time, threshold time.Duration) Classification {
	d := start.Sub(at)
	return Classification{
		MinutesBefore: int(math.Floor(d.Minutes())),
		Late:          d >= 0 && d < threshold,
		NoShow:        d < 0,
	}
}
