package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/barber-api/internal/model"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   model.AppointmentStatus
		want   model.AppointmentStatus
		wantOK bool
	}{
		{model.AppointmentStatusPending, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusCompleted, "", false},
		{model.AppointmentStatusCancelled, "", false},
		{"rescheduled", "", false},
	}

	for _, tt := range tests {
		got, ok := NextStatus(tt.from)
		assert.Equal(t, tt.want, got, string(tt.from))
		assert.Equal(t, tt.wantOK, ok, string(tt.from))
	}
}

func TestClassify(t *testing.T) {
	start := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	threshold := 2 * time.Hour

	tests := []struct {
		name string
		at   time.Time
		want Classification
	}{
		{"a day ahead", start.Add(-24 * time.Hour), Classification{MinutesBefore: 1440}},
		{"exactly at threshold is on time", start.Add(-2 * time.Hour), Classification{MinutesBefore: 120}},
		{"inside threshold", start.Add(-90*time.Minute - 30*time.Second), Classification{MinutesBefore: 90, Late: true}},
		{"at start", start, Classification{MinutesBefore: 0, Late: true}},
		{"half a minute late", start.Add(30 * time.Second), Classification{MinutesBefore: -1, NoShow: true}},
		{"an hour late", start.Add(time.Hour), Classification{MinutesBefore: -60, NoShow: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(start, tt.at, threshold))
		})
	}
}

func TestClassificationKind(t *testing.T) {
	assert.Equal(t, "on_time", Classification{}.Kind())
	assert.Equal(t, "late", Classification{Late: true}.Kind())
	assert.Equal(t, "no_show", Classification{NoShow: true}.Kind())
}
