package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/model"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

type stubVisits struct {
	createErr error
	stored    []*model.PageVisit
	visitedAt []time.Time
	since     time.Time
}

func (s *stubVisits) Create(_ context.Context, v *model.PageVisit) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.stored = append(s.stored, v)
	return nil
}

func (s *stubVisits) ListVisitedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	s.since = since
	return s.visitedAt, nil
}

type stubSignups []time.Time

func (s stubSignups) ListCreatedSince(context.Context, time.Time) ([]time.Time, error) {
	return s, nil
}

var reportsConfig = config.ReportsConfig{Timezone: "UTC", DefaultDays: 7, MaxDays: 90}

func TestTrackVisitSwallowsErrors(t *testing.T) {
	visits := &stubVisits{createErr: errors.New("db down")}
	m := metrics.New(prometheus.NewRegistry(), "test")
	svc, err := NewService(visits, stubSignups{}, reportsConfig, m, logger.Nop())
	require.NoError(t, err)

	svc.TrackVisit(context.Background(), &model.TrackVisitRequest{Path: "/"}, "curl")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VisitsTracked.WithLabelValues("dropped")))

	visits.createErr = nil
	svc.TrackVisit(context.Background(), &model.TrackVisitRequest{Path: " /pricing "}, "curl")
	require.Len(t, visits.stored, 1)
	assert.Equal(t, "/pricing", visits.stored[0].Path)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VisitsTracked.WithLabelValues("stored")))
}

func TestReport(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	visits := &stubVisits{visitedAt: []time.Time{now, now.Add(-time.Hour), now.Add(-24 * time.Hour)}}
	svc, err := NewService(visits, stubSignups{now}, reportsConfig, nil, logger.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return now }

	report, err := svc.Report(context.Background(), 0)
	require.NoError(t, err)

	assert.Len(t, report.Days, 7)
	assert.Equal(t, 3, report.TotalVisits)
	assert.Equal(t, 1, report.TotalSignups)
	assert.Equal(t, "33.33%", report.ConversionRate)
	assert.Equal(t, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), visits.since)
}

func TestReportRejectsOutOfRangeDays(t *testing.T) {
	svc, err := NewService(&stubVisits{}, stubSignups{}, reportsConfig, nil, logger.Nop())
	require.NoError(t, err)

	_, err = svc.Report(context.Background(), 91)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	_, err = svc.Report(context.Background(), -1)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestNewServiceRejectsBadTimezone(t *testing.T) {
	_, err := NewService(&stubVisits{}, stubSignups{}, config.ReportsConfig{Timezone: "Mars/Olympus"}, nil, logger.Nop())
	assert.Error(t, err)
}
