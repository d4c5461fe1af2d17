package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

// SignupSource lists company creation times.
type SignupSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type Service struct {
	visits      repository.VisitRepository
	signups     SignupSource
	location    *time.Location
	defaultDays int
	maxDays     int
	metrics     *metrics.Metrics
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(visits repository.VisitRepository, signups SignupSource, cfg config.ReportsConfig, m *metrics.Metrics, logger *logger.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{
		visits:      visits,
		signups:     signups,
		location:    loc,
		defaultDays: cfg.DefaultDays,
		maxDays:     cfg.MaxDays,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// TrackVisit records a page view. Failures are logged and never returned.
func (s *Service) TrackVisit(ctx context.Context, req *model.TrackVisitRequest, userAgent string) {
	visit := &model.PageVisit{
		ID:        uuid.New(),
		Path:      strings.TrimSpace(req.Path),
		Referrer:  strings.TrimSpace(req.Referrer),
		UserAgent: userAgent,
		VisitedAt: s.now(),
	}

	result := "stored"
	if err := s.visits.Create(ctx, visit); err != nil {
		result = "dropped"
		s.logger.Warn("Visit not recorded", "path", visit.Path, "error", err.Error())
	}
	if s.metrics != nil {
		s.metrics.VisitsTracked.WithLabelValues(result).Inc()
	}
}

// Report builds the daily visit/signup series for the last days days.
// Zero days means the configured default.
func (s *Service) Report(ctx context.Context, days int) (*model.SignupReport, error) {
	if days == 0 {
		days = s.defaultDays
	}
	if days < 0 || days > s.maxDays {
		return nil, apperrors.BadRequest(fmt.Sprintf("days must be between 1 and %d", s.maxDays), nil)
	}

	now := s.now().In(s.location)
	since := WindowStart(days, now)

	visits, err := s.visits.ListVisitedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	signups, err := s.signups.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}

	buckets := Aggregate(days, now, visits, signups)
	report := &model.SignupReport{Days: buckets}
	for _, b := range buckets {
		report.TotalVisits += b.Visits
		report.TotalSignups += b.Signups
	}
	report.ConversionRate = ConversionRate(report.TotalVisits, report.TotalSignups)
	return report, nil
}
