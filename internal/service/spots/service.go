package spots

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/messaging"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

const companyCountKey = "company_count"

// CompanyCounter is the slice of the company store this service reads.
type CompanyCounter interface {
	Count(ctx context.Context) (int, error)
}

type RemainingSpots struct {
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
	HasSpots  bool   `json:"hasSpots"`
}

type CompanyStats struct {
	TotalCompanies int `json:"totalCompanies"`
}

type Service struct {
	companies CompanyCounter
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(companies CompanyCounter, ttl time.Duration, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		companies: companies,
		cache:     cache.New(ttl, 2*ttl),
		metrics:   m,
		logger:    logger,
	}
}

func (s *Service) RemainingSpots(ctx context.Context) (*RemainingSpots, error) {
	count, err := s.companyCount(ctx)
	if err != nil {
		return nil, err
	}

	actual := TotalSpots - count
	shown, message := Display(actual)
	return &RemainingSpots{
		Remaining: shown,
		Message:   message,
		HasSpots:  actual > 0,
	}, nil
}

func (s *Service) CompanyStats(ctx context.Context) (*CompanyStats, error) {
	count, err := s.companyCount(ctx)
	if err != nil {
		return nil, err
	}
	return &CompanyStats{TotalCompanies: count}, nil
}

// Invalidate drops the cached company count.
func (s *Service) Invalidate() {
	s.cache.Delete(companyCountKey)
}

// Watch recounts companies whenever the feed reports a new one.
func (s *Service) Watch(ctx context.Context, feed messaging.ChangeFeed) (messaging.Unsubscribe, error) {
	return feed.Subscribe(ctx, "companies", messaging.KindInsert, func(ctx context.Context, _ messaging.Change) error {
		s.Invalidate()
		if _, err := s.companyCount(ctx); err != nil {
			return err
		}
		s.logger.Debug("Company count refreshed after insert")
		return nil
	})
}

func (s *Service) companyCount(ctx context.Context) (int, error) {
	if v, ok := s.cache.Get(companyCountKey); ok {
		return v.(int), nil
	}

	count, err := s.companies.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}

	s.cache.SetDefault(companyCountKey, count)
	if s.metrics != nil {
		s.metrics.CompaniesTotal.Set(float64(count))
	}
	return count, nil
}
