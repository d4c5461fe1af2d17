package tenant

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

// SessionStore keeps one Resolver per principal in process memory.
// Entries expire after the configured TTL of inactivity.
type SessionStore struct {
	provisioner *provisioner

	mu        sync.Mutex
	resolvers *cache.Cache
}

func NewSessionStore(
	companies repository.CompanyRepository,
	units repository.UnitRepository,
	cfg config.TenantConfig,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *logger.Logger,
) (*SessionStore, error) {
	price, err := cfg.TrialPrice()
	if err != nil {
		return nil, fmt.Errorf("invalid trial price: %w", err)
	}

	return &SessionStore{
		provisioner: &provisioner{
			companyRepo: companies,
			unitRepo:    units,
			companyName: cfg.DefaultCompanyName,
			unitName:    cfg.DefaultUnitName,
			trialPrice:  price,
			metrics:     m,
			logger:      logger,
		},
		resolvers: cache.New(ttl, ttl),
	}, nil
}

// For returns the principal's resolver, creating it on first use.
func (s *SessionStore) For(p *model.Principal) *Resolver {
	if p == nil {
		return newResolver(s.provisioner, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.UserID.String()
	if v, ok := s.resolvers.Get(key); ok {
		r := v.(*Resolver)
		s.resolvers.SetDefault(key, r)
		return r
	}

	r := newResolver(s.provisioner, p)
	s.resolvers.SetDefault(key, r)
	return r
}

// Drop forgets the principal's resolver.
func (s *SessionStore) Drop(p *model.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers.Delete(p.UserID.String())
}
