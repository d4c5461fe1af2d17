package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

type memBarbers struct {
	repository.BarberRepository
	created []*model.Barber
}

func (m *memBarbers) Create(_ context.Context, b *model.Barber) error {
	m.created = append(m.created, b)
	return nil
}

func (m *memBarbers) ListByUnit(_ context.Context, unitID uuid.UUID) ([]*model.Barber, error) {
	var out []*model.Barber
	for _, b := range m.created {
		if b.UnitID == unitID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memServices struct {
	repository.ServiceRepository
	created []*model.Service
}

func (m *memServices) Create(_ context.Context, s *model.Service) error {
	m.created = append(m.created, s)
	return nil
}

func TestCreateAndListBarbers(t *testing.T) {
	barbers := &memBarbers{}
	svc := NewService(barbers, &memServices{})
	unitID := uuid.New()

	b, err := svc.CreateBarber(context.Background(), unitID, &model.CreateBarberRequest{Name: " Rafa ", Email: "RAFA@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Rafa", b.Name)
	assert.Equal(t, "rafa@example.com", b.Email)

	_, err = svc.CreateBarber(context.Background(), uuid.New(), &model.CreateBarberRequest{Name: "Other"})
	require.NoError(t, err)

	list, err := svc.ListBarbers(context.Background(), unitID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateServiceValidatesPrice(t *testing.T) {
	services := &memServices{}
	svc := NewService(&memBarbers{}, services)

	_, err := svc.CreateService(context.Background(), uuid.New(), &model.CreateServiceRequest{
		Name: "Corte", Price: decimal.RequireFromString("-1"), DurationMinutes: 30,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	created, err := svc.CreateService(context.Background(), uuid.New(), &model.CreateServiceRequest{
		Name: "Barba", Price: decimal.RequireFromString("35.499"), DurationMinutes: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "35.50", created.Price.StringFixed(2))
	assert.Len(t, services.created, 1)
}
