package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	historyService "github.com/jwalitptl/barber-api/internal/service/history"
	"github.com/jwalitptl/barber-api/internal/service/tenant"
	"github.com/jwalitptl/barber-api/pkg/logger"
)

type memRepo struct {
	unitID        uuid.UUID
	cancellations []*model.CancellationRecord
	filters       *model.HistoryFilters
}

func (m *memRepo) ListCancellations(_ context.Context, f *model.HistoryFilters) ([]*model.CancellationRecord, error) {
	m.filters = f
	return m.cancellations, nil
}

func (m *memRepo) ListDeletions(_ context.Context, f *model.HistoryFilters) ([]*model.DeletionRecord, error) {
	m.filters = f
	return nil, nil
}

func (m *memRepo) DeleteCancellation(_ context.Context, unitID, id uuid.UUID) error {
	for i, r := range m.cancellations {
		if r.ID == id && unitID == m.unitID {
			m.cancellations = append(m.cancellations[:i], m.cancellations[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memRepo) DeleteDeletion(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrNotFound
}

func newRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	g.Use(func(c *gin.Context) {
		handler.SetTenant(c, nil, &tenant.View{State: tenant.Resolved, CurrentUnitID: repo.unitID})
	})
	NewHandler(historyService.NewService(repo, logger.Nop())).RegisterRoutes(g)
	return r
}

func TestListCancellationsWithSummary(t *testing.T) {
	repo := &memRepo{unitID: uuid.New(), cancellations: []*model.CancellationRecord{
		{ID: uuid.New(), TotalPrice: decimal.RequireFromString("40"), IsLateCancellation: true},
		{ID: uuid.New(), TotalPrice: decimal.RequireFromString("25.5")},
	}}

	w := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/cancellations?late_only=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.filters.LateOnly)
	assert.Equal(t, repo.unitID, repo.filters.UnitID)
	assert.Contains(t, w.Body.String(), `"late_count":1`)
	assert.Contains(t, w.Body.String(), `"lost_value":"40"`)
	assert.Contains(t, w.Body.String(), `"total_value":"65.5"`)
}

func TestListDeletionsEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&memRepo{unitID: uuid.New()}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/deletions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":[]}`, w.Body.String())
}

func TestDeleteCancellation(t *testing.T) {
	id := uuid.New()
	repo := &memRepo{unitID: uuid.New(), cancellations: []*model.CancellationRecord{{ID: id}}}
	r := newRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/history/cancellations/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.cancellations)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/history/cancellations/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
