package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/handler"
	"github.com/jwalitptl/barber-api/internal/middleware"
	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/internal/repository"
	tenantService "github.com/jwalitptl/barber-api/internal/service/tenant"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

type memCompanies struct {
	repository.CompanyRepository
	mu      sync.Mutex
	byOwner map[uuid.UUID]*model.Company
}

func (m *memCompanies) GetByOwner(_ context.Context, ownerID uuid.UUID) (*model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byOwner[ownerID]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memCompanies) Create(_ context.Context, c *model.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byOwner[c.OwnerID] = c
	return nil
}

type memUnits struct {
	repository.UnitRepository
	mu    sync.Mutex
	units []*model.Unit
}

func (m *memUnits) Create(_ context.Context, u *model.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = append(m.units, u)
	return nil
}

func (m *memUnits) Get(_ context.Context, id uuid.UUID) (*model.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.units {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUnits) ListByCompany(_ context.Context, companyID uuid.UUID) ([]*model.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Unit
	for _, u := range m.units {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

type viewBody struct {
	Data struct {
		State         string        `json:"state"`
		Company       model.Company `json:"company"`
		Units         []model.Unit  `json:"units"`
		CurrentUnitID uuid.UUID     `json:"current_unit_id"`
	} `json:"data"`
}

func newRouter(t *testing.T, caller *model.Principal) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := tenantService.NewSessionStore(
		&memCompanies{byOwner: map[uuid.UUID]*model.Company{}}, &memUnits{},
		config.TenantConfig{DefaultCompanyName: "Minha Barbearia", DefaultUnitName: "Unidade Principal", TrialMonthlyPrice: "0"},
		time.Hour, metrics.New(prometheus.NewRegistry(), "test"), logger.Nop())
	require.NoError(t, err)

	r := gin.New()
	g := r.Group("/api/v1")
	g.Use(func(c *gin.Context) { handler.SetPrincipal(c, caller) }, middleware.Tenant(store))
	NewHandler().RegisterRoutes(g)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestTenantProvisionedOnFirstRequest(t *testing.T) {
	r := newRouter(t, &model.Principal{UserID: uuid.New(), FullName: "Ana Souza"})

	w := do(r, http.MethodGet, "/api/v1/tenant", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body viewBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "resolved", body.Data.State)
	assert.Equal(t, "Ana Souza", body.Data.Company.Name)
	require.Len(t, body.Data.Units, 1)
	assert.Equal(t, body.Data.Units[0].ID, body.Data.CurrentUnitID)
}

func TestCreateAndSelectUnit(t *testing.T) {
	r := newRouter(t, &model.Principal{UserID: uuid.New(), BusinessName: "Navalha"})

	w := do(r, http.MethodPost, "/api/v1/tenant/units", `{"name":"Filial Centro"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Unit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodPut, "/api/v1/tenant/unit", `{"unit_id":"`+created.Data.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/tenant", "")
	var body viewBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, created.Data.ID, body.Data.CurrentUnitID)
	assert.Len(t, body.Data.Units, 2)

	w = do(r, http.MethodPut, "/api/v1/tenant/unit", `{"unit_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/v1/tenant/units", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
