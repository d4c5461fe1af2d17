package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/barber-api/internal/model"
	companyService "github.com/jwalitptl/barber-api/internal/service/company"
	apperrors "github.com/jwalitptl/barber-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, f *model.CompanyFilters) (*companyService.CompanyList, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(*companyService.CompanyList), args.Error(1)
}

func (m *mockService) UpdatePlan(ctx context.Context, id uuid.UUID, req *model.UpdatePlanRequest) (*model.Company, error) {
	args := m.Called(ctx, id, req)
	if c, ok := args.Get(0).(*model.Company); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc Servicer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/admin"))
	return r
}

func TestListCompaniesBindsFilters(t *testing.T) {
	svc := &mockService{}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f *model.CompanyFilters) bool {
		return f.Page == 2 && f.PageSize == 10 && f.PlanStatus == model.PlanStatusOverdue && f.Search == "navalha"
	})).Return(&companyService.CompanyList{Companies: []*model.Company{}, Total: 0, Page: 2, PageSize: 10}, nil)

	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/companies?page=2&page_size=10&plan_status=overdue&search=navalha", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdatePlan(t *testing.T) {
	id := uuid.New()
	svc := &mockService{}
	svc.On("UpdatePlan", mock.Anything, id, mock.Anything).Return(nil, apperrors.NotFound("company", nil)).Once()
	r := newRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/companies/"+id.String()+"/plan", strings.NewReader(`{"plan_status":"active"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/admin/companies/"+id.String()+"/plan", strings.NewReader(`{"plan_status":"gold"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "UpdatePlan", 1)
}
