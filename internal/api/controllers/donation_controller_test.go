package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colabora/internal/models/db_models"
	"colabora/internal/models/response_models"
	"colabora/pkg/middleware"
	"colabora/pkg/utils"
)

type fakeDonationService struct {
	page, pageSize int
	donor          *db_models.Donor
}

func (f *fakeDonationService) ListDonors(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donor], error) {
	f.page, f.pageSize = page, pageSize
	if pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	return &response_models.Page[db_models.Donor]{Items: []db_models.Donor{}, Page: page, PageSize: pageSize}, nil
}

func (f *fakeDonationService) GetDonor(ctx context.Context, id uuid.UUID) (*response_models.DonorDetailResponse, error) {
	if f.donor == nil || f.donor.ID != id {
		return nil, utils.ErrDonorNotFound
	}
	return &response_models.DonorDetailResponse{Donor: *f.donor, Donations: []db_models.Donation{}}, nil
}

func (f *fakeDonationService) ListDonations(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donation], error) {
	f.page, f.pageSize = page, pageSize
	return &response_models.Page[db_models.Donation]{Items: []db_models.Donation{}, Page: page, PageSize: pageSize}, nil
}

func newAdminRouter(svc *fakeDonationService, tokens *utils.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewDonationController(svc)
	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(tokens), middleware.RoleMiddleware(db_models.RoleAdmin))
	admin.GET("/donors", ctrl.ListDonors)
	admin.GET("/donors/:id/donations", ctrl.GetDonorDonations)
	admin.GET("/donations", ctrl.ListDonations)
	return r
}

func adminGet(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", 0)
	r := newAdminRouter(&fakeDonationService{}, tokens)

	assert.Equal(t, http.StatusUnauthorized, adminGet(t, r, "/api/admin/donors", "").Code)
	assert.Equal(t, http.StatusUnauthorized, adminGet(t, r, "/api/admin/donors", "garbage").Code)

	viewer, err := tokens.CreateToken(uuid.New(), "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, adminGet(t, r, "/api/admin/donors", viewer).Code)

	admin, err := tokens.CreateToken(uuid.New(), db_models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, adminGet(t, r, "/api/admin/donors", admin).Code)
}

func TestListDonorsPagination(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", 0)
	svc := &fakeDonationService{}
	r := newAdminRouter(svc, tokens)
	admin, err := tokens.CreateToken(uuid.New(), db_models.RoleAdmin)
	require.NoError(t, err)

	w := adminGet(t, r, "/api/admin/donors", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.page)
	assert.Equal(t, 20, svc.pageSize)

	w = adminGet(t, r, "/api/admin/donations?page=3&page_size=50", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.page)
	assert.Equal(t, 50, svc.pageSize)

	assert.Equal(t, http.StatusBadRequest, adminGet(t, r, "/api/admin/donors?page=abc", admin).Code)
	assert.Equal(t, http.StatusBadRequest, adminGet(t, r, "/api/admin/donors?page_size=500", admin).Code)
}

func TestGetDonorDonations(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", 0)
	donor := &db_models.Donor{BaseModel: db_models.BaseModel{ID: uuid.New()}, Email: "a@x.com"}
	r := newAdminRouter(&fakeDonationService{donor: donor}, tokens)
	admin, err := tokens.CreateToken(uuid.New(), db_models.RoleAdmin)
	require.NoError(t, err)

	w := adminGet(t, r, "/api/admin/donors/"+donor.ID.String()+"/donations", admin)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := decodeResponse(t, w).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a@x.com", data["donor"].(map[string]interface{})["email"])

	assert.Equal(t, http.StatusBadRequest, adminGet(t, r, "/api/admin/donors/not-a-uuid/donations", admin).Code)
	assert.Equal(t, http.StatusNotFound, adminGet(t, r, "/api/admin/donors/"+uuid.NewString()+"/donations", admin).Code)
}
