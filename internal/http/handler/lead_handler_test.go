package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/http/handler"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/service"
	"github.com/kamtrack/lead-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createLeadHandler(db *gorm.DB) *handler.LeadHandler {
	logger := zap.NewNop()
	leadRepo := repository.NewLeadRepository(db)
	userRepo := repository.NewUserRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	leadService := service.NewLeadService(db, leadRepo, userRepo, logger)
	transferService := service.NewTransferService(db, leadRepo, userRepo, transferRepo, logger)

	return handler.NewLeadHandler(leadService, transferService, logger)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestLeadHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	ctx := testutil.ContextFor(kam)

	body, err := json.Marshal(domain.CreateLeadRequest{Name: "Acme Industries", City: "Oslo"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body)).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got domain.LeadDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Acme Industries", got.Name)
	assert.Equal(t, kam.ID, got.AssignedKamID)
	assert.NotNil(t, got.NextCallDate)
}

func TestLeadHandler_Create_ValidationError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	ctx := testutil.ContextFor(kam)

	// Missing required name
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader([]byte(`{}`))).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown frequency
	body := []byte(`{"name":"Acme","callFrequency":"HOURLY"}`)
	req = httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body)).WithContext(ctx)
	rr = httptest.NewRecorder()
	h.Create(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeadHandler_Get(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	req := httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID.String(), nil).
		WithContext(testutil.ContextFor(kam))
	req = withURLParam(req, "id", lead.ID.String())
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.LeadDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, lead.ID, got.ID)
	assert.Equal(t, kam.Name, got.AssignedKamName)
}

func TestLeadHandler_Get_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")

	req := httptest.NewRequest(http.MethodGet, "/leads/"+uuid.NewString(), nil).
		WithContext(testutil.ContextFor(kam))
	req = withURLParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeadHandler_Get_BadID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")

	req := httptest.NewRequest(http.MethodGet, "/leads/not-a-uuid", nil).
		WithContext(testutil.ContextFor(kam))
	req = withURLParam(req, "id", "not-a-uuid")
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	body := []byte(`{"status":"CONTACTED","notes":"left voicemail"}`)
	req := httptest.NewRequest(http.MethodPut, "/leads/"+lead.ID.String()+"/status", bytes.NewReader(body)).
		WithContext(testutil.ContextFor(kam))
	req = withURLParam(req, "id", lead.ID.String())
	rr := httptest.NewRecorder()
	h.UpdateStatus(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.LeadDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, domain.LeadStatusContacted, got.Status)
}

func TestLeadHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	body := []byte(`{"status":"ARCHIVED"}`)
	req := httptest.NewRequest(http.MethodPut, "/leads/"+lead.ID.String()+"/status", bytes.NewReader(body)).
		WithContext(testutil.ContextFor(kam))
	req = withURLParam(req, "id", lead.ID.String())
	rr := httptest.NewRecorder()
	h.UpdateStatus(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeadHandler_List_Paginated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	for i := 0; i < 5; i++ {
		testutil.CreateTestLead(t, db, kam.ID)
	}

	req := httptest.NewRequest(http.MethodGet, "/leads?page=1&pageSize=2", nil).
		WithContext(testutil.ContextFor(kam))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.PaginatedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.Total)
	assert.Equal(t, 2, got.PageSize)
	assert.Equal(t, 3, got.TotalPages)
}

func TestLeadHandler_Reassign_Forbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createLeadHandler(db)

	owner := testutil.CreateTestKam(t, db, "UTC")
	outsider := testutil.CreateTestKam(t, db, "UTC")
	target := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, owner.ID)

	body, err := json.Marshal(domain.ReassignLeadRequest{NewKamID: target.ID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/leads/"+lead.ID.String()+"/reassign", bytes.NewReader(body)).
		WithContext(testutil.ContextFor(outsider))
	req = withURLParam(req, "id", lead.ID.String())
	rr := httptest.NewRecorder()
	h.Reassign(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
