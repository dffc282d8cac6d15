package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/database"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

func newTestHandler(repo entity.LeadRepository) *LeadHandler {
	return newTestHandlerWithCap(repo, 0)
}

func newTestHandlerWithCap(repo entity.LeadRepository, maxUploadBytes int64) *LeadHandler {
	log := zerolog.Nop()
	return NewLeadHandler(
		usecase.NewSubmitLeadUseCase(repo, nil, nil, "", log),
		usecase.NewListLeadsUseCase(repo),
		usecase.NewGetLeadUseCase(repo),
		usecase.NewUpdateLeadStatusUseCase(repo, nil, log),
		maxUploadBytes,
		log,
	)
}

func formFields() map[string][]string {
	return map[string][]string{
		"firstName":            {"Ana"},
		"lastName":             {"Souza"},
		"email":                {"ana@example.com"},
		"countryOfCitizenship": {"Brazil"},
		"linkedin":             {"https://linkedin.com/in/ana"},
		"visasInterested":      {"O-1", "EB-2 NIW"},
		"openInput":            {"Currently on H-1B"},
	}
}

func multipartRequest(t *testing.T, fields map[string][]string, resumeName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if resumeName != "" {
		fw, err := mw.CreateFormFile("resume", resumeName)
		require.NoError(t, err)
		fw.Write([]byte("%PDF-1.4 fake"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/leads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	chiCtx := chi.NewRouteContext()
	chiCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func seedLeads(t *testing.T, repo entity.LeadRepository, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Append(context.Background(), &entity.Lead{
			ID:                   fmt.Sprintf("lead-%02d", i),
			FirstName:            "First",
			LastName:             "Last",
			Email:                fmt.Sprintf("u%02d@example.com", i),
			CountryOfCitizenship: "India",
			LinkedIn:             "li",
			VisasInterested:      []string{"EB-1A"},
			ResumeURL:            "url",
			OpenInput:            "text",
			Status:               entity.LeadStatusPending,
			CreatedAt:            base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// ============ SUBMIT ============

func TestSubmitHandlerSuccess(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Submit(w, multipartRequest(t, formFields(), "ana resume.pdf"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Message string      `json:"message"`
		Lead    entity.Lead `json:"lead"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Lead submitted successfully", resp.Message)
	assert.Equal(t, entity.LeadStatusPending, resp.Lead.Status)
	assert.Equal(t, []string{"O-1", "EB-2 NIW"}, resp.Lead.VisasInterested)
	assert.Equal(t, "https://example.com/resumes/ana%20resume.pdf", resp.Lead.ResumeURL)

	leads, _ := repo.List(context.Background())
	assert.Len(t, leads, 1)
}

func TestSubmitHandlerMissingResume(t *testing.T) {
	repo := database.NewMemoryLeadRepository()

	w := httptest.NewRecorder()
	newTestHandler(repo).Submit(w, multipartRequest(t, formFields(), ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResponse map[string]string
	json.NewDecoder(w.Body).Decode(&errResponse)
	assert.Equal(t, "Missing required fields: resume", errResponse["error"])

	leads, _ := repo.List(context.Background())
	assert.Empty(t, leads)
}

func TestSubmitHandlerMissingVisas(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	fields := formFields()
	delete(fields, "visasInterested")

	w := httptest.NewRecorder()
	newTestHandler(repo).Submit(w, multipartRequest(t, fields, "cv.pdf"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	leads, _ := repo.List(context.Background())
	assert.Empty(t, leads)
}

func TestSubmitHandlerTooLarge(t *testing.T) {
	repo := database.NewMemoryLeadRepository()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, values := range formFields() {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	fw, err := mw.CreateFormFile("resume", "big.pdf")
	require.NoError(t, err)
	fw.Write(bytes.Repeat([]byte("x"), 5000))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/leads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	newTestHandlerWithCap(repo, 1024).Submit(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Submission too large"}`, w.Body.String())

	leads, _ := repo.List(context.Background())
	assert.Empty(t, leads)
}

func TestSubmitHandlerNotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"firstName":"Ana"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	newTestHandler(database.NewMemoryLeadRepository()).Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============ LIST ============

func TestListHandler(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLeads(t, repo, 25)

	w := httptest.NewRecorder()
	newTestHandler(repo).List(w, httptest.NewRequest(http.MethodGet, "/api/leads?page=3&limit=10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.ListLeadsOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 25, resp.TotalLeads)
	assert.Equal(t, 3, resp.CurrentPage)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Leads, 5)
	assert.Equal(t, "lead-20", resp.Leads[0].ID)
}

func TestListHandlerEmptyStore(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler(database.NewMemoryLeadRepository()).List(w, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"leads":[],"totalLeads":0,"currentPage":1,"totalPages":0}`, w.Body.String())
}

func TestListHandlerBadParams(t *testing.T) {
	h := newTestHandler(database.NewMemoryLeadRepository())

	for _, query := range []string{"page=abc", "page=0", "limit=-1", "limit=1000", "sort=secret", "order=up", "status=DONE"} {
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/leads?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

// ============ GET ============

func TestGetHandler(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLeads(t, repo, 1)
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/leads/lead-00", nil), "id", "lead-00"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/leads/zzz", nil), "id", "zzz"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============ UPDATE STATUS ============

func updateRequest(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/leads/"+id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return withURLParam(req, "id", id)
}

func TestUpdateStatusHandlerSuccess(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLeads(t, repo, 1)

	w := httptest.NewRecorder()
	newTestHandler(repo).UpdateStatus(w, updateRequest("lead-00", `{"status":"REACHED_OUT"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp usecase.UpdateLeadStatusOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, entity.LeadStatusReachedOut, resp.Lead.Status)

	stored, _ := repo.FindByID(context.Background(), "lead-00")
	assert.Equal(t, entity.LeadStatusReachedOut, stored.Status)
}

func TestUpdateStatusHandlerErrors(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLeads(t, repo, 1)
	h := newTestHandler(repo)

	cases := []struct {
		id   string
		body string
		code int
		msg  string
	}{
		{"lead-00", `{"status":"CONVERTED"}`, http.StatusBadRequest, "Invalid status"},
		{"lead-00", `not json`, http.StatusBadRequest, "Invalid JSON"},
		{"missing", `{"status":"PENDING"}`, http.StatusNotFound, "Lead not found"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		h.UpdateStatus(w, updateRequest(tc.id, tc.body))

		assert.Equal(t, tc.code, w.Code, tc.body)
		var errResponse map[string]string
		json.NewDecoder(w.Body).Decode(&errResponse)
		assert.Equal(t, tc.msg, errResponse["error"])
	}

	stored, _ := repo.FindByID(context.Background(), "lead-00")
	assert.Equal(t, entity.LeadStatusPending, stored.Status)
}

func TestUpdateStatusHandlerBodyTooLarge(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLeads(t, repo, 1)

	body := `{"status":"REACHED_OUT","note":"` + strings.Repeat("a", 8<<10) + `"}`
	w := httptest.NewRecorder()
	newTestHandler(repo).UpdateStatus(w, updateRequest("lead-00", body))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	stored, _ := repo.FindByID(context.Background(), "lead-00")
	assert.Equal(t, entity.LeadStatusPending, stored.Status)
}

// failingRepo makes every call fail like a broken disk.
type failingRepo struct{}

func (failingRepo) Append(context.Context, *entity.Lead) error { return errors.New("disk full") }
func (failingRepo) List(context.Context) ([]*entity.Lead, error) {
	return nil, errors.New("disk full")
}
func (failingRepo) FindByID(context.Context, string) (*entity.Lead, error) {
	return nil, errors.New("disk full")
}
func (failingRepo) UpdateStatus(context.Context, string, entity.LeadStatus) (*entity.Lead, error) {
	return nil, errors.New("disk full")
}

func TestHandlersStorageFailure(t *testing.T) {
	h := newTestHandler(failingRepo{})

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal storage error"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Submit(w, multipartRequest(t, formFields(), "cv.pdf"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ============ HEALTH ============

func TestHealthHandlerNothingConfigured(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler("memory", nil, nil, nil).Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.Store)
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
}
