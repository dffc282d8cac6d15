package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

const (
	DefaultMaxUploadBytes int64 = 10 << 20
	maxStatusBodyBytes    int64 = 4 << 10
)

type LeadHandler struct {
	SubmitUC       *usecase.SubmitLeadUseCase
	ListUC         *usecase.ListLeadsUseCase
	GetUC          *usecase.GetLeadUseCase
	UpdateStatusUC *usecase.UpdateLeadStatusUseCase
	MaxUploadBytes int64
	Log            zerolog.Logger
}

func NewLeadHandler(
	submitUC *usecase.SubmitLeadUseCase,
	listUC *usecase.ListLeadsUseCase,
	getUC *usecase.GetLeadUseCase,
	updateStatusUC *usecase.UpdateLeadStatusUseCase,
	maxUploadBytes int64,
	log zerolog.Logger,
) *LeadHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &LeadHandler{
		SubmitUC:       submitUC,
		ListUC:         listUC,
		GetUC:          getUC,
		UpdateStatusUC: updateStatusUC,
		MaxUploadBytes: maxUploadBytes,
		Log:            log,
	}
}

// Submit (POST /api/leads) reads the public multipart form.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "Submission too large")
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := usecase.SubmitLeadInput{
		FirstName:            r.FormValue("firstName"),
		LastName:             r.FormValue("lastName"),
		Email:                r.FormValue("email"),
		CountryOfCitizenship: r.FormValue("countryOfCitizenship"),
		LinkedIn:             r.FormValue("linkedin"),
		VisasInterested:      r.MultipartForm.Value["visasInterested"],
		OpenInput:            r.FormValue("openInput"),
	}
	if files := r.MultipartForm.File["resume"]; len(files) > 0 {
		input.ResumeFileName = files[0].Filename
	}

	output, err := h.SubmitUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

// List (GET /api/leads?page&limit&sort&order&status&q)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := positiveIntParam(q.Get("page"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, err := positiveIntParam(q.Get("limit"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	output, err := h.ListUC.Execute(r.Context(), usecase.ListLeadsInput{
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Status: q.Get("status"),
		Query:  q.Get("q"),
	})
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// Get (GET /api/leads/{id})
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.GetUC.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus (PATCH|PUT /api/leads/{id})
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatusBodyBytes)

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	output, err := h.UpdateStatusUC.Execute(r.Context(), usecase.UpdateLeadStatusInput{
		ID:     chi.URLParam(r, "id"),
		Status: body.Status,
	})
	if err != nil {
		writeUseCaseError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// positiveIntParam returns 0 for an absent parameter so the use case default applies.
func positiveIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
