package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeUseCaseError maps the use case error taxonomy onto HTTP statuses.
func writeUseCaseError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case usecase.CodeNotFound:
			writeErrorResponse(w, http.StatusNotFound, de.Message)
		default:
			writeErrorResponse(w, http.StatusBadRequest, de.Message)
		}
		return
	}

	log.Error().Err(err).Msg("lead storage failure")
	writeErrorResponse(w, http.StatusInternalServerError, "Internal storage error")
}
