package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/louisbranch/orderlink/internal/orderflow/domain"
)

type submissionAnswer struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type submissionRequest struct {
	Answers []submissionAnswer `json:"answers"`
}

// handleSubmission reconciles one completed form hand-off.
func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "submission")
	defer span.End()

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed submission payload")
		return
	}

	submission := domain.Submission{}
	for _, answer := range req.Answers {
		submission.Answers = append(submission.Answers, domain.Answer{
			Title: answer.Title,
			Value: answer.Value,
		})
	}

	err := s.reconciler.Process(ctx, submission)
	var miss *domain.ReconciliationMissError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, domain.ErrCorrelationFieldMissing):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &miss):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		s.logf("submission: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "submission could not be processed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
