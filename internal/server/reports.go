package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/JahirJmnz/marketpulse/internal/report"
)

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID string `json:"profile_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProfileID == "" {
		writeError(w, http.StatusBadRequest, "profile_id is required")
		return
	}

	job, err := s.manager.Generate(r.Context(), req.ProfileID)
	if err != nil {
		if eris.Is(err, report.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		zap.L().Error("generate report", zap.String("profile_id", req.ProfileID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start report generation")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"report_id": job.ID,
		"status":    job.Status,
		"message":   "report generation started",
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		zap.L().Error("get report", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.store.LatestJob(r.Context(), id)
	if err != nil {
		zap.L().Error("get latest report", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "no reports for profile")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleReportStatus serves the polling endpoint. It never includes the
// report content; clients fetch the full report once has_content is true.
func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		zap.L().Error("get report status", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report.NewStatusView(job))
}
