package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type profileRequest struct {
	CompanyName        *string `json:"company_name"`
	CompanyDescription *string `json:"company_description"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := deref(req.CompanyName)
	desc := deref(req.CompanyDescription)
	if strings.TrimSpace(name) == "" || strings.TrimSpace(desc) == "" {
		writeError(w, http.StatusBadRequest, "company_name and company_description are required")
		return
	}

	profile, err := s.store.CreateProfile(r.Context(), name, desc)
	if err != nil {
		zap.L().Error("create profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		zap.L().Error("get profile", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyName == nil && req.CompanyDescription == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	profile, err := s.store.UpdateProfile(r.Context(), id, req.CompanyName, req.CompanyDescription)
	if err != nil {
		zap.L().Error("update profile", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	profile, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		zap.L().Error("get profile", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	jobs, err := s.store.ListJobs(r.Context(), id, limit)
	if err != nil {
		zap.L().Error("list reports", zap.String("profile_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": jobs})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
