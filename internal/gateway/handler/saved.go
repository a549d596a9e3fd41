package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"schemefinder/internal/gateway/repository/saved"
	"schemefinder/internal/scheme"
)

type saveRequest struct {
	UserID     string          `json:"userId"`
	SchemeName string          `json:"schemeName"`
	SchemeData json.RawMessage `json:"schemeData"`
}

func (s *Service) handleSaveScheme(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	out, err := s.deps.Saved.Save(r.Context(), saved.Scheme{
		UserID:     req.UserID,
		SchemeName: req.SchemeName,
		SchemeData: req.SchemeData,
	})
	switch {
	case errors.Is(err, saved.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, saved.ErrAlreadySaved):
		writeError(w, http.StatusBadRequest, "Scheme already saved")
	case err != nil:
		s.log.Error("save scheme failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save scheme")
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Service) handleListSaved(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Saved.List(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.log.Error("list saved schemes failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch saved schemes")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleDeleteSaved is idempotent: removing an unknown id still succeeds.
func (s *Service) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Saved.Delete(r.Context(), r.PathValue("id")); err != nil && !errors.Is(err, saved.ErrNotFound) {
		s.log.Error("delete saved scheme failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove scheme")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Service) handleIsSaved(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	name := strings.TrimSpace(r.URL.Query().Get("schemeName"))
	if userID == "" || name == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"saved": false})
		return
	}
	ok, err := s.deps.Saved.Exists(r.Context(), userID, scheme.Slug(name))
	if err != nil {
		s.log.Error("is-saved check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Check error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": ok})
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
