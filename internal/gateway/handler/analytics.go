package handler

import (
	"net/http"

	"go.uber.org/zap"
)

func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Analytics.Summary(r.Context())
	if err != nil {
		s.log.Error("analytics summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.History.List(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.log.Error("history fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
