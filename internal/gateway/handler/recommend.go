package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"schemefinder/internal/recommend"
	"schemefinder/internal/scheme"
)

func (s *Service) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var p scheme.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p = p.Normalized()
	rec, err := s.deps.Recommender.Recommend(r.Context(), p)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidProfile) {
			writeError(w, http.StatusBadRequest, "Invalid profile")
			return
		}
		s.log.Error("recommend failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate recommendations")
		return
	}
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordRecommendation(p, rec)
	}
	writeJSON(w, http.StatusOK, rec.EnsureSlices())
}

type searchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	res, err := s.deps.Searcher.Search(r.Context(), req.Query, req.Language)
	if err != nil {
		if errors.Is(err, recommend.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Query is required")
			return
		}
		s.log.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if res.Schemes == nil {
		res.Schemes = []scheme.Record{}
	}
	writeJSON(w, http.StatusOK, res)
}

type chatRequest struct {
	Scheme   *scheme.Record `json:"scheme"`
	Question string         `json:"question"`
	Language string         `json:"language"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Service) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Scheme == nil || isBlank(req.Question) {
		writeError(w, http.StatusBadRequest, "Scheme details and question are required.")
		return
	}
	answer := s.deps.Chatter.Chat(r.Context(), *req.Scheme, req.Question, req.Language)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}
