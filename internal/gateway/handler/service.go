package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"schemefinder/internal/gateway/middleware"
	"schemefinder/internal/gateway/repository/analytics"
	"schemefinder/internal/gateway/repository/history"
	"schemefinder/internal/gateway/repository/saved"
	"schemefinder/internal/metrics"
	"schemefinder/internal/scheme"
)

type Recommender interface {
	Recommend(ctx context.Context, p scheme.UserProfile) (scheme.Recommendation, error)
}

type Searcher interface {
	Search(ctx context.Context, query, language string) (scheme.SearchResult, error)
}

type Chatter interface {
	Chat(ctx context.Context, rec scheme.Record, question, language string) string
}

type Recorder interface {
	RecordRecommendation(p scheme.UserProfile, rec scheme.Recommendation)
}

// Deps are the collaborators of the JSON API. Recorder may be nil.
type Deps struct {
	Recommender Recommender
	Searcher    Searcher
	Chatter     Chatter
	Recorder    Recorder

	Analytics analytics.Store
	History   history.Store
	Saved     saved.Store

	AdminToken string
	Port       string
	Logger     *zap.Logger
}

// Service implements the JSON API under /api.
type Service struct {
	deps Deps
	log  *zap.Logger
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{deps: d, log: log.With(zap.String("component", "api"))}
}

// Register mounts every route on mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/recommend-schemes", s.handleRecommend)
	mux.HandleFunc("POST /api/search-schemes", s.handleSearch)
	mux.HandleFunc("POST /api/chat-scheme", s.handleChat)
	mux.Handle("GET /api/analytics", middleware.AdminOnly(s.deps.AdminToken, http.HandlerFunc(s.handleAnalytics)))
	mux.HandleFunc("GET /api/history/{userId}", s.handleHistory)
	mux.HandleFunc("POST /api/save-scheme", s.handleSaveScheme)
	mux.HandleFunc("GET /api/saved-schemes/{userId}", s.handleListSaved)
	mux.HandleFunc("DELETE /api/saved-schemes/{id}", s.handleDeleteSaved)
	mux.HandleFunc("GET /api/is-saved", s.handleIsSaved)
	mux.HandleFunc("GET /api/verify-server", s.handleVerify)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Service) handleVerify(w http.ResponseWriter, _ *http.Request) {
	port, _ := strconv.Atoi(strings.TrimPrefix(s.deps.Port, ":"))
	writeJSON(w, http.StatusOK, map[string]any{"message": "Verification Successful", "port": port})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
