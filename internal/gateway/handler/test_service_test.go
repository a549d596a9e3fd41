package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"schemefinder/internal/gateway/repository/analytics"
	"schemefinder/internal/gateway/repository/history"
	"schemefinder/internal/gateway/repository/saved"
	"schemefinder/internal/recommend"
	"schemefinder/internal/scheme"
)

type stubRecommender struct {
	got scheme.UserProfile
	err error
}

func (s *stubRecommender) Recommend(_ context.Context, p scheme.UserProfile) (scheme.Recommendation, error) {
	s.got = p
	if s.err != nil {
		return scheme.Recommendation{}, s.err
	}
	return scheme.Recommendation{Schemes: []scheme.Record{{Name: "PM Kisan", Type: scheme.TypeCentral}}}, nil
}

type stubSearcher struct{ err error }

func (s stubSearcher) Search(_ context.Context, query, _ string) (scheme.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return scheme.SearchResult{}, recommend.ErrEmptyQuery
	}
	if s.err != nil {
		return scheme.SearchResult{}, s.err
	}
	return scheme.SearchResult{Schemes: []scheme.Record{{Name: query}}}, nil
}

type stubChatter struct{}

func (stubChatter) Chat(_ context.Context, rec scheme.Record, question, _ string) string {
	return rec.Name + ": " + question
}

type stubRecorder struct {
	mu       sync.Mutex
	profiles []scheme.UserProfile
}

func (s *stubRecorder) RecordRecommendation(p scheme.UserProfile, _ scheme.Recommendation) {
	s.mu.Lock()
	s.profiles = append(s.profiles, p)
	s.mu.Unlock()
}

type fixture struct {
	rec      *stubRecommender
	recorder *stubRecorder
	saved    *saved.MemoryStore
	history  *history.MemoryStore
	handler  http.Handler
}

func newFixture(t *testing.T, searchErr error) *fixture {
	t.Helper()
	f := &fixture{
		rec:      &stubRecommender{},
		recorder: &stubRecorder{},
		saved:    saved.NewMemoryStore(),
		history:  history.NewMemoryStore(),
	}
	svc := NewService(Deps{
		Recommender: f.rec,
		Searcher:    stubSearcher{err: searchErr},
		Chatter:     stubChatter{},
		Recorder:    f.recorder,
		Analytics:   analytics.NewMemoryStore(),
		History:     f.history,
		Saved:       f.saved,
		AdminToken:  "admin-secret",
		Port:        ":5000",
		Logger:      zaptest.NewLogger(t),
	})
	mux := http.NewServeMux()
	svc.Register(mux)
	f.handler = mux
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRecommendSchemes(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/recommend-schemes", `{"userId":"u1","age":34,"state":" Bihar ","language":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out scheme.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Schemes, 1)
	assert.NotNil(t, out.GeneralAdvice)
	assert.Equal(t, "Bihar", f.rec.got.State)
	assert.Equal(t, scheme.Age("34"), f.rec.got.Age)
	require.Len(t, f.recorder.profiles, 1)
	assert.Equal(t, "u1", f.recorder.profiles[0].UserID)
}

func TestRecommendSchemes_Errors(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/recommend-schemes", `{"age":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.rec.err = recommend.ErrInvalidProfile
	rec = f.do(t, http.MethodPost, "/api/recommend-schemes", `{"age":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.rec.err = errors.New("boom")
	rec = f.do(t, http.MethodPost, "/api/recommend-schemes", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate recommendations"}`, rec.Body.String())
	assert.Empty(t, f.recorder.profiles)
}

func TestSearchSchemes(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/search-schemes", `{"query":"pension","language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"schemes":[{"name":"pension","type":"","state":"","categoryTags":null,"description":"","eligibilitySummary":null,"requiredDocuments":null,"applicationSteps":null,"usefulnessScore":0}]}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/search-schemes", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Query is required"}`, rec.Body.String())

	f = newFixture(t, errors.New("provider down"))
	rec = f.do(t, http.MethodPost, "/api/search-schemes", `{"query":"pension"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Search failed"}`, rec.Body.String())
}

func TestChatScheme(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/chat-scheme", `{"scheme":{"name":"APY"},"question":"Who can apply?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"APY: Who can apply?"}`, rec.Body.String())

	for _, body := range []string{`{"question":"q"}`, `{"scheme":{"name":"APY"},"question":"  "}`, `nope`} {
		rec = f.do(t, http.MethodPost, "/api/chat-scheme", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Scheme details and question are required."}`, rec.Body.String())
	}
}

func TestSavedSchemesFlow(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/save-scheme", `{"userId":"u1","schemeName":"PM Kisan","schemeData":{"name":"PM Kisan"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first saved.Scheme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "pm-kisan", first.SchemeID)

	rec = f.do(t, http.MethodPost, "/api/save-scheme", `{"userId":"u1","schemeName":"pm kisan"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Scheme already saved"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/save-scheme", `{"userId":"u1"}`)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/is-saved?userId=u1&schemeName=PM%20Kisan", "")
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())
	rec = f.do(t, http.MethodGet, "/api/is-saved?userId=u1", "")
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/saved-schemes/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []saved.Scheme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"name":"PM Kisan"}`, string(list[0].SchemeData))

	rec = f.do(t, http.MethodDelete, "/api/saved-schemes/"+first.ID, "")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	rec = f.do(t, http.MethodDelete, "/api/saved-schemes/"+first.ID, "")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/saved-schemes/u1", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.history.Add(context.Background(), history.Entry{UserID: "u1", SchemesFound: 3}))

	rec := f.do(t, http.MethodGet, "/api/history/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].SchemesFound)
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/analytics", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	out := httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	var sum analytics.Summary
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &sum))
	assert.Zero(t, sum.TotalSearches)
}

func TestVerifyAndHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/verify-server", "")
	assert.JSONEq(t, `{"message":"Verification Successful","port":5000}`, rec.Body.String())
	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	rec = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
