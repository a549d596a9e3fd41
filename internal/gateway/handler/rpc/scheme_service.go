package rpc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"schemefinder/internal/recommend"
	"schemefinder/internal/scheme"
)

const (
	SchemeServiceName               = "schemefinder.v1.SchemeService"
	SchemeServiceRecommendProcedure = "/" + SchemeServiceName + "/Recommend"
	SchemeServiceSearchProcedure    = "/" + SchemeServiceName + "/Search"
	SchemeServiceChatProcedure      = "/" + SchemeServiceName + "/Chat"
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

type SearchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

type ChatRequest struct {
	Scheme   *scheme.Record `json:"scheme"`
	Question string         `json:"question"`
	Language string         `json:"language"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// SchemeHandler serves the connect procedures and the recommendation websocket.
type SchemeHandler struct {
	recommender Recommender
	searcher    Searcher
	chatter     Chatter
	recorder    Recorder
	log         *zap.Logger
}

func NewSchemeHandler(r Recommender, s Searcher, c Chatter, rec Recorder, log *zap.Logger) *SchemeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SchemeHandler{
		recommender: r,
		searcher:    s,
		chatter:     c,
		recorder:    rec,
		log:         log.With(zap.String("component", "rpc")),
	}
}

// Register mounts the connect procedures and /ws/recommend on mux.
func (h *SchemeHandler) Register(mux *http.ServeMux) {
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}
	mux.Handle(SchemeServiceRecommendProcedure, connect.NewUnaryHandler(SchemeServiceRecommendProcedure, h.Recommend, opts...))
	mux.Handle(SchemeServiceSearchProcedure, connect.NewUnaryHandler(SchemeServiceSearchProcedure, h.Search, opts...))
	mux.Handle(SchemeServiceChatProcedure, connect.NewUnaryHandler(SchemeServiceChatProcedure, h.Chat, opts...))
	mux.HandleFunc("GET /ws/recommend", h.HandleRecommendWS)
}

func (h *SchemeHandler) Recommend(ctx context.Context, req *connect.Request[scheme.UserProfile]) (*connect.Response[scheme.Recommendation], error) {
	p := req.Msg.Normalized()
	rec, err := h.recommender.Recommend(ctx, p)
	if err != nil {
		return nil, h.toConnectError("recommend", err)
	}
	if h.recorder != nil {
		h.recorder.RecordRecommendation(p, rec)
	}
	out := rec.EnsureSlices()
	return connect.NewResponse(&out), nil
}

func (h *SchemeHandler) Search(ctx context.Context, req *connect.Request[SearchRequest]) (*connect.Response[scheme.SearchResult], error) {
	res, err := h.searcher.Search(ctx, req.Msg.Query, req.Msg.Language)
	if err != nil {
		return nil, h.toConnectError("search", err)
	}
	if res.Schemes == nil {
		res.Schemes = []scheme.Record{}
	}
	return connect.NewResponse(&res), nil
}

func (h *SchemeHandler) Chat(ctx context.Context, req *connect.Request[ChatRequest]) (*connect.Response[ChatResponse], error) {
	if req.Msg.Scheme == nil || strings.TrimSpace(req.Msg.Question) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("scheme details and question are required"))
	}
	answer := h.chatter.Chat(ctx, *req.Msg.Scheme, req.Msg.Question, req.Msg.Language)
	return connect.NewResponse(&ChatResponse{Answer: answer}), nil
}

// toConnectError maps domain errors to connect codes. Internal detail is logged, not returned.
func (h *SchemeHandler) toConnectError(op string, err error) error {
	switch {
	case errors.Is(err, recommend.ErrInvalidProfile):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, recommend.ErrEmptyQuery):
		return connect.NewError(connect.CodeInvalidArgument, errors.New("query is required"))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	h.log.Error(op+" failed", zap.Error(err))
	return connect.NewError(connect.CodeInternal, errors.New(op+" failed"))
}
