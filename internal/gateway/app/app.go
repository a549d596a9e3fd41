package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	searchcache "schemefinder/internal/cache/search"
	"schemefinder/internal/catalog"
	"schemefinder/internal/gateway/config"
	"schemefinder/internal/gateway/handler"
	"schemefinder/internal/gateway/handler/rpc"
	"schemefinder/internal/gateway/server"
	"schemefinder/internal/gateway/service/recorder"
	"schemefinder/internal/llm"
	"schemefinder/internal/logging"
	"schemefinder/internal/recommend"
)

type App struct {
	server   *server.Server
	handler  http.Handler
	client   llm.LLMClient
	stores   *gatewayStores
	recorder *recorder.Recorder
	log      *zap.Logger
}

// New loads the configuration from flags and the environment and builds the app.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewFromConfig(ctx, cfg, logging.New(cfg.LogLevel, cfg.LogFormat))
}

func NewFromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Dependencies
	cat, source, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback catalog: %w", err)
	}
	log.Info("fallback catalog loaded",
		zap.String("source", source),
		zap.String("version", cat.Version()),
		zap.Int("schemes", cat.Len()))

	client, err := llm.Open(ctx, cfg.LLM, cat, logging.Component(log, "llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm provider: %w", err)
	}

	recommender, err := recommend.NewRecommender(client, cat, recommend.Options{
		BatchSize:      cfg.Recommend.BatchSize,
		MaxConcurrency: cfg.Recommend.MaxConcurrency,
		Retry:          cfg.Retry.Policy(),
		Logger:         logging.Component(log, "recommend"),
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	chatter := recommend.NewChatter(client, logging.Component(log, "chat"))
	var searcher handler.Searcher = recommend.NewSearcher(client, logging.Component(log, "search"))
	if cfg.Cache.SearchSize > 0 {
		searcher = searchcache.New(searcher, cfg.Cache.SearchSize, cfg.Cache.SearchTTL)
	}

	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	rec := recorder.New(stores.analytics, stores.history, logging.Component(log, "recorder"), cfg.RecorderQueueSize)

	api := handler.NewService(handler.Deps{
		Recommender: recommender,
		Searcher:    searcher,
		Chatter:     chatter,
		Recorder:    rec,
		Analytics:   stores.analytics,
		History:     stores.history,
		Saved:       stores.saved,
		AdminToken:  cfg.AdminToken,
		Port:        cfg.Port,
		Logger:      logging.Component(log, "api"),
	})
	schemeHandler := rpc.NewSchemeHandler(recommender, searcher, chatter, rec, log)

	// Routing & Server
	mux := server.NewMux(api, schemeHandler, logging.Component(log, "http"))
	srv := server.New(cfg.Port, mux, log)

	log.Info("gateway ready",
		zap.String("env", cfg.Env),
		zap.String("llm", client.Name()))
	return &App{
		server:   srv,
		handler:  mux,
		client:   client,
		stores:   stores,
		recorder: rec,
		log:      log,
	}, nil
}

// Handler exposes the routed handler without the listener.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Logger() *zap.Logger { return a.log }

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the listener, drains queued history and analytics writes and releases the
// provider and database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.recorder.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("recorder: %w", err))
	}
	if err := a.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}
	if err := a.stores.Close(); err != nil {
		errs = append(errs, fmt.Errorf("stores: %w", err))
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
