package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	savedcache "schemefinder/internal/cache/saved"
	"schemefinder/internal/gateway/config"
	"schemefinder/internal/gateway/repository"
	"schemefinder/internal/gateway/repository/analytics"
	"schemefinder/internal/gateway/repository/history"
	savedrepo "schemefinder/internal/gateway/repository/saved"
)

type gatewayStores struct {
	analytics analytics.Store
	history   history.Store
	saved     savedrepo.Store
	db        *sql.DB
}

func (s *gatewayStores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return initPostgresStores(ctx, dsn, cfg, log)
	}
	log.Info("stores: in-memory (DATABASE_URL not set)")
	return withSavedCache(&gatewayStores{
		analytics: analytics.NewMemoryStore(),
		history:   history.NewMemoryStore(),
		saved:     savedrepo.NewMemoryStore(),
	}, cfg)
}

func initPostgresStores(ctx context.Context, dsn string, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	db, err := repository.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	log.Info("stores: postgres")
	stores, err := withSavedCache(&gatewayStores{
		analytics: analytics.NewPostgresStore(db),
		history:   history.NewPostgresStore(db),
		saved:     savedrepo.NewPostgresStore(db),
		db:        db,
	}, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return stores, nil
}

func withSavedCache(s *gatewayStores, cfg *config.Config) (*gatewayStores, error) {
	if cfg.Cache.SavedSize <= 0 {
		return s, nil
	}
	cached, err := savedcache.New(s.saved, cfg.Cache.SavedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize saved scheme cache: %w", err)
	}
	s.saved = cached
	return s, nil
}
