package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const table = "analytics_events"

var eventColumns = []string{"id", "state", "age", "occupation", "income", "category", "gender", "schemes_found", "top_schemes", "created_at"}

type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS analytics_events (
  id TEXT PRIMARY KEY,
  state TEXT NOT NULL DEFAULT '',
  age TEXT NOT NULL DEFAULT '',
  occupation TEXT NOT NULL DEFAULT '',
  income TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT '',
  schemes_found INTEGER NOT NULL DEFAULT 0,
  top_schemes JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analytics_events_created_at ON analytics_events (created_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Add(ctx context.Context, ev Event) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	ev = prepare(ev)
	top, err := json.Marshal(ev.TopSchemes)
	if err != nil {
		return err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Insert(table).
		Columns(eventColumns...).
		Values(ev.ID, ev.Profile.State, ev.Profile.Age, ev.Profile.Occupation, ev.Profile.Income,
			ev.Profile.Category, ev.Profile.Gender, ev.SchemesFound, string(top), ev.Timestamp).
		Query()
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PostgresStore) Summary(ctx context.Context) (Summary, error) {
	if s == nil || s.db == nil {
		return Summary{}, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return Summary{}, err
	}
	b := entsql.Dialect(dialect.Postgres)

	var out Summary
	query, args := b.Select(entsql.Count("*")).From(entsql.Table(table)).Query()
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&out.TotalSearches); err != nil {
		return Summary{}, fmt.Errorf("count events: %w", err)
	}
	var err error
	if out.TopStates, err = s.top(ctx, "state"); err != nil {
		return Summary{}, err
	}
	if out.TopOccupations, err = s.top(ctx, "occupation"); err != nil {
		return Summary{}, err
	}

	query, args = b.Select(eventColumns...).
		From(entsql.Table(table)).
		OrderBy(entsql.Desc("created_at")).
		Limit(SummaryLimit).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Summary{}, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()
	out.RecentSearches = make([]Event, 0, SummaryLimit)
	for rows.Next() {
		var (
			ev  Event
			top []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Profile.State, &ev.Profile.Age, &ev.Profile.Occupation,
			&ev.Profile.Income, &ev.Profile.Category, &ev.Profile.Gender, &ev.SchemesFound, &top, &ev.Timestamp); err != nil {
			return Summary{}, err
		}
		if err := json.Unmarshal(top, &ev.TopSchemes); err != nil || ev.TopSchemes == nil {
			ev.TopSchemes = []string{}
		}
		out.RecentSearches = append(out.RecentSearches, ev)
	}
	return out, rows.Err()
}

func (s *PostgresStore) top(ctx context.Context, column string) ([]Count, error) {
	query, args := entsql.Dialect(dialect.Postgres).
		Select(column, entsql.As(entsql.Count("*"), "n")).
		From(entsql.Table(table)).
		GroupBy(column).
		OrderBy(entsql.Desc("n"), column).
		Limit(SummaryLimit).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()
	out := make([]Count, 0, SummaryLimit)
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
