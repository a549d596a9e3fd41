package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const table = "user_history"

var entryColumns = []string{"id", "user_id", "created_at", "state", "age", "occupation", "income", "category", "schemes_found", "top_schemes"}

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
CREATE TABLE IF NOT EXISTS user_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  state TEXT NOT NULL DEFAULT '',
  age TEXT NOT NULL DEFAULT '',
  occupation TEXT NOT NULL DEFAULT '',
  income TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  schemes_found INTEGER NOT NULL DEFAULT 0,
  top_schemes JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_user_history_user_id ON user_history (user_id, created_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Add(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	e, err := prepare(e)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	top, err := json.Marshal(e.TopSchemes)
	if err != nil {
		return err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Insert(table).
		Columns(entryColumns...).
		Values(e.ID, e.UserID, e.Timestamp, e.Profile.State, e.Profile.Age, e.Profile.Occupation,
			e.Profile.Income, e.Profile.Category, e.SchemesFound, string(top)).
		Query()
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserRequired
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Select(entryColumns...).
		From(entsql.Table(table)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at")).
		Limit(Limit).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Entry, 0, Limit)
	for rows.Next() {
		var (
			e   Entry
			top []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Timestamp, &e.Profile.State, &e.Profile.Age,
			&e.Profile.Occupation, &e.Profile.Income, &e.Profile.Category, &e.SchemesFound, &top); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(top, &e.TopSchemes); err != nil || e.TopSchemes == nil {
			e.TopSchemes = []string{}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
