package saved

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"schemefinder/internal/gateway/repository"
)

const table = "saved_schemes"

var schemeColumns = []string{"id", "user_id", "scheme_id", "scheme_name", "scheme_data", "created_at"}

type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) ensureSchema(ctx context.Context) error {
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS saved_schemes (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  scheme_id TEXT NOT NULL,
  scheme_name TEXT NOT NULL,
  scheme_data JSONB,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  UNIQUE (user_id, scheme_id)
);
CREATE INDEX IF NOT EXISTS idx_saved_schemes_user_id ON saved_schemes (user_id, created_at DESC);
`)
	})
	return p.schemaErr
}

func (p *PostgresStore) Save(ctx context.Context, s Scheme) (Scheme, error) {
	if p == nil || p.db == nil {
		return Scheme{}, fmt.Errorf("store is nil")
	}
	s, err := prepare(s)
	if err != nil {
		return Scheme{}, err
	}
	if err := p.ensureSchema(ctx); err != nil {
		return Scheme{}, err
	}
	var data any
	if len(s.SchemeData) > 0 {
		data = string(s.SchemeData)
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Insert(table).
		Columns(schemeColumns...).
		Values(s.ID, s.UserID, s.SchemeID, s.SchemeName, data, s.Timestamp).
		Query()
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		if repository.IsUniqueViolation(err) {
			return Scheme{}, ErrAlreadySaved
		}
		return Scheme{}, err
	}
	return s, nil
}

func (p *PostgresStore) List(ctx context.Context, userID string) ([]Scheme, error) {
	if p == nil || p.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Select(schemeColumns...).
		From(entsql.Table(table)).
		Where(entsql.EQ("user_id", strings.TrimSpace(userID))).
		OrderBy(entsql.Desc("created_at"), "id").
		Query()
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Scheme, 0)
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Delete(ctx context.Context, id string) (Scheme, error) {
	if p == nil || p.db == nil {
		return Scheme{}, fmt.Errorf("store is nil")
	}
	if err := p.ensureSchema(ctx); err != nil {
		return Scheme{}, err
	}
	row := p.db.QueryRowContext(ctx, `DELETE FROM saved_schemes WHERE id = $1
RETURNING id, user_id, scheme_id, scheme_name, scheme_data, created_at`, strings.TrimSpace(id))
	s, err := scanScheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scheme{}, ErrNotFound
	}
	return s, err
}

func (p *PostgresStore) Exists(ctx context.Context, userID, schemeID string) (bool, error) {
	if p == nil || p.db == nil {
		return false, fmt.Errorf("store is nil")
	}
	if err := p.ensureSchema(ctx); err != nil {
		return false, err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Where(entsql.And(
			entsql.EQ("user_id", strings.TrimSpace(userID)),
			entsql.EQ("scheme_id", schemeID),
		)).
		Query()
	var n int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (Scheme, error) {
	var (
		s    Scheme
		data []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.SchemeID, &s.SchemeName, &data, &s.Timestamp); err != nil {
		return Scheme{}, err
	}
	if len(data) > 0 {
		s.SchemeData = data
	}
	return s, nil
}
