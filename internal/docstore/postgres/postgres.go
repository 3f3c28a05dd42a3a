package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwalczyk/chirp/internal/docstore"
)

// Store keeps every document in a single jsonb-backed table. Paths map to
// the path column, so subcollections need no schema of their own.
type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the documents table if it does not exist. Timestamps
// are stored as RFC 3339 strings inside the jsonb payload, so ordering on
// them is plain text ordering.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			path   text  NOT NULL,
			id     text  NOT NULL,
			fields jsonb NOT NULL,
			PRIMARY KEY (path, id)
		)`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS documents_path_ts_idx ON documents (path, (fields->>'timestamp'))`)
	if err != nil {
		return fmt.Errorf("creating timestamp index: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path, id string) (docstore.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		"SELECT fields FROM documents WHERE path = $1 AND id = $2", path, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	return decodeDocument(id, raw)
}

func (s *Store) Set(ctx context.Context, path, id string, fields map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding fields: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (path, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (path, id) DO UPDATE SET fields = EXCLUDED.fields`,
		path, id, raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, path, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE documents SET fields = fields || $3::jsonb WHERE path = $1 AND id = $2",
		path, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM documents WHERE path = $1 AND id = $2", path, id)
	return err
}

func (s *Store) List(ctx context.Context, path, orderBy string, descending bool) ([]docstore.Document, error) {
	query := "SELECT id, fields FROM documents WHERE path = $1"
	args := []any{path}
	if orderBy != "" {
		direction := "ASC"
		if descending {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY fields->>$2 %s", direction)
		args = append(args, orderBy)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) Query(ctx context.Context, path, field string, equals any) ([]docstore.Document, error) {
	match, err := json.Marshal(map[string]any{field: equals})
	if err != nil {
		return nil, fmt.Errorf("encoding match: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT id, fields FROM documents WHERE path = $1 AND fields @> $2::jsonb", path, match)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocuments(rows pgx.Rows) ([]docstore.Document, error) {
	var docs []docstore.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func decodeDocument(id string, raw []byte) (docstore.Document, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decoding fields: %w", err)
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}
