package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store. Lessons are stored whole as
// jsonb documents; the document is always a normalized payload, never the
// editing representation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed lesson store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the lesson and topic tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lessons (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			doc jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS topic_lessons (
			topic_id uuid NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			lesson_id uuid NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
			order_index int NOT NULL,
			PRIMARY KEY (topic_id, lesson_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, p Payload) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p.ID = ""
	doc, err := json.Marshal(p)
	if err != nil {
		return Payload{}, fmt.Errorf("marshal lesson doc: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO lessons (doc) VALUES ($1::jsonb) RETURNING id::text`,
		string(doc),
	).Scan(&id)
	if err != nil {
		return Payload{}, fmt.Errorf("insert lesson: %w", err)
	}

	p.ID = id
	if err := s.syncTopicRefs(ctx, id, p.TopicRefs); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, p Payload) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p.ID = id
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal lesson doc: %w", err)
	}

	cmd, err := s.pool.Exec(ctx,
		`UPDATE lessons SET doc = $2::jsonb, updated_at = now() WHERE id = $1::uuid`,
		id,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return s.syncTopicRefs(ctx, id, p.TopicRefs)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM lessons WHERE id = $1::uuid`,
		id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payload{}, ErrNotFound
		}
		return Payload{}, fmt.Errorf("get lesson: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(doc, &p); err != nil {
		return Payload{}, fmt.Errorf("unmarshal lesson doc: %w", err)
	}
	p.ID = id
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM lessons ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var out []Payload
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		var p Payload
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("unmarshal lesson doc: %w", err)
		}
		p.ID = id
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM lessons WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// syncTopicRefs reconciles the topic membership join rows with the payload's
// topicRefs, appending new memberships at the end of each topic's child list.
func (s *PostgresStore) syncTopicRefs(ctx context.Context, lessonID string, refs []string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM topic_lessons WHERE lesson_id = $1::uuid`,
		lessonID,
	); err != nil {
		return fmt.Errorf("clear topic refs: %w", err)
	}

	for _, topicID := range refs {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO topic_lessons (topic_id, lesson_id, order_index)
			 SELECT $1::uuid, $2::uuid, COALESCE(MAX(order_index), 0) + 1
			 FROM topic_lessons
			 WHERE topic_id = $1::uuid`,
			topicID,
			lessonID,
		)
		if err != nil {
			return fmt.Errorf("add topic ref %s: %w", topicID, err)
		}
	}
	return nil
}
