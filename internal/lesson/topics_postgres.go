package lesson

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTopicStore is a PostgreSQL-backed TopicStore.
type PostgresTopicStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTopicStore creates a PostgreSQL-backed topic store.
func NewPostgresTopicStore(pool *pgxpool.Pool) (*PostgresTopicStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresTopicStore{pool: pool}, nil
}

// Reorder moves one lesson to a new position within its topic and rewrites
// every sibling's order index to its 1-based position. The whole read/renumber
// cycle runs in one transaction so two list screens cannot interleave.
func (s *PostgresTopicStore) Reorder(ctx context.Context, topicID, lessonID string, newIndex int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT lesson_id::text
		 FROM topic_lessons
		 WHERE topic_id = $1::uuid
		 ORDER BY order_index ASC
		 FOR UPDATE`,
		topicID,
	)
	if err != nil {
		return false, fmt.Errorf("load topic children: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan topic child: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate topic children: %w", err)
	}

	from := -1
	for i, id := range ids {
		if id == lessonID {
			from = i
			break
		}
	}
	if from < 0 {
		return false, nil
	}

	moved, ok := moveTo(ids, from, newIndex)
	if !ok {
		return false, nil
	}

	for i, id := range moved {
		if _, err := tx.Exec(ctx,
			`UPDATE topic_lessons
			 SET order_index = $3
			 WHERE topic_id = $1::uuid AND lesson_id = $2::uuid`,
			topicID,
			id,
			i+1,
		); err != nil {
			return false, fmt.Errorf("renumber topic child: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit reorder: %w", err)
	}
	return true, nil
}

func (s *PostgresTopicStore) Children(ctx context.Context, topicID string) ([]TopicChild, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT lesson_id::text, order_index
		 FROM topic_lessons
		 WHERE topic_id = $1::uuid
		 ORDER BY order_index ASC`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("load topic children: %w", err)
	}
	defer rows.Close()

	var out []TopicChild
	for rows.Next() {
		var c TopicChild
		if err := rows.Scan(&c.LessonID, &c.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan topic child: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic children: %w", err)
	}
	return out, nil
}
